package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

type ConsumerWorker struct {
	logger   *slog.Logger
	consumer Consumer
	service  *application.Service
	interval time.Duration
}

func NewConsumerWorker(logger *slog.Logger, consumer Consumer, service *application.Service, interval time.Duration) *ConsumerWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ConsumerWorker{
		logger: logger, consumer: consumer, service: service, interval: interval,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs, err := w.consumer.Poll(ctx, 50)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		var envelope contracts.EventEnvelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			w.logger.WarnContext(ctx, "dropping undecodable message",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "decode",
				"outcome", "failure",
				"topic", msg.Topic,
				"error", err,
			)
			continue
		}
		err := w.service.HandleCanonicalEvent(ctx, envelope)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrConflict):
			// already converted; redelivery of an order we attributed before
			w.logger.InfoContext(ctx, "event skipped",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "handle_event",
				"outcome", "skipped",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
			)
		default:
			w.logger.WarnContext(ctx, "failed to handle event",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "handle_event",
				"outcome", "failure",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err,
			)
		}
	}
	return nil
}
