package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID     string
	PublicBaseURL string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	MaxDBConns                   int32
	AutoMigrate                  bool
	KafkaConsumerGroup           string
	KafkaTopicOrderCompleted     string
	KafkaTopicReferralEvents     string
	KafkaTopicCommissionEvents   string
	KafkaTopicApplicationReviews string

	JWTSecret        string
	JWTIssuer        string
	WebhookSecret    string
	WebhookTolerance time.Duration

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	ConsumerPollInterval time.Duration
	HealthProbeInterval  time.Duration

	AutoApproveAfter     time.Duration
	AutoApproveInterval  time.Duration
	AutoApproveBatchSize int
	SweepLockTTL         time.Duration

	ReferralCodeBytes int
	ProductCacheTTL   time.Duration
	EventDedupTTL     time.Duration
	MaxPageSize       int

	DefaultAffiliateCommissionRate float64
	DefaultPayoutThreshold         float64
}

type configFile struct {
	Service struct {
		ID            string `yaml:"id"`
		HTTPPort      int    `yaml:"http_port"`
		GRPCPort      int    `yaml:"grpc_port"`
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL                  string   `yaml:"postgres_url"`
		RedisURL                     string   `yaml:"redis_url"`
		KafkaBrokers                 []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup           string   `yaml:"kafka_consumer_group"`
		KafkaTopicOrderCompleted     string   `yaml:"kafka_topic_order_completed"`
		KafkaTopicReferralEvents     string   `yaml:"kafka_topic_referral_events"`
		KafkaTopicCommissionEvents   string   `yaml:"kafka_topic_commission_events"`
		KafkaTopicApplicationReviews string   `yaml:"kafka_topic_application_reviews"`
	} `yaml:"dependencies"`
	Security struct {
		JWTSecret            string `yaml:"jwt_secret"`
		JWTIssuer            string `yaml:"jwt_issuer"`
		WebhookSecret        string `yaml:"webhook_secret"`
		WebhookToleranceSecs int    `yaml:"webhook_tolerance_seconds"`
	} `yaml:"security"`
	Commissions struct {
		AutoApproveAfterDays   int     `yaml:"auto_approve_after_days"`
		AutoApproveIntervalMin int     `yaml:"auto_approve_interval_minutes"`
		AutoApproveBatchSize   int     `yaml:"auto_approve_batch_size"`
		DefaultRate            float64 `yaml:"default_affiliate_commission_rate"`
		DefaultPayoutThreshold float64 `yaml:"default_payout_threshold"`
	} `yaml:"commissions"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                      "promo-affiliate-service",
		PublicBaseURL:                  "http://localhost:8080",
		HTTPPort:                       8080,
		GRPCPort:                       9090,
		MaxDBConns:                     20,
		AutoMigrate:                    true,
		KafkaConsumerGroup:             "promo-affiliate-service",
		KafkaTopicOrderCompleted:       "order.completed",
		KafkaTopicReferralEvents:       "affiliate.referrals",
		KafkaTopicCommissionEvents:     "affiliate.commissions",
		KafkaTopicApplicationReviews:   "affiliate.applications",
		WebhookTolerance:               5 * time.Minute,
		OutboxPollInterval:             2 * time.Second,
		OutboxBatchSize:                100,
		ConsumerPollInterval:           2 * time.Second,
		HealthProbeInterval:            10 * time.Second,
		AutoApproveAfter:               7 * 24 * time.Hour,
		AutoApproveInterval:            24 * time.Hour,
		AutoApproveBatchSize:           200,
		SweepLockTTL:                   10 * time.Minute,
		ReferralCodeBytes:              8,
		ProductCacheTTL:                5 * time.Minute,
		EventDedupTTL:                  7 * 24 * time.Hour,
		MaxPageSize:                    100,
		DefaultAffiliateCommissionRate: 0.05,
		DefaultPayoutThreshold:         50,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Service.PublicBaseURL != "" {
			cfg.PublicBaseURL = f.Service.PublicBaseURL
		}
		cfg.DatabaseURL = f.Dependencies.PostgresURL
		cfg.RedisURL = f.Dependencies.RedisURL
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaConsumerGroup != "" {
			cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
		}
		if f.Dependencies.KafkaTopicOrderCompleted != "" {
			cfg.KafkaTopicOrderCompleted = f.Dependencies.KafkaTopicOrderCompleted
		}
		if f.Dependencies.KafkaTopicReferralEvents != "" {
			cfg.KafkaTopicReferralEvents = f.Dependencies.KafkaTopicReferralEvents
		}
		if f.Dependencies.KafkaTopicCommissionEvents != "" {
			cfg.KafkaTopicCommissionEvents = f.Dependencies.KafkaTopicCommissionEvents
		}
		if f.Dependencies.KafkaTopicApplicationReviews != "" {
			cfg.KafkaTopicApplicationReviews = f.Dependencies.KafkaTopicApplicationReviews
		}
		cfg.JWTSecret = f.Security.JWTSecret
		cfg.JWTIssuer = f.Security.JWTIssuer
		cfg.WebhookSecret = f.Security.WebhookSecret
		if f.Security.WebhookToleranceSecs > 0 {
			cfg.WebhookTolerance = time.Duration(f.Security.WebhookToleranceSecs) * time.Second
		}
		if f.Commissions.AutoApproveAfterDays > 0 {
			cfg.AutoApproveAfter = time.Duration(f.Commissions.AutoApproveAfterDays) * 24 * time.Hour
		}
		if f.Commissions.AutoApproveIntervalMin > 0 {
			cfg.AutoApproveInterval = time.Duration(f.Commissions.AutoApproveIntervalMin) * time.Minute
		}
		if f.Commissions.AutoApproveBatchSize > 0 {
			cfg.AutoApproveBatchSize = f.Commissions.AutoApproveBatchSize
		}
		if f.Commissions.DefaultRate > 0 {
			cfg.DefaultAffiliateCommissionRate = f.Commissions.DefaultRate
		}
		if f.Commissions.DefaultPayoutThreshold > 0 {
			cfg.DefaultPayoutThreshold = f.Commissions.DefaultPayoutThreshold
		}
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.PublicBaseURL = envOrDefault("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaTopicOrderCompleted = envOrDefault("KAFKA_TOPIC_ORDER_COMPLETED", cfg.KafkaTopicOrderCompleted)
	cfg.KafkaTopicReferralEvents = envOrDefault("KAFKA_TOPIC_REFERRAL_EVENTS", cfg.KafkaTopicReferralEvents)
	cfg.KafkaTopicCommissionEvents = envOrDefault("KAFKA_TOPIC_COMMISSION_EVENTS", cfg.KafkaTopicCommissionEvents)
	cfg.KafkaTopicApplicationReviews = envOrDefault("KAFKA_TOPIC_APPLICATION_REVIEWS", cfg.KafkaTopicApplicationReviews)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.WebhookSecret = envOrDefault("WEBHOOK_SECRET", cfg.WebhookSecret)
	cfg.WebhookTolerance = time.Duration(envInt("WEBHOOK_TOLERANCE_SECONDS", int(cfg.WebhookTolerance.Seconds()))) * time.Second
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.AutoMigrate = envBool("DB_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.HealthProbeInterval = time.Duration(envInt("HEALTH_PROBE_SECONDS", int(cfg.HealthProbeInterval.Seconds()))) * time.Second
	cfg.AutoApproveAfter = time.Duration(envInt("AUTO_APPROVE_AFTER_DAYS", int(cfg.AutoApproveAfter.Hours()/24))) * 24 * time.Hour
	cfg.AutoApproveInterval = time.Duration(envInt("AUTO_APPROVE_INTERVAL_MINUTES", int(cfg.AutoApproveInterval.Minutes()))) * time.Minute
	cfg.AutoApproveBatchSize = envInt("AUTO_APPROVE_BATCH_SIZE", cfg.AutoApproveBatchSize)
	cfg.SweepLockTTL = time.Duration(envInt("SWEEP_LOCK_TTL_SECONDS", int(cfg.SweepLockTTL.Seconds()))) * time.Second
	cfg.ReferralCodeBytes = envInt("REFERRAL_CODE_BYTES", cfg.ReferralCodeBytes)
	cfg.ProductCacheTTL = time.Duration(envInt("PRODUCT_CACHE_SECONDS", int(cfg.ProductCacheTTL.Seconds()))) * time.Second
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour
	cfg.MaxPageSize = envInt("MAX_PAGE_SIZE", cfg.MaxPageSize)
	cfg.DefaultAffiliateCommissionRate = envFloat("DEFAULT_AFFILIATE_COMMISSION_RATE", cfg.DefaultAffiliateCommissionRate)
	cfg.DefaultPayoutThreshold = envFloat("DEFAULT_PAYOUT_THRESHOLD", cfg.DefaultPayoutThreshold)

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.WebhookSecret == "" {
		return Config{}, fmt.Errorf("missing WEBHOOK_SECRET")
	}
	if cfg.ReferralCodeBytes < 6 {
		return Config{}, fmt.Errorf("REFERRAL_CODE_BYTES must be at least 6")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
