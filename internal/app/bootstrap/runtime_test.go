package bootstrap

import (
	"context"
	"testing"
)

func TestRuntimeWithoutDatabaseRunsWorkersInAPI(t *testing.T) {
	for _, name := range []string{"DB_URL", "POSTGRES_URL", "REDIS_URL", "KAFKA_BROKERS", "JWT_SECRET", "WEBHOOK_SECRET"} {
		t.Setenv(name, "")
	}
	path := writeConfig(t, `
service:
  http_port: 18080
  grpc_port: 19090
security:
  jwt_secret: runtime-jwt
  webhook_secret: runtime-hook
`)

	rt, err := NewRuntime(context.Background(), path)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	t.Cleanup(func() { rt.cleanupFn(context.Background()) })

	if !rt.standalone {
		t.Fatalf("expected a runtime without postgres to be standalone")
	}
	if got := len(rt.embeddedWorkers()); got != 3 {
		t.Fatalf("expected relay, consumer and sweep in the api process, got %d", got)
	}

	shared := &Runtime{}
	if got := shared.embeddedWorkers(); got != nil {
		t.Fatalf("expected no embedded workers with a shared database, got %d", len(got))
	}
}
