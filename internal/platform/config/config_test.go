package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearProcessEnv blanks every variable Load reads so each test starts from
// the built-in defaults.
func clearProcessEnv(t *testing.T) {
	for _, name := range []string{
		"HUSTINGS_CONFIG", "SERVICE_NAME", "HTTP_PORT", "STORAGE_DRIVER",
		"POSTGRES_DSN", "SQLITE_PATH", "SNAPSHOT_PATH", "KAFKA_BROKERS",
		"ELECTION_ADMIN", "IDENTITY_SECRET", "DELEGATION_MODE",
		"ENABLE_AUDIT_CONSUMER", "ENABLE_SNAPSHOT_WRITER",
		"SNAPSHOT_INTERVAL", "WORKER_POLL_INTERVAL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearProcessEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "hustings" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected service defaults: %+v", cfg)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("expected memory storage default, got %s", cfg.StorageDriver)
	}
	if cfg.ElectionAdmin != "admin" || cfg.DelegationMode != "single_hop" {
		t.Fatalf("unexpected election defaults: %+v", cfg)
	}
	if !cfg.EnableAuditConsumer || !cfg.EnableSnapshotWriter {
		t.Fatalf("expected workers enabled by default")
	}
	if cfg.SnapshotInterval != 30*time.Second || cfg.WorkerPollInterval != 2*time.Second {
		t.Fatalf("unexpected interval defaults: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected broker default: %v", cfg.KafkaBrokers)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearProcessEnv(t)
	t.Setenv("SERVICE_NAME", "hustings-test")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("ELECTION_ADMIN", "chair")
	t.Setenv("DELEGATION_MODE", "chained")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")
	t.Setenv("ENABLE_AUDIT_CONSUMER", "false")
	t.Setenv("SNAPSHOT_INTERVAL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "hustings-test" || cfg.HTTPPort != "9090" {
		t.Fatalf("expected env service values, got %+v", cfg)
	}
	if cfg.StorageDriver != "sqlite" || cfg.SQLitePath != "/tmp/test.db" {
		t.Fatalf("expected sqlite driver config, got %+v", cfg)
	}
	if cfg.ElectionAdmin != "chair" || cfg.DelegationMode != "chained" {
		t.Fatalf("expected election overrides, got %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-b:9092" {
		t.Fatalf("expected trimmed broker list, got %v", cfg.KafkaBrokers)
	}
	if cfg.EnableAuditConsumer {
		t.Fatalf("expected audit consumer disabled")
	}
	if cfg.SnapshotInterval != 5*time.Minute {
		t.Fatalf("expected 5m snapshot interval, got %s", cfg.SnapshotInterval)
	}
}

func TestLoadFileOverlayAndEnvPrecedence(t *testing.T) {
	clearProcessEnv(t)
	path := filepath.Join(t.TempDir(), "hustings.yaml")
	file := strings.Join([]string{
		"service_name: hustings-file",
		"http_port: \"7070\"",
		"election_admin: file-admin",
		"enable_snapshot_writer: false",
		"worker_poll_interval: 10s",
	}, "\n")
	if err := os.WriteFile(path, []byte(file), 0o644); err != nil {
		t.Fatalf("write config file failed: %v", err)
	}
	t.Setenv("HUSTINGS_CONFIG", path)
	// Environment wins over the file.
	t.Setenv("HTTP_PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "hustings-file" {
		t.Fatalf("expected file service name, got %s", cfg.ServiceName)
	}
	if cfg.HTTPPort != "6060" {
		t.Fatalf("expected env port to win over file, got %s", cfg.HTTPPort)
	}
	if cfg.ElectionAdmin != "file-admin" {
		t.Fatalf("expected file admin, got %s", cfg.ElectionAdmin)
	}
	if cfg.EnableSnapshotWriter {
		t.Fatalf("expected snapshot writer disabled by file")
	}
	if cfg.WorkerPollInterval != 10*time.Second {
		t.Fatalf("expected 10s poll interval, got %s", cfg.WorkerPollInterval)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearProcessEnv(t)
	t.Setenv("STORAGE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown driver to fail validation")
	}
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	clearProcessEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing DSN to fail validation")
	}
}

func TestLoadRejectsUnknownDelegationMode(t *testing.T) {
	clearProcessEnv(t)
	t.Setenv("DELEGATION_MODE", "liquid")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown delegation mode to fail validation")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearProcessEnv(t)
	t.Setenv("SNAPSHOT_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
}
