package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	StorageDriver string
	PostgresDSN   string
	SQLitePath    string
	SnapshotPath  string

	KafkaBrokers []string

	ElectionAdmin  string
	IdentitySecret string
	DelegationMode string

	EnableAuditConsumer  bool
	EnableSnapshotWriter bool
	SnapshotInterval     time.Duration
	WorkerPollInterval   time.Duration
}

// fileConfig mirrors Config for the optional HUSTINGS_CONFIG yaml overlay.
// Pointer booleans distinguish "absent" from "false".
type fileConfig struct {
	ServiceName          string   `yaml:"service_name"`
	HTTPPort             string   `yaml:"http_port"`
	StorageDriver        string   `yaml:"storage_driver"`
	PostgresDSN          string   `yaml:"postgres_dsn"`
	SQLitePath           string   `yaml:"sqlite_path"`
	SnapshotPath         string   `yaml:"snapshot_path"`
	KafkaBrokers         []string `yaml:"kafka_brokers"`
	ElectionAdmin        string   `yaml:"election_admin"`
	IdentitySecret       string   `yaml:"identity_secret"`
	DelegationMode       string   `yaml:"delegation_mode"`
	EnableAuditConsumer  *bool    `yaml:"enable_audit_consumer"`
	EnableSnapshotWriter *bool    `yaml:"enable_snapshot_writer"`
	SnapshotInterval     string   `yaml:"snapshot_interval"`
	WorkerPollInterval   string   `yaml:"worker_poll_interval"`
}

// Load resolves configuration in precedence order: built-in defaults, then the
// HUSTINGS_CONFIG yaml file when set, then environment variables.
func Load() (Config, error) {
	// .env is a local development convenience; a missing file is fine.
	_ = godotenv.Load()

	cfg := Config{
		ServiceName:          "hustings",
		HTTPPort:             "8080",
		StorageDriver:        "memory",
		SQLitePath:           "hustings.db",
		SnapshotPath:         "election.snapshot",
		KafkaBrokers:         []string{"localhost:9092"},
		ElectionAdmin:        "admin",
		DelegationMode:       "single_hop",
		EnableAuditConsumer:  true,
		EnableSnapshotWriter: true,
		SnapshotInterval:     30 * time.Second,
		WorkerPollInterval:   2 * time.Second,
	}

	if path := strings.TrimSpace(os.Getenv("HUSTINGS_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServiceName, file.ServiceName)
	setString(&cfg.HTTPPort, file.HTTPPort)
	setString(&cfg.StorageDriver, file.StorageDriver)
	setString(&cfg.PostgresDSN, file.PostgresDSN)
	setString(&cfg.SQLitePath, file.SQLitePath)
	setString(&cfg.SnapshotPath, file.SnapshotPath)
	setString(&cfg.ElectionAdmin, file.ElectionAdmin)
	setString(&cfg.IdentitySecret, file.IdentitySecret)
	setString(&cfg.DelegationMode, file.DelegationMode)
	if len(file.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = file.KafkaBrokers
	}
	if file.EnableAuditConsumer != nil {
		cfg.EnableAuditConsumer = *file.EnableAuditConsumer
	}
	if file.EnableSnapshotWriter != nil {
		cfg.EnableSnapshotWriter = *file.EnableSnapshotWriter
	}
	if err := setDuration(&cfg.SnapshotInterval, file.SnapshotInterval); err != nil {
		return fmt.Errorf("config file %s: snapshot_interval: %w", path, err)
	}
	if err := setDuration(&cfg.WorkerPollInterval, file.WorkerPollInterval); err != nil {
		return fmt.Errorf("config file %s: worker_poll_interval: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.ServiceName, os.Getenv("SERVICE_NAME"))
	setString(&cfg.HTTPPort, os.Getenv("HTTP_PORT"))
	setString(&cfg.StorageDriver, os.Getenv("STORAGE_DRIVER"))
	setString(&cfg.PostgresDSN, os.Getenv("POSTGRES_DSN"))
	setString(&cfg.SQLitePath, os.Getenv("SQLITE_PATH"))
	setString(&cfg.SnapshotPath, os.Getenv("SNAPSHOT_PATH"))
	setString(&cfg.ElectionAdmin, os.Getenv("ELECTION_ADMIN"))
	setString(&cfg.IdentitySecret, os.Getenv("IDENTITY_SECRET"))
	setString(&cfg.DelegationMode, os.Getenv("DELEGATION_MODE"))

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}

	cfg.EnableAuditConsumer = envBool("ENABLE_AUDIT_CONSUMER", cfg.EnableAuditConsumer)
	cfg.EnableSnapshotWriter = envBool("ENABLE_SNAPSHOT_WRITER", cfg.EnableSnapshotWriter)
	if err := setDuration(&cfg.SnapshotInterval, os.Getenv("SNAPSHOT_INTERVAL")); err != nil {
		return fmt.Errorf("SNAPSHOT_INTERVAL: %w", err)
	}
	if err := setDuration(&cfg.WorkerPollInterval, os.Getenv("WORKER_POLL_INTERVAL")); err != nil {
		return fmt.Errorf("WORKER_POLL_INTERVAL: %w", err)
	}
	return nil
}

func validate(cfg Config) error {
	switch cfg.StorageDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && strings.TrimSpace(cfg.PostgresDSN) == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres storage driver")
	}
	if cfg.StorageDriver == "sqlite" && strings.TrimSpace(cfg.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite storage driver")
	}
	switch cfg.DelegationMode {
	case "single_hop", "chained":
	default:
		return fmt.Errorf("unknown delegation mode %q", cfg.DelegationMode)
	}
	if strings.TrimSpace(cfg.ElectionAdmin) == "" {
		return fmt.Errorf("ELECTION_ADMIN must not be empty")
	}
	return nil
}

func setString(target *string, value string) {
	value = strings.TrimSpace(value)
	if value != "" {
		*target = value
	}
}

func setDuration(target *time.Duration, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if parsed <= 0 {
		return fmt.Errorf("duration must be positive, got %s", parsed)
	}
	*target = parsed
	return nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
