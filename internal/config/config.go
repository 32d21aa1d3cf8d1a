// Package config loads service configuration from an optional YAML file with
// environment-variable overrides (prefix PROSPECIA_, e.g. PROSPECIA_STORAGE_DRIVER).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"prospecia/internal/core"
	"prospecia/internal/infra/blob"
)

// Config is the full service configuration tree.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// BlobConfig selects the object storage backend for history archives.
type BlobConfig struct {
	Driver         string `mapstructure:"driver"`
	FSRoot         string `mapstructure:"fs_root"`
	S3Region       string `mapstructure:"s3_region"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3AccessKeyID  string `mapstructure:"s3_access_key_id"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
	S3SessionToken string `mapstructure:"s3_session_token"`
	S3UsePathStyle bool   `mapstructure:"s3_use_path_style"`
}

// AuditConfig controls the NATS audit sink.
type AuditConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LogConfig controls logging behaviour.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given directory (file "prospecia.yaml",
// optional) and the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("prospecia")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("PROSPECIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.driver", string(core.StorageSQLite))
	v.SetDefault("storage.sqlite_path", "prospecia.db")
	v.SetDefault("blob.driver", string(blob.DriverFilesystem))
	v.SetDefault("blob.fs_root", "./blobdata")
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.subject_prefix", "prospecia.audit.")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("blob driver s3 requires s3_bucket")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	return nil
}

// StorageConfig maps onto the service storage factory input.
func (c Config) StorageConfig() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobConfig maps onto the blob store factory input.
func (c Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          c.Blob.S3Region,
			Bucket:          c.Blob.S3Bucket,
			Endpoint:        c.Blob.S3Endpoint,
			AccessKeyID:     c.Blob.S3AccessKeyID,
			SecretAccessKey: c.Blob.S3SecretKey,
			SessionToken:    c.Blob.S3SessionToken,
			PathStyle:       c.Blob.S3UsePathStyle,
		},
	}
}
