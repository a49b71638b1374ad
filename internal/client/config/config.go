package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/services"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
)

// Backup media for the mobile session tier.
const (
	BackupFile  = "file"
	BackupRedis = "redis"
	BackupS3    = "s3"
)

// Config holds runtime settings for the clinauth CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the remote identity gRPC endpoint.
//   - DatabaseFile: path of the local SQLite file.
//   - RemotePreferred: remote-first with local fallback when true, local-only otherwise.
//   - HostProfile: "web" or "mobile"; mobile engages the backup and transient session tiers.
//   - FallbackPolicy: "any" or "unreachable".
//   - BackupMedium and its settings: where the mobile backup tier lives.
//   - ResetURLBase: reset form URL embedded in fallback reset links.
//   - RequestTimeout: deadline of a single remote call.
type Config struct {
	ServerEndpointAddr string        `env:"CLINAUTH_SERVER_ADDR"`
	DatabaseFile       string        `env:"CLINAUTH_DB_FILE"`
	RemotePreferred    bool          `env:"CLINAUTH_REMOTE_PREFERRED"`
	HostProfile        string        `env:"CLINAUTH_HOST_PROFILE"`
	FallbackPolicy     string        `env:"CLINAUTH_FALLBACK_POLICY"`
	BackupMedium       string        `env:"CLINAUTH_BACKUP_MEDIUM"`
	BackupDir          string        `env:"CLINAUTH_BACKUP_DIR"`
	RedisAddr          string        `env:"CLINAUTH_REDIS_ADDR"`
	S3Bucket           string        `env:"CLINAUTH_S3_BUCKET"`
	S3Region           string        `env:"CLINAUTH_S3_REGION"`
	S3BaseEndpoint     string        `env:"CLINAUTH_S3_ENDPOINT"`
	S3AccessKey        string        `env:"CLINAUTH_S3_ACCESS_KEY"`
	S3SecretKey        string        `env:"CLINAUTH_S3_SECRET_KEY"`
	ResetURLBase       string        `env:"CLINAUTH_RESET_URL"`
	RequestTimeout     time.Duration `env:"CLINAUTH_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseFile = "clinauth.db"
	c.RemotePreferred = false
	c.HostProfile = string(session.ProfileWeb)
	c.FallbackPolicy = string(services.FallbackAny)
	c.BackupMedium = BackupFile
	c.BackupDir = ".clinauth-backup"
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Bucket = "clinauth-sessions"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ResetURLBase = "http://localhost:3000/reset-password"
	c.RequestTimeout = 5 * time.Second
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	if !session.Profile(c.HostProfile).Valid() {
		return fmt.Errorf("unknown host profile %q", c.HostProfile)
	}
	if _, err := services.ParseFallbackPolicy(c.FallbackPolicy); err != nil {
		return err
	}
	switch c.BackupMedium {
	case BackupFile, BackupRedis, BackupS3:
	default:
		return fmt.Errorf("unknown backup medium %q", c.BackupMedium)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
