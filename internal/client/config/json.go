package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/flagx"
	"github.com/dmitrijs2005/clinauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep the current value, hence the pointer for the only boolean.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabaseFile       string         `json:"database_file"`
	RemotePreferred    *bool          `json:"remote_preferred"`
	HostProfile        string         `json:"host_profile"`
	FallbackPolicy     string         `json:"fallback_policy"`
	BackupMedium       string         `json:"backup_medium"`
	BackupDir          string         `json:"backup_dir"`
	RedisAddr          string         `json:"redis_addr"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	ResetURLBase       string         `json:"reset_url_base"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag nothing is loaded. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	setString(&cfg.HostProfile, jc.HostProfile)
	setString(&cfg.FallbackPolicy, jc.FallbackPolicy)
	setString(&cfg.BackupMedium, jc.BackupMedium)
	setString(&cfg.BackupDir, jc.BackupDir)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.ResetURLBase, jc.ResetURLBase)

	if jc.RemotePreferred != nil {
		cfg.RemotePreferred = *jc.RemotePreferred
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
