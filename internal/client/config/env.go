package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays Config with CLINAUTH_* environment variables. Unset
// variables leave the field untouched. Panics on malformed values, like the
// other loaders.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
