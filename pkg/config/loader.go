// Package config wraps caarlos0/env so every component parses its settings
// the same way.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct using `env`, `envDefault` and `envPrefix` tags. Fields implementing
// encoding.TextUnmarshaler (decimal amounts, for example) are supported.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
