// Package config fills env-tagged structs from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses the process environment into cfg, a pointer to a struct with
// `env` and `envDefault` tags.
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadFrom parses vars instead of the process environment. Variables missing
// from vars fall back to their defaults.
func LoadFrom(cfg any, vars map[string]string) error {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(cfg, env.Options{Environment: vars})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
