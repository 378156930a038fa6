// Package config parses service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables declared with `env` tags.
// Defaults come from `envDefault`; list values split on `envSeparator`.
//
// Example:
//
//	type Config struct {
//	    HTTPPort     int      `env:"LISTINGS_HTTP_PORT" envDefault:"8080"`
//	    KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
//	}
//
// Callers layer their own invariant checks on top; Load only reports
// parse failures.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
