// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv populates cfg from environ, a list of KEY=value pairs in the
// form returned by [os.Environ]. Fields are mapped through the `env` and
// `envPrefix` tags on [StructuredConfig].
func parseEnv(cfg *StructuredConfig, environ []string) error {
	err := env.ParseWithOptions(cfg, env.Options{
		Environment: env.ToMap(environ),
	})
	if err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}
