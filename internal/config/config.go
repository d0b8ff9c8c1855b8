// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads boot-time configuration for the kernel binary: the
// ordered application manifest, the timer tick interval, and logging
// settings a real RV64 build would otherwise bake into link_app.S and a
// handful of #define constants.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// App is one entry in the boot manifest: the name of a compiled-in
// application to resolve via the loader's Registry.
type App struct {
	Name string `toml:"name"`
}

// Log holds logging configuration.
type Log struct {
	Level string `toml:"level"`
}

// Config is the top-level boot configuration, decoded from a TOML file.
type Config struct {
	TickIntervalUS uint64 `toml:"tick_interval_us"`
	Apps           []App  `toml:"apps"`
	Log            Log    `toml:"log"`
}

// Default returns the configuration used when no file is given: the
// spec's default tick interval and logging at info level, with the
// caller responsible for supplying apps explicitly.
func Default() Config {
	return Config{
		TickIntervalUS: 10_000,
		Log:            Log{Level: "info"},
	}
}

// Load decodes path as TOML into a Config seeded with Default's values,
// so a file that omits tick_interval_us or log still gets sane defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the scheduler assumes on boot: at least
// one app, and a nonzero tick interval.
func (c Config) Validate() error {
	if len(c.Apps) == 0 {
		return fmt.Errorf("config: apps must name at least one application")
	}
	if c.TickIntervalUS == 0 {
		return fmt.Errorf("config: tick_interval_us must be nonzero")
	}
	return nil
}

// AppNames returns the configured app names in manifest order.
func (c Config) AppNames() []string {
	out := make([]string, len(c.Apps))
	for i, a := range c.Apps {
		out[i] = a.Name
	}
	return out
}
