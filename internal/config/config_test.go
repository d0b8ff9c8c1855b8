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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeTemp(t, `
tick_interval_us = 5000

[log]
level = "debug"

[[apps]]
name = "power_3"

[[apps]]
name = "power_5"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickIntervalUS != 5000 {
		t.Fatalf("TickIntervalUS = %d, want 5000", cfg.TickIntervalUS)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if got := cfg.AppNames(); len(got) != 2 || got[0] != "power_3" || got[1] != "power_5" {
		t.Fatalf("AppNames() = %v, want [power_3 power_5]", got)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
[[apps]]
name = "hello_world"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickIntervalUS != 10_000 {
		t.Fatalf("TickIntervalUS = %d, want default 10000", cfg.TickIntervalUS)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadRejectsNoApps(t *testing.T) {
	path := writeTemp(t, `tick_interval_us = 1000`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when the manifest names no apps")
	}
}

func TestLoadRejectsZeroTickInterval(t *testing.T) {
	path := writeTemp(t, `
tick_interval_us = 0
[[apps]]
name = "hello_world"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when tick_interval_us is zero")
	}
}
