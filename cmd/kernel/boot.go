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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/rvtask/taskkernel/apps/demo"
	"github.com/rvtask/taskkernel/internal/config"
	"github.com/rvtask/taskkernel/pkg/sentry/console"
	"github.com/rvtask/taskkernel/pkg/sentry/kernel"
	"github.com/rvtask/taskkernel/pkg/sentry/loader"
	"github.com/rvtask/taskkernel/pkg/sentry/mm"
)

type bootCommand struct {
	configPath string
	useTTY     bool
}

func (*bootCommand) Name() string     { return "boot" }
func (*bootCommand) Synopsis() string { return "boot the kernel and run every configured task to completion" }
func (*bootCommand) Usage() string {
	return "boot -config <path.toml> [-tty]\n  Boot the scheduler with the given manifest.\n"
}

func (c *bootCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to a TOML boot manifest")
	f.BoolVar(&c.useTTY, "tty", false, "write task output to the attached terminal in raw mode instead of stdout")
}

func (c *bootCommand) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	sessionID := uuid.New()

	if c.configPath == "" {
		fmt.Fprintln(os.Stderr, "boot: -config is required")
		return subcommands.ExitUsageError
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "boot:", err)
		return subcommands.ExitFailure
	}

	log := newLogger(cfg.Log.Level).WithField("session", sessionID.String())

	mm.Init(log)

	var writer kernel.ConsoleWriter
	if c.useTTY {
		tty, err := console.OpenHostTTY(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "boot:", err)
			return subcommands.ExitFailure
		}
		defer tty.Reset()
		writer = tty
	} else {
		writer = stdoutWriter{}
	}

	manifests := make([]loader.Manifest, len(cfg.Apps))
	for i, a := range cfg.Apps {
		manifests[i] = loader.Manifest{Name: a.Name}
	}
	appSpecs, err := loader.Load(".", manifests, demo.Registry())
	if err != nil {
		fmt.Fprintln(os.Stderr, "boot:", err)
		return subcommands.ExitFailure
	}

	clock := kernel.UnixMonotonicClock{}
	timer := kernel.NewTimer(clock, cfg.TickIntervalUS)
	timer.EnableTimerInterrupt()
	timer.SetNextTrigger()

	tm := kernel.NewTaskManager(appSpecs, timer, log, writer, kernel.ProcessExitShutdowner{})

	log.WithField("apps", cfg.AppNames()).Info("kernel program startup")
	tm.RunFirstTask()
	return subcommands.ExitSuccess
}

// stdoutWriter adapts os.Stdout to kernel.ConsoleWriter without putting
// the terminal in raw mode, for non-interactive runs.
type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
