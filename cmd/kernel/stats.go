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
	"math"
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

// statsCommand runs the same boot sequence as bootCommand but discards
// task output into an in-memory console and, once the scheduler shuts
// down, prints a per-task time-accounting summary instead — useful for
// scripting against the scheduler's fairness and accounting behavior
// without scraping application stdout.
type statsCommand struct {
	configPath string
}

func (*statsCommand) Name() string     { return "stats" }
func (*statsCommand) Synopsis() string { return "boot the kernel and report per-task timing statistics" }
func (*statsCommand) Usage() string {
	return "stats -config <path.toml>\n  Boot the scheduler with the given manifest and print timing stats.\n"
}

func (c *statsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to a TOML boot manifest")
}

func (c *statsCommand) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	sessionID := uuid.New()

	if c.configPath == "" {
		fmt.Fprintln(os.Stderr, "stats: -config is required")
		return subcommands.ExitUsageError
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "stats:", err)
		return subcommands.ExitFailure
	}

	log := newLogger(cfg.Log.Level).WithField("session", sessionID.String())
	mm.Init(log)

	mem := &console.Memory{}

	manifests := make([]loader.Manifest, len(cfg.Apps))
	for i, a := range cfg.Apps {
		manifests[i] = loader.Manifest{Name: a.Name}
	}
	appSpecs, err := loader.Load(".", manifests, demo.Registry())
	if err != nil {
		fmt.Fprintln(os.Stderr, "stats:", err)
		return subcommands.ExitFailure
	}

	clock := kernel.UnixMonotonicClock{}
	timer := kernel.NewTimer(clock, cfg.TickIntervalUS)
	timer.EnableTimerInterrupt()
	timer.SetNextTrigger()

	shutdowner := &kernel.RecordingShutdowner{}
	tm := kernel.NewTaskManager(appSpecs, timer, log, mem, shutdowner)
	tm.RunFirstTask()

	fmt.Printf("session: %s\n", sessionID)
	fmt.Printf("switch_time_total_us: %d\n", tm.SwitchTimeTotalUS())
	for _, t := range tm.Tasks() {
		fmt.Printf("task %-2d %-16s status=%-8s user_us=%-10d kernel_us=%-10d\n",
			t.Slot, t.Name, t.Status, t.UserTimeUS, t.KernelTimeUS)
	}
	fmt.Println("events:")
	for _, ev := range tm.Events(0, math.MaxUint64) {
		fmt.Printf("  t=%-10d task=%-2d %-8s %s\n", ev.TimeUS, ev.Task, ev.Kind, ev.Detail)
	}
	return subcommands.ExitSuccess
}
