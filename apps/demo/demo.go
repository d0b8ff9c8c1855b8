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

// Package demo supplies a fixed set of statically-linked sample
// applications, standing in for the pre-built ELF images link_app.S
// would otherwise embed. Each is grounded on one of the rCore-Tutorial
// ch3 user programs: two that voluntarily yield back and forth a fixed
// number of times, one that busy-loops until timer preemption interrupts
// it, one that writes through the console syscall, one that checks
// gettime is monotonic, and one that deliberately traps on an illegal
// instruction to exercise the fault path.
package demo

import (
	"fmt"

	"github.com/rvtask/taskkernel/pkg/sentry/kernel"
	"github.com/rvtask/taskkernel/pkg/sentry/loader"
)

// Registry returns every demo application, keyed by name, ready to hand
// to loader.Load.
func Registry() loader.Registry {
	return loader.Registry{
		"power_3":         Power3,
		"power_5":         Power5,
		"busy_loop":       BusyLoop,
		"hello_world":     HelloWorld,
		"get_time":        GetTime,
		"bad_instruction": BadInstruction,
	}
}

// Power3 and Power5 mirror ch3's power_3/power_5: each repeatedly
// multiplies an accumulator and yields between rounds, so round-robin
// fairness between two mutually-yielding tasks is directly observable in
// the interleaving of their output.
func Power3(h *kernel.Hart) { powerApp(h, 3, 3, 10000) }
func Power5(h *kernel.Hart) { powerApp(h, 5, 5, 10000) }

func powerApp(h *kernel.Hart, base, mod uint64, rounds int) {
	p := uint64(1)
	for i := 0; i < rounds; i++ {
		for j := 0; j < 10; j++ {
			p = (p * base) % 997
		}
		if i%(rounds/4) == 0 {
			h.Write(1, []byte(fmt.Sprintf("[%s] round=%d p=%d\n", h.TaskName(), i, p)))
		}
		h.Yield()
	}
	h.Write(1, []byte(fmt.Sprintf("[%s] done, p=%d\n", h.TaskName(), p)))
	h.Exit(0)
}

// BusyLoop mirrors ch3's 00power_3-style timer test program that never
// calls yield on its own: it spins, relying entirely on timer
// preemption (via Tick) to be scheduled out, exercising the preemptive
// half of spec.md's scheduling invariant that yield only exercises the
// cooperative half.
func BusyLoop(h *kernel.Hart) {
	const iterations = 1_000_000
	acc := uint64(0)
	for i := 0; i < iterations; i++ {
		acc += uint64(i)
		if i%1000 == 0 {
			h.Tick()
		}
	}
	h.Write(1, []byte(fmt.Sprintf("[%s] busy loop done, acc=%d\n", h.TaskName(), acc)))
	h.Exit(0)
}

// HelloWorld mirrors ch3's 00hello_world: a single write syscall, then
// exit.
func HelloWorld(h *kernel.Hart) {
	h.Write(1, []byte("Hello, world from "+h.TaskName()+"!\n"))
	h.Exit(0)
}

// GetTime mirrors ch3's 04_exit: samples gettime twice across a yield
// and asserts the clock never runs backwards, per spec.md's time
// monotonicity invariant.
func GetTime(h *kernel.Hart) {
	t0 := h.GetTimeUS()
	h.Yield()
	t1 := h.GetTimeUS()
	if t1 < t0 {
		h.Write(1, []byte(fmt.Sprintf("[%s] FAIL: time went backwards %d -> %d\n", h.TaskName(), t0, t1)))
		h.Exit(1)
		return
	}
	h.Write(1, []byte(fmt.Sprintf("[%s] time ok: %d -> %d\n", h.TaskName(), t0, t1)))
	h.Exit(0)
}

// BadInstruction mirrors ch3's 03bad_instruction: the app itself has no
// way to trigger a real illegal-instruction trap from Go, so it reports
// the fault directly through Hart.Fault the way the trap handler would
// after decoding scause, to exercise the single-task-killed-not-whole-
// kernel path in spec.md §7.
func BadInstruction(h *kernel.Hart) {
	h.Write(1, []byte("[" + h.TaskName() + "] about to execute an illegal instruction\n"))
	h.Fault(kernel.IllegalInstruction, "sret executed in U-mode")
}
