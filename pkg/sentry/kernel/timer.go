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

package kernel

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// DefaultTickIntervalUS is the tuning knob spec.md calls TICK_INTERVAL,
// approximately 10ms. The scheduler does not depend on its exact value.
const DefaultTickIntervalUS = 10_000

// Clock is the monotonic time source the timer driver reads. On real RV64
// hardware this is the `time`/`cycle` CSR scaled to microseconds; the
// hosted equivalent is CLOCK_MONOTONIC.
type Clock interface {
	NowUS() uint64
}

// UnixMonotonicClock reads CLOCK_MONOTONIC via golang.org/x/sys/unix,
// standing in for a CSR read on bare metal.
type UnixMonotonicClock struct{}

// NowUS implements Clock.
func (UnixMonotonicClock) NowUS() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// A CSR read cannot fail on real hardware; treat the hosted
		// equivalent failing as equally unrecoverable.
		panic("kernel: reading CLOCK_MONOTONIC: " + err.Error())
	}
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Nsec)/1_000
}

// FakeClock is a manually-advanced Clock for deterministic tests.
type FakeClock struct {
	us atomic.Uint64
}

// NewFakeClock returns a FakeClock starting at startUS.
func NewFakeClock(startUS uint64) *FakeClock {
	c := &FakeClock{}
	c.us.Store(startUS)
	return c
}

// NowUS implements Clock.
func (c *FakeClock) NowUS() uint64 { return c.us.Load() }

// Advance moves the clock forward by deltaUS and returns the new value.
func (c *FakeClock) Advance(deltaUS uint64) uint64 { return c.us.Add(deltaUS) }

// Timer is the timer driver: it reads the monotonic clock and tracks when
// the next tick is due. There is no maskable interrupt line to program
// in the hosted simulator; EnableTimerInterrupt instead sets a flag that
// Due checks, so no timer trap fires before the boot sequence has
// enabled timer interrupts.
type Timer struct {
	clock      Clock
	intervalUS uint64
	nextTrigger atomic.Uint64
	enabled    atomic.Bool
}

// NewTimer builds a Timer reading clock, ticking every intervalUS.
func NewTimer(clock Clock, intervalUS uint64) *Timer {
	return &Timer{clock: clock, intervalUS: intervalUS}
}

// GetTimeUS returns microseconds since boot (monotonic).
func (t *Timer) GetTimeUS() uint64 { return t.clock.NowUS() }

// SetNextTrigger reprograms the next timer compare value to now +
// intervalUS.
func (t *Timer) SetNextTrigger() {
	t.nextTrigger.Store(t.clock.NowUS() + t.intervalUS)
}

// EnableTimerInterrupt unmasks supervisor timer interrupts. On this
// hosted simulator that means Due can report true from now on; before
// this call Due always returns false.
func (t *Timer) EnableTimerInterrupt() { t.enabled.Store(true) }

// Due reports whether the next programmed trigger has passed. Callers
// that simulate a busy-looping application poll this between "retired
// instructions" to decide whether a timer trap should fire.
func (t *Timer) Due() bool {
	return t.enabled.Load() && t.clock.NowUS() >= t.nextTrigger.Load()
}
