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

import "testing"

func TestFakeClockAdvanceMonotonic(t *testing.T) {
	c := NewFakeClock(1000)
	if got := c.NowUS(); got != 1000 {
		t.Fatalf("NowUS() = %d, want 1000", got)
	}
	if got := c.Advance(500); got != 1500 {
		t.Fatalf("Advance(500) = %d, want 1500", got)
	}
	if got := c.NowUS(); got != 1500 {
		t.Fatalf("NowUS() after Advance = %d, want 1500", got)
	}
}

func TestTimerDueRequiresEnable(t *testing.T) {
	c := NewFakeClock(0)
	tm := NewTimer(c, 100)
	tm.SetNextTrigger()
	c.Advance(1000)
	if tm.Due() {
		t.Fatal("Due() = true before EnableTimerInterrupt, want false")
	}
	tm.EnableTimerInterrupt()
	if !tm.Due() {
		t.Fatal("Due() = false after interval elapsed and interrupt enabled, want true")
	}
}

func TestTimerDueBeforeInterval(t *testing.T) {
	c := NewFakeClock(0)
	tm := NewTimer(c, 1000)
	tm.EnableTimerInterrupt()
	tm.SetNextTrigger()
	c.Advance(10)
	if tm.Due() {
		t.Fatal("Due() = true before interval elapsed, want false")
	}
	c.Advance(1000)
	if !tm.Due() {
		t.Fatal("Due() = false after interval elapsed, want true")
	}
}

func TestTimerSetNextTriggerResets(t *testing.T) {
	c := NewFakeClock(0)
	tm := NewTimer(c, 100)
	tm.EnableTimerInterrupt()
	tm.SetNextTrigger()
	c.Advance(100)
	if !tm.Due() {
		t.Fatal("expected Due() after one interval")
	}
	tm.SetNextTrigger()
	if tm.Due() {
		t.Fatal("Due() should be false immediately after re-triggering")
	}
}
