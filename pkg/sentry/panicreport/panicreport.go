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

// Package panicreport is the out-of-core panic/backtrace reporter
// spec.md lists as an external collaborator: the thing a real RV64
// kernel's #[panic_handler] hands a PanicInfo to, which prints a
// message, file, and line and then halts via SBI shutdown. Hosted, a
// panic unwinds a single task's goroutine; Report snapshots the
// recovered value and a stack trace into an immutable Snapshot a caller
// can log, attach to a crash record, or compare against a prior
// snapshot, without the original panic's payload (which may alias
// mutable task state) continuing to change out from under it.
package panicreport

import (
	"fmt"
	"runtime/debug"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

// Snapshot is a deep-copied, frozen record of one panic: the recovered
// value, a formatted stack trace, and the task slot it came from.
type Snapshot struct {
	TaskSlot int
	TaskName string
	Value    any
	Stack    string
}

// Report builds a Snapshot from a recovered panic value. It deep-copies
// value with mohae/deepcopy before storing it, so a later mutation of
// the original (if it was a pointer or map the panicking goroutine still
// held a reference to) cannot corrupt the record after the fact — the
// same reason the original kernel's panic handler prints PanicInfo
// immediately rather than deferring past the exception frame's teardown.
func Report(taskSlot int, taskName string, value any) Snapshot {
	return Snapshot{
		TaskSlot: taskSlot,
		TaskName: taskName,
		Value:    deepcopy.Copy(value),
		Stack:    string(debug.Stack()),
	}
}

// Log writes the snapshot as a single structured error-level log entry,
// the hosted equivalent of the panic handler's direct UART write: cause
// plus location, then the SBI shutdown that follows it in the original.
func (s Snapshot) Log(log *logrus.Entry) {
	log.WithFields(logrus.Fields{
		"task_slot": s.TaskSlot,
		"task":      s.TaskName,
		"panic":     fmt.Sprint(s.Value),
	}).Error(s.Stack)
}

// Guard recovers a panic occurring in fn, reports it via report, and
// returns true if a panic was caught. It does not re-panic: per
// spec.md §7, a user-code fault or bug must not bring the whole
// scheduler down, only the task running when it happened.
func Guard(taskSlot int, taskName string, log *logrus.Entry, fn func()) (caught bool) {
	defer func() {
		if r := recover(); r != nil {
			Report(taskSlot, taskName, r).Log(log)
			caught = true
		}
	}()
	fn()
	return false
}
