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
	"runtime"
)

// FaultCause names a trap cause the dispatcher cannot hand off to a
// syscall: an illegal instruction or a bad memory access.
type FaultCause int

const (
	// IllegalInstruction corresponds to scause reporting an illegal
	// instruction exception.
	IllegalInstruction FaultCause = iota
	// StoreFault corresponds to a store/AMO page or access fault.
	StoreFault
	// LoadFault corresponds to a load page or access fault.
	LoadFault
)

func (c FaultCause) String() string {
	switch c {
	case IllegalInstruction:
		return "IllegalInstruction"
	case StoreFault:
		return "StoreFault"
	case LoadFault:
		return "LoadFault"
	default:
		return "UnknownFault"
	}
}

// faultExitCode is the synthetic exit code recorded for a task killed by
// a fault, distinguishing it in logs from a voluntary exit(0).
const faultExitCode = -1

// Hart ("hardware thread") is the handle an AppFunc uses to act as
// user-mode code: every method it exposes is a trap, crossing from user
// to supervisor mode and back exactly as __alltraps/__restore would on
// real hardware, bracketed by the same user/kernel time accounting calls
// the dispatcher makes in spec.md §4.4.
type Hart struct {
	task *Task
}

// TaskName returns the owning task's name, for apps that want to
// identify themselves in output.
func (h *Hart) TaskName() string { return h.task.Name }

// Write implements the write(fd, buf, len) syscall: fd=1 writes data to
// the console and returns its length; any other fd is an unsupported-fd
// error, surfaced as a negative return value the way Linux encodes
// errno in a0.
func (h *Hart) Write(fd int, data []byte) int64 {
	tm := h.task.manager
	tm.UserTimeEnd()
	n := copy(h.task.userMemory, data)
	h.task.Trap.SetSyscallRequest(SysWrite, uint64(fd), 0, uint64(n))
	tm.dispatch(h.task)
	result := h.task.Trap.Return()
	tm.UserTimeStart()
	return int64(result)
}

// GetTimeUS implements the gettime syscall: microseconds since boot.
func (h *Hart) GetTimeUS() uint64 {
	tm := h.task.manager
	tm.UserTimeEnd()
	h.task.Trap.SetSyscallRequest(SysGetTime, 0, 0, 0)
	tm.dispatch(h.task)
	result := h.task.Trap.Return()
	tm.UserTimeStart()
	return result
}

// Yield implements the yield syscall: suspend this task and switch to
// the next Ready one, returning 0 once this task is dispatched again.
func (h *Hart) Yield() uint64 {
	tm := h.task.manager
	tm.UserTimeEnd()
	h.task.Trap.SetSyscallRequest(SysYield, 0, 0, 0)
	tm.dispatch(h.task)
	result := h.task.Trap.Return()
	tm.UserTimeStart()
	return result
}

// Exit implements the exit(code) syscall: logs the exit code, transitions
// this task to Exited, and schedules the next task. It never returns to
// its caller; the owning goroutine terminates here.
func (h *Hart) Exit(code int32) {
	tm := h.task.manager
	tm.UserTimeEnd()
	h.task.Trap.SetSyscallRequest(SysExit, uint64(uint32(code)), 0, 0)
	tm.dispatch(h.task)
	runtime.Goexit()
}

// Fault simulates a trap the kernel cannot route to a syscall: an
// illegal instruction, or a store/load fault. Per spec.md §7 this
// terminates only the offending task; scheduling continues. It never
// returns to its caller.
func (h *Hart) Fault(cause FaultCause, detail string) {
	tm := h.task.manager
	tm.UserTimeEnd()
	tm.log.WithField("task", h.task.Name).
		Warnf("unhandled user fault: cause=%s detail=%s sepc=%#x", cause, detail, h.task.Trap.Sepc)
	tm.markCurrentExited(faultExitCode)
	tm.runNextTask()
	runtime.Goexit()
}

// Tick simulates the asynchronous arrival of a timer interrupt between
// "instructions": busy-looping application code calls this periodically
// to give the scheduler a chance to preempt it, the hosted equivalent of
// the CPU trapping to __alltraps on a timer compare match. It is a no-op
// unless the programmed trigger has passed.
func (h *Hart) Tick() {
	tm := h.task.manager
	if !tm.timer.Due() {
		return
	}
	tm.UserTimeEnd()
	tm.timer.SetNextTrigger()
	tm.SuspendCurrentAndRunNext()
	tm.UserTimeStart()
}

