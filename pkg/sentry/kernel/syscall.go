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

import "fmt"

// Recognized syscall numbers, per the ABI in spec.md §6: number in a7,
// three arguments in a0-a2, return value written back to a0.
const (
	SysWrite   = 64
	SysExit    = 93
	SysYield   = 124
	SysGetTime = 169
)

// errBadFD is the Linux errno value EBADF, returned (as Linux does, via
// a0) rather than through a Go error, since this is what a real ecall
// return register would carry.
const errBadFD = ^uint64(9) + 1 // two's complement encoding of -9

// ConsoleWriter is the out-of-core console facility's interface: the only
// thing the write() syscall needs from it. Fd 1 is the only supported
// descriptor; anything else is an unsupported-fd error per spec.md §4.5.
type ConsoleWriter interface {
	Write(p []byte) (n int, err error)
}

// dispatch decodes and executes the syscall currently loaded into t.Trap
// (via SetSyscallRequest), the way the real trap dispatcher reads a7/a0-a2
// out of the trap frame __alltraps saved at the top of the kernel stack.
// It writes the result back into t.Trap via SetReturn and advances sepc
// past the ecall, except for exit, which never returns to user mode and
// so never gets the chance.
func (tm *TaskManager) dispatch(t *Task) {
	sysno := t.Trap.SyscallNo()
	a0, a1, a2 := t.Trap.SyscallArgs()

	switch sysno {
	case SysWrite:
		fd := a0
		ptr, length := a1, a2
		if fd != 1 {
			t.Trap.SetReturn(errBadFD)
			t.Trap.AdvancePastEcall()
			return
		}
		if ptr+length > uint64(len(t.userMemory)) {
			panic(fmt.Sprintf("kernel: write() buf_ptr=%#x len=%d out of bounds of task %d's user memory", ptr, length, t.Slot))
		}
		n, err := tm.console.Write(t.userMemory[ptr : ptr+length])
		if err != nil {
			t.Trap.SetReturn(errBadFD)
		} else {
			t.Trap.SetReturn(uint64(n))
		}
		t.Trap.AdvancePastEcall()

	case SysExit:
		tm.ExitCurrentAndRunExit(t, int32(a0))

	case SysYield:
		// The trap frame must be fully updated before control is handed
		// to the next task: this is the state Switch will resume into
		// once some later Switch call hands this task the CPU back.
		t.Trap.SetReturn(0)
		t.Trap.AdvancePastEcall()
		tm.SuspendCurrentAndRunNext()

	case SysGetTime:
		t.Trap.SetReturn(tm.timer.GetTimeUS())
		t.Trap.AdvancePastEcall()

	default:
		// An unrecognized syscall number is an ABI violation: the
		// caller's toolchain emitted something this kernel was never
		// built to understand. Not recoverable; per spec.md §7 this
		// is fatal, not a per-task fault.
		panic(fmt.Sprintf("kernel: unknown syscall number %d from task %d", sysno, t.Slot))
	}
}
