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

import "runtime"

const (
	// KernelStackSize is the size in bytes of each task's implicit
	// kernel stack region.
	KernelStackSize = 8192
	// UserMemorySize is the size of the flat simulated user address
	// space backing write()'s buf_ptr argument.
	UserMemorySize = 4096
	// kernelStackAddrBase is a notional base address used only to give
	// each slot's kernel stack a recognizable "address" in logs; no
	// code dereferences it.
	kernelStackAddrBase = 0x80200000
	// userStackAddrBase is the notional base address of each slot's user
	// stack, the same way kernelStackAddrBase stands in for a real
	// linked address; it only ever appears as TrapContext.X[regSP].
	userStackAddrBase = 0x10000000
)

// kernelStackTop computes the address of slot's kernel stack top: fixed
// per slot, derivable from the slot index alone, as spec.md's TCB
// "implicit: a kernel stack region" requires.
func kernelStackTop(slot int) uint64 {
	return kernelStackAddrBase + uint64(slot+1)*KernelStackSize
}

// userStackTop computes the notional address of slot's user stack top,
// the initial sp the loader would have set in a fresh task's TrapContext.
func userStackTop(slot int) uint64 {
	return userStackAddrBase + uint64(slot+1)*UserMemorySize
}

// AppFunc is a statically-linked application's entry point: the code the
// loader would otherwise have copied into a fixed slot as a pre-linked
// image. It runs on its own goroutine and drives user-mode execution
// through the Hart handle it's given.
type AppFunc func(h *Hart)

// Task is one application slot: the TaskControlBlock (status, context,
// time accounting) plus the goroutine and resources backing it in this
// hosted simulator (its kernel stack region, its flat user memory, and
// the app entry point it runs).
type Task struct {
	// Slot is this task's fixed index into the task table.
	Slot int
	// Name identifies the task in logs and exit summaries.
	Name string

	// Status is this TCB's lifecycle state. Mutated only while the
	// owning TaskManager's inner cell is borrowed.
	Status TaskStatus
	// Context is the saved kernel-side context used to resume this
	// task. It is set once by newTask via GotoRestoreContext; Switch only
	// uses its resume gate, and markCurrentExited clears that gate.
	Context TaskContext
	// KernelTimeUS and UserTimeUS are cumulative microseconds spent in
	// supervisor and user mode respectively, on behalf of this task.
	KernelTimeUS uint64
	UserTimeUS   uint64

	// Trap is the register snapshot for this task's current (or most
	// recent) trap. It stands in for the frame real hardware keeps at the
	// top of the kernel stack; it is a plain field here, and kernelStack
	// does not hold it. The trap dispatcher reads the syscall number
	// and arguments out of it and writes the return value back in.
	Trap TrapContext

	kernelStack []byte
	userMemory  []byte
	appFunc     AppFunc
	manager     *TaskManager
}

// newTask constructs a Ready task in slot, backed by app, and starts its
// goroutine. The goroutine immediately parks waiting to be dispatched.
func newTask(manager *TaskManager, slot int, name string, app AppFunc) *Task {
	resume := make(chan struct{})
	t := &Task{
		Slot:        slot,
		Name:        name,
		Status:      Ready,
		kernelStack: make([]byte, KernelStackSize),
		userMemory:  make([]byte, UserMemorySize),
		appFunc:     app,
		manager:     manager,
	}
	t.Context = GotoRestoreContext(kernelStackTop(slot), resume)
	// The loader would construct the fresh TrapContext an app's first
	// sret resumes into; entry has no meaning here since the app body
	// runs as a Go closure rather than code sret jumps to, but the user
	// stack pointer it would see on an ecall is still meaningful.
	t.Trap = NewAppTrapContext(0, userStackTop(slot))
	go t.run()
	return t
}

// run is the task goroutine body: it parks until first dispatched, then
// runs the application to completion (normally via Hart.Exit, which never
// returns to here).
func (t *Task) run() {
	<-t.Context.resume
	h := &Hart{task: t}
	t.appFunc(h)
	// The app returned without calling Exit: treat it as exit(0), the
	// same way a process falling off main() implicitly exits.
	t.manager.ExitCurrentAndRunExit(t, 0)
	runtime.Goexit()
}
