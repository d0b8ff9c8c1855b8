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

// TaskContext is the minimal register set a voluntary context switch
// preserves: a resume point, the kernel stack pointer, and the
// callee-saved general-purpose registers the RV64 calling convention
// requires a switch to carry (s0-s11, plus ra and sp already broken out).
//
// On bare metal this layout is fixed and known to the hand-written switch
// assembly. Here the resume point is realized as a channel rather than a
// return address: see Switch. RA and SP are kept as plain data so the
// struct's shape still matches the spec and so diagnostics can print a
// recognizable "address" for a task's kernel stack.
type TaskContext struct {
	// RA records the resume path: restoreRA once the context has been
	// pointed at the trap-return path by GotoRestoreContext, 0 if never
	// initialized.
	RA uint64
	// SP is the kernel stack pointer this context resumes with.
	SP uint64
	// S holds the callee-saved s0-s11 slots. The simulator never reads
	// or writes these; they exist so the struct's layout matches the spec.
	S [12]uint64

	// resume is the goroutine park/resume gate backing this context's
	// non-local return. nil means "no owner to resume" (a throwaway
	// context, or a context whose owning task has exited).
	resume chan struct{}
}

// restoreRA is a sentinel standing in for "the address of __restore": on
// real hardware this would be the entry point of the trap-return stub;
// here it only needs to be distinguishable from the zero value.
const restoreRA uint64 = 1

// ZeroTaskContext returns an all-zero context: no resume point, no stack,
// no owner. Used as the throwaway "current" context passed to the first
// Switch call in RunFirstTask.
func ZeroTaskContext() TaskContext {
	return TaskContext{}
}

// GotoRestoreContext builds the context a freshly-loaded task starts in:
// resuming it re-enters user mode via the trap-return path with the given
// kernel stack top, backed by resume as its park/resume gate.
func GotoRestoreContext(kstackTop uint64, resume chan struct{}) TaskContext {
	return TaskContext{RA: restoreRA, SP: kstackTop, resume: resume}
}
