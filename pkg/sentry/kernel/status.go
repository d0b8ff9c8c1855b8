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

// Package kernel implements the task subsystem: the task control block,
// the round-robin scheduler, the context-switch handoff between task
// goroutines, the trap dispatcher, and the timer-driven preemption loop.
package kernel

// TaskStatus is the lifecycle state of a TaskControlBlock.
//
// Valid transitions: UnInit -> Ready (boot init), Ready -> Running
// (dispatch), Running -> Ready (suspend), Running -> Exited (exit).
// Exited is terminal.
type TaskStatus int

const (
	// UnInit is the zero value: the slot has not been initialized by the
	// loader yet.
	UnInit TaskStatus = iota
	// Ready means the task is runnable and waiting for the scheduler.
	Ready
	// Running means the task is the one task currently executing.
	Running
	// Exited is terminal: the task will never run again.
	Exited
)

func (s TaskStatus) String() string {
	switch s {
	case UnInit:
		return "UnInit"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Exited:
		return "Exited"
	default:
		return "Unknown"
	}
}
