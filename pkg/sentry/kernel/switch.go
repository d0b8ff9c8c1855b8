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

// Switch is the context-switch primitive: it hands control to next and,
// if curr has an owner still alive, does not return to its caller until
// curr is itself switched back in by some later Switch call.
//
// On bare metal this is hand-written assembly that saves ra/sp/s0-s11
// into *curr and loads the same from *next, returning by jumping to the
// loaded ra. That non-local resumption has no direct expression as a
// normal Go function call (spec.md §9 notes the same of the original
// assembly), so here it is realized as a rendezvous on each context's
// resume channel: next.resume <- struct{}{} is the "jump to next", and
// <-curr.resume is the point some future Switch(_, curr) call resumes.
//
// curr or next having a nil resume channel means "no owner": a throwaway
// context (RunFirstTask's discarded "current"), or a context whose owner
// has exited and will never be resumed again.
//
// Callers must have released every UPCell borrow of shared task-table
// state before calling Switch, since the task being resumed may
// immediately re-enter that state.
func Switch(curr, next *TaskContext) {
	if next.resume != nil {
		next.resume <- struct{}{}
	}
	if curr.resume != nil {
		<-curr.resume
	}
}
