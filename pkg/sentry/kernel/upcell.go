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

import "sync"

// UPCell provides interior mutability for a value that is only ever
// touched from one logical thread at a time, justified by the
// uniprocessor invariant: at most one task runs at any instant, and
// nothing re-enters the cell while a switch is in flight.
//
// Unlike a plain mutex, UPCell does not block a second borrow: it panics.
// A second concurrent ExclusiveAccess means a borrow was held across a
// context switch (or some other re-entrant call), which is a design bug,
// not a contention event to wait out.
type UPCell[T any] struct {
	mu    sync.Mutex
	value T
}

// NewUPCell wraps value in a new cell.
func NewUPCell[T any](value T) *UPCell[T] {
	return &UPCell[T]{value: value}
}

// Access is a live exclusive borrow of a UPCell's contents. It must be
// released with Release before any code path that might re-enter the
// cell runs, and in particular before calling Switch.
type Access[T any] struct {
	cell *UPCell[T]
}

// ExclusiveAccess returns an exclusive borrow of the cell's contents. It
// panics if a borrow is already outstanding.
func (c *UPCell[T]) ExclusiveAccess() *Access[T] {
	if !c.mu.TryLock() {
		panic("kernel: UPCell borrowed while another borrow is outstanding; a context switch or re-entrant call happened with the borrow still held")
	}
	return &Access[T]{cell: c}
}

// Get returns a pointer to the borrowed value, valid until Release.
func (a *Access[T]) Get() *T { return &a.cell.value }

// Release ends the borrow. Callers must call this before invoking Switch.
func (a *Access[T]) Release() { a.cell.mu.Unlock() }
