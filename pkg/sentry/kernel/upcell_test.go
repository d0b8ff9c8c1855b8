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

func TestUPCellGetSet(t *testing.T) {
	c := NewUPCell(42)
	a := c.ExclusiveAccess()
	if got := *a.Get(); got != 42 {
		t.Fatalf("Get() = %d, want 42", got)
	}
	*a.Get() = 7
	a.Release()

	a2 := c.ExclusiveAccess()
	defer a2.Release()
	if got := *a2.Get(); got != 7 {
		t.Fatalf("Get() after mutation = %d, want 7", got)
	}
}

func TestUPCellDoubleBorrowPanics(t *testing.T) {
	c := NewUPCell(0)
	a := c.ExclusiveAccess()
	defer a.Release()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected ExclusiveAccess to panic while a borrow is outstanding")
		}
	}()
	c.ExclusiveAccess()
}

func TestUPCellReleaseThenBorrowAgain(t *testing.T) {
	c := NewUPCell("x")
	a := c.ExclusiveAccess()
	a.Release()

	// Must not panic: the first borrow was released.
	a2 := c.ExclusiveAccess()
	a2.Release()
}
