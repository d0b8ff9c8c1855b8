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

func TestNewAppTrapContext(t *testing.T) {
	tc := NewAppTrapContext(0x1000, 0x2000)
	if tc.Sepc != 0x1000 {
		t.Fatalf("Sepc = %#x, want 0x1000", tc.Sepc)
	}
	if tc.X[regSP] != 0x2000 {
		t.Fatalf("X[sp] = %#x, want 0x2000", tc.X[regSP])
	}
	if tc.Sstatus != SPPUser {
		t.Fatalf("Sstatus = %v, want SPPUser", tc.Sstatus)
	}
}

func TestTrapContextSyscallRoundTrip(t *testing.T) {
	tc := NewAppTrapContext(0, 0)
	tc.X[regA7] = SysWrite
	tc.X[regA0] = 1
	tc.X[regA1] = 0x4000
	tc.X[regA2] = 13

	if got := tc.SyscallNo(); got != SysWrite {
		t.Fatalf("SyscallNo() = %d, want %d", got, SysWrite)
	}
	a0, a1, a2 := tc.SyscallArgs()
	if a0 != 1 || a1 != 0x4000 || a2 != 13 {
		t.Fatalf("SyscallArgs() = (%d,%d,%d), want (1,0x4000,13)", a0, a1, a2)
	}

	tc.SetReturn(13)
	if tc.X[regA0] != 13 {
		t.Fatalf("SetReturn did not write a0: got %d", tc.X[regA0])
	}
}

func TestTrapContextAdvancePastEcall(t *testing.T) {
	tc := NewAppTrapContext(0x8000, 0)
	tc.AdvancePastEcall()
	if tc.Sepc != 0x8004 {
		t.Fatalf("Sepc after AdvancePastEcall = %#x, want 0x8004", tc.Sepc)
	}
}

func TestTrapContextSetSyscallRequestAndReturn(t *testing.T) {
	tc := NewAppTrapContext(0, 0)
	tc.SetSyscallRequest(SysGetTime, 1, 2, 3)

	if got := tc.SyscallNo(); got != SysGetTime {
		t.Fatalf("SyscallNo() = %d, want %d", got, SysGetTime)
	}
	a0, a1, a2 := tc.SyscallArgs()
	if a0 != 1 || a1 != 2 || a2 != 3 {
		t.Fatalf("SyscallArgs() = (%d,%d,%d), want (1,2,3)", a0, a1, a2)
	}

	tc.SetReturn(42)
	if got := tc.Return(); got != 42 {
		t.Fatalf("Return() = %d, want 42", got)
	}
}
