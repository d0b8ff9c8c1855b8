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

// SstatusSPP records sstatus.SPP: the privilege level a trap returns to.
type SstatusSPP int

const (
	// SPPUser means the trapped code was running in user mode; sret
	// returns to user mode.
	SPPUser SstatusSPP = iota
	// SPPSupervisor means the trap was taken from supervisor mode.
	SPPSupervisor
)

// TrapContext is the full register snapshot captured on entry from user
// mode: all 32 general-purpose registers, sstatus (privilege/interrupt
// state at the time of the trap), and sepc (the user PC). It is stored at
// the top of the trapping task's kernel stack; __alltraps and __restore
// agree on its layout.
//
// Register indices follow the standard RV64 ABI names: X[2]=sp, X[10]=a0,
// X[11]=a1, X[12]=a2, X[17]=a7.
type TrapContext struct {
	X       [32]uint64
	Sstatus SstatusSPP
	Sepc    uint64
}

const (
	regSP = 2
	regA0 = 10
	regA1 = 11
	regA2 = 12
	regA7 = 17
)

// NewAppTrapContext builds the TrapContext an app loader constructs at the
// top of a fresh task's kernel stack: user PC at entry, user sp at
// userStackTop, and sstatus.SPP = User so the first sret lands in user
// mode.
func NewAppTrapContext(entry, userStackTop uint64) TrapContext {
	tc := TrapContext{Sepc: entry, Sstatus: SPPUser}
	tc.X[regSP] = userStackTop
	return tc
}

// SetSyscallRequest loads a7/a0-a2 with an outgoing ecall's number and
// arguments, the same registers __alltraps would have populated from the
// trapped user code's own a7/a0-a2 at the moment it executed ecall.
func (tc *TrapContext) SetSyscallRequest(sysno, a0, a1, a2 uint64) {
	tc.X[regA7] = sysno
	tc.X[regA0] = a0
	tc.X[regA1] = a1
	tc.X[regA2] = a2
}

// SyscallNo returns the syscall number an ecall trap carries in a7.
func (tc *TrapContext) SyscallNo() uint64 { return tc.X[regA7] }

// SyscallArgs returns the three syscall argument registers a0-a2.
func (tc *TrapContext) SyscallArgs() (a0, a1, a2 uint64) {
	return tc.X[regA0], tc.X[regA1], tc.X[regA2]
}

// SetReturn writes a syscall's return value into a0, the register the ABI
// uses for it.
func (tc *TrapContext) SetReturn(v uint64) { tc.X[regA0] = v }

// Return reads back the value dispatch wrote into a0 via SetReturn, the
// same way __restore reloads a0 from the trap frame before sret.
func (tc *TrapContext) Return() uint64 { return tc.X[regA0] }

// AdvancePastEcall advances sepc by 4, past the ecall instruction that
// trapped, so sret resumes at the following instruction rather than
// re-trapping on the same ecall.
func (tc *TrapContext) AdvancePastEcall() { tc.Sepc += 4 }
