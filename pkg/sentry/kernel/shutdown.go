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

import "os"

// Shutdowner is the SBI shutdown facility's interface: the one operation
// the scheduler needs from it once every task has exited. It is injected
// so tests can observe a clean shutdown without halting the test binary.
type Shutdowner interface {
	Shutdown()
}

// ProcessExitShutdowner calls os.Exit(0), standing in for the real SBI
// "system reset" call on actual hardware.
type ProcessExitShutdowner struct{}

// Shutdown implements Shutdowner.
func (ProcessExitShutdowner) Shutdown() { os.Exit(0) }

// RecordingShutdowner is a Shutdowner for tests: it records that it was
// called instead of halting anything.
type RecordingShutdowner struct {
	Called bool
}

// Shutdown implements Shutdowner.
func (s *RecordingShutdowner) Shutdown() { s.Called = true }
