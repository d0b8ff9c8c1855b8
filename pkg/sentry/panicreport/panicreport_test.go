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

package panicreport

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestGuardCatchesPanic(t *testing.T) {
	caught := Guard(2, "task2", testLogger(), func() {
		panic("boom")
	})
	if !caught {
		t.Fatal("Guard did not report a panic as caught")
	}
}

func TestGuardNoPanic(t *testing.T) {
	ran := false
	caught := Guard(0, "task0", testLogger(), func() {
		ran = true
	})
	if caught {
		t.Fatal("Guard reported a panic that never happened")
	}
	if !ran {
		t.Fatal("Guard did not run fn")
	}
}

func TestReportDeepCopiesValue(t *testing.T) {
	type payload struct{ N int }
	original := &payload{N: 1}
	snap := Report(0, "t", original)

	original.N = 2 // mutate after the snapshot was taken

	copied, ok := snap.Value.(*payload)
	if !ok {
		t.Fatalf("Value type = %T, want *payload", snap.Value)
	}
	if copied.N != 1 {
		t.Fatalf("snapshot value mutated after Report: got N=%d, want 1", copied.N)
	}
}
