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

func TestEventLogRecordAndLen(t *testing.T) {
	l := NewEventLog()
	if l.Len() != 0 {
		t.Fatalf("Len() on empty log = %d, want 0", l.Len())
	}
	l.Record(Event{TimeUS: 10, Task: 0, Kind: "switch"})
	l.Record(Event{TimeUS: 20, Task: 1, Kind: "switch"})
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}

func TestEventLogRangeOrdered(t *testing.T) {
	l := NewEventLog()
	l.Record(Event{TimeUS: 30, Task: 2, Kind: "c"})
	l.Record(Event{TimeUS: 10, Task: 0, Kind: "a"})
	l.Record(Event{TimeUS: 20, Task: 1, Kind: "b"})

	got := l.Range(0, 1000)
	if len(got) != 3 {
		t.Fatalf("Range returned %d events, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].TimeUS > got[i].TimeUS {
			t.Fatalf("Range not in time order: %v before %v", got[i-1], got[i])
		}
	}
	if got[0].Kind != "a" || got[1].Kind != "b" || got[2].Kind != "c" {
		t.Fatalf("Range order = %q,%q,%q, want a,b,c", got[0].Kind, got[1].Kind, got[2].Kind)
	}
}

func TestEventLogRangeExcludesOutside(t *testing.T) {
	l := NewEventLog()
	l.Record(Event{TimeUS: 5})
	l.Record(Event{TimeUS: 50})
	l.Record(Event{TimeUS: 500})

	got := l.Range(10, 100)
	if len(got) != 1 || got[0].TimeUS != 50 {
		t.Fatalf("Range(10,100) = %v, want only the TimeUS=50 event", got)
	}
}

func TestEventLogSameTimestampOrderedBySequence(t *testing.T) {
	l := NewEventLog()
	l.Record(Event{TimeUS: 100, Kind: "first"})
	l.Record(Event{TimeUS: 100, Kind: "second"})
	l.Record(Event{TimeUS: 100, Kind: "third"})

	got := l.Range(100, 100)
	if len(got) != 3 {
		t.Fatalf("Range returned %d events, want 3", len(got))
	}
	if got[0].Kind != "first" || got[1].Kind != "second" || got[2].Kind != "third" {
		t.Fatalf("same-timestamp events out of insertion order: %v", got)
	}
}
