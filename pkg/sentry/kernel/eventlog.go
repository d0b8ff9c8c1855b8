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

import (
	"sync"

	"github.com/google/btree"
)

// Event is one entry in the kernel's trap/switch timeline: a context
// switch, a trap dispatch, or a lifecycle transition, each timestamped so
// preemption cadence and switch overhead can be inspected after a run
// without attaching a debugger.
type Event struct {
	TimeUS uint64
	Seq    uint64 // tiebreaker: insertion order within the same microsecond
	Task   int
	Kind   string
	Detail string
}

func eventLess(a, b Event) bool {
	if a.TimeUS != b.TimeUS {
		return a.TimeUS < b.TimeUS
	}
	return a.Seq < b.Seq
}

// EventLog is a time-indexed log of kernel events backed by a B-tree, so
// a range of the timeline (e.g. "everything in the last tick") can be
// pulled out without scanning the whole history.
type EventLog struct {
	mu   sync.Mutex
	tree *btree.BTreeG[Event]
	seq  uint64
}

// NewEventLog returns an empty EventLog.
func NewEventLog() *EventLog {
	return &EventLog{tree: btree.NewG(32, eventLess)}
}

// Record appends ev to the log, stamping it with the next sequence number.
func (l *EventLog) Record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev.Seq = l.seq
	l.seq++
	l.tree.ReplaceOrInsert(ev)
}

// Range returns every event with TimeUS in [fromUS, toUS], in time order.
func (l *EventLog) Range(fromUS, toUS uint64) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	l.tree.AscendRange(
		Event{TimeUS: fromUS, Seq: 0},
		Event{TimeUS: toUS, Seq: ^uint64(0)},
		func(ev Event) bool {
			out = append(out, ev)
			return true
		},
	)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Len()
}
