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

package loader

import (
	"testing"

	"github.com/rvtask/taskkernel/pkg/sentry/kernel"
)

func noopApp(*kernel.Hart) {}

func TestLoadResolvesInOrder(t *testing.T) {
	dir := t.TempDir()
	reg := Registry{"a": noopApp, "b": noopApp, "c": noopApp}
	manifests := []Manifest{{Name: "c"}, {Name: "a"}, {Name: "b"}}

	specs, err := Load(dir, manifests, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("len(specs) = %d, want 3", len(specs))
	}
	wantNames := []string{"c", "a", "b"}
	for i, want := range wantNames {
		if specs[i].Name != want {
			t.Fatalf("specs[%d].Name = %q, want %q", i, specs[i].Name, want)
		}
	}
}

func TestLoadUnknownAppFails(t *testing.T) {
	dir := t.TempDir()
	reg := Registry{"a": noopApp}
	_, err := Load(dir, []Manifest{{Name: "missing"}}, reg)
	if err == nil {
		t.Fatal("expected an error resolving an unregistered app name")
	}
}

func TestLoadEmptyManifestOK(t *testing.T) {
	dir := t.TempDir()
	specs, err := Load(dir, nil, Registry{})
	if err != nil {
		t.Fatalf("Load with no manifests failed: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("len(specs) = %d, want 0", len(specs))
	}
}
