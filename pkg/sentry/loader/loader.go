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

// Package loader is the application loader: the out-of-core collaborator
// spec.md §1 describes as "copies pre-linked app images into fixed
// slots". In this hosted simulator, applications are statically linked
// into the kernel binary itself (Go closures registered under a name)
// rather than ELF images copied from a link_app.S blob, so loading
// reduces to resolving an ordered manifest of app names against a
// registry and producing the kernel.AppSpec slice the scheduler consumes
// for slots 0..num_app.
package loader

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gofrs/flock"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/rvtask/taskkernel/pkg/sentry/kernel"
)

// Manifest describes one application slot before it is resolved to a
// compiled-in entry point: a name naming a Registry entry, plus an
// OCI-process-shaped description (args/env), mirroring the process
// manifest the real loader would otherwise derive from the app image's
// ELF headers. Load does not pass Process on: the resulting AppSpec
// carries only the name and entry point.
type Manifest struct {
	Name    string
	Process specs.Process
}

// Registry maps an application name to its compiled-in entry point.
type Registry map[string]kernel.AppFunc

// Load resolves manifests against registry, in order, producing the
// kernel.AppSpec table slot 0..len(manifests)-1 expects. It holds an
// advisory lock on imageDir for the duration of the resolve, so two
// kernel processes never race to "copy" the same image set concurrently,
// and retries a missing-registry-entry error a few times with backoff
// before giving up, the hosted analogue of a transient image-copy I/O
// error.
func Load(imageDir string, manifests []Manifest, registry Registry) ([]kernel.AppSpec, error) {
	lockPath := filepath.Join(imageDir, ".taskkernel-loader.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("loader: locking %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("loader: %s is held by another kernel instance", lockPath)
	}
	defer lock.Unlock()

	specsOut := make([]kernel.AppSpec, 0, len(manifests))
	for _, m := range manifests {
		fn, err := resolveWithBackoff(registry, m.Name)
		if err != nil {
			return nil, fmt.Errorf("loader: resolving app %q: %w", m.Name, err)
		}
		specsOut = append(specsOut, kernel.AppSpec{Name: m.Name, Func: fn})
	}
	return specsOut, nil
}

func resolveWithBackoff(registry Registry, name string) (kernel.AppFunc, error) {
	var fn kernel.AppFunc
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 200 * time.Millisecond
	err := backoff.Retry(func() error {
		f, ok := registry[name]
		if !ok {
			return fmt.Errorf("%q is not registered", name)
		}
		fn = f
		return nil
	}, b)
	return fn, err
}
