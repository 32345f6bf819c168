// Copyright 2019-2025 The Polypheny Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package algmeta

import (
	"reflect"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/alg"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/buildutil"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/syncutil"
)

type regKey struct {
	stat StatID
	kind alg.Kind
}

// resolution reports how a strategy was found for a (kind, statistic) pair.
// Lookup misses are an expected, routine condition; they are expressed in
// this result rather than through error signaling.
type resolution int8

const (
	// strategyFound: a strategy is registered for the exact kind.
	strategyFound resolution = iota
	// strategyDelegated: the strategy is inherited from the nearest
	// registered ancestor kind.
	strategyDelegated
	// strategyDefaulted: nothing is registered anywhere on the ancestry
	// chain; the def's unsupported strategy answers "unknown".
	strategyDefaulted
)

// Registry associates (operator kind, statistic) pairs with computation
// strategies. It is shared across sessions: registration and synthesis are
// safe for concurrent use, and published snapshots are immutable so sessions
// read them lock-free.
type Registry struct {
	mu struct {
		syncutil.Mutex
		// strategies holds registrations in order; the last entry for a key
		// takes precedence, so extensions override built-ins without
		// modifying them.
		strategies map[regKey][]interface{}
		// snapshots are the published per-statistic binding tables, one
		// entry per concrete kind seen so far. A snapshot map is never
		// mutated after publication; revise replaces it wholesale.
		snapshots map[StatID]map[alg.Kind]interface{}
	}
	syntheses atomic.Int64
}

// NewRegistry returns an empty registry. Most callers want DefaultRegistry
// or NewDefaultRegistry instead.
func NewRegistry() *Registry {
	r := &Registry{}
	r.mu.strategies = make(map[regKey][]interface{})
	r.mu.snapshots = make(map[StatID]map[alg.Kind]interface{})
	return r
}

// DefaultRegistry is the process-wide registry pre-loaded with the built-in
// operator-agnostic strategies.
var DefaultRegistry = NewDefaultRegistry()

// NewDefaultRegistry returns a fresh registry pre-loaded with the built-in
// strategies, for callers that want to layer and tear down registrations
// independently of the process-wide DefaultRegistry.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaultStrategies(r)
	return r
}

// Register binds fn as the strategy computing the given statistic for the
// given operator kind and all its descendants that have no nearer
// registration. Later registrations for the same kind take precedence.
//
// The dynamic type of fn must be the def's strategy function type; a
// mismatch panics at dispatch time (and under the invariants build, here).
func (r *Registry) Register(def *Def, kind alg.Kind, fn interface{}) {
	if fn == nil {
		panic(errors.AssertionFailedf("nil strategy registered for %s on %s", def, kind))
	}
	if buildutil.Invariants {
		if want, got := reflect.TypeOf(def.unsupported), reflect.TypeOf(fn); want != got {
			panic(errors.AssertionFailedf(
				"strategy for %s on %s has type %s, expected %s", def, kind, got, want))
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := regKey{stat: def.id, kind: kind}
	r.mu.strategies[k] = append(r.mu.strategies[k], fn)
	// Invalidate the published snapshot so the next revise re-resolves.
	// Sessions created afterwards observe the new registration; live
	// sessions keep their bindings, which is acceptable because sessions
	// last one planning attempt.
	delete(r.mu.snapshots, def.id)
}

// resolveLocked finds the best available strategy for a concrete kind: an
// exact registration wins, otherwise the nearest registered ancestor
// (most-derived match), otherwise the def's unsupported strategy.
func (r *Registry) resolveLocked(def *Def, kind alg.Kind) (interface{}, resolution) {
	for k := kind; ; k = k.Parent() {
		if fns := r.mu.strategies[regKey{stat: def.id, kind: k}]; len(fns) > 0 {
			fn := fns[len(fns)-1]
			if k == kind {
				return fn, strategyFound
			}
			return fn, strategyDelegated
		}
		if k == alg.AnyOperator {
			break
		}
	}
	return def.unsupported, strategyDefaulted
}

// revise synthesizes a binding for a concrete kind: it resolves the best
// available strategy, installs it keyed by the exact kind, and publishes a
// new immutable snapshot so repeat lookups for that kind are direct.
// Idempotent: if the kind is already covered by the current snapshot, the
// snapshot is returned unchanged. Racing revisions for the same kind
// converge to equivalent snapshots.
func (r *Registry) revise(def *Def, kind alg.Kind) map[alg.Kind]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.mu.snapshots[def.id]
	if _, ok := snap[kind]; ok {
		return snap
	}
	fn, _ := r.resolveLocked(def, kind)
	next := make(map[alg.Kind]interface{}, len(snap)+1)
	for k, v := range snap {
		next[k] = v
	}
	next[kind] = fn
	r.mu.snapshots[def.id] = next
	r.syntheses.Add(1)
	return next
}

// SynthesisCount returns the number of synthesis events performed so far,
// totaled over all statistics and kinds.
func (r *Registry) SynthesisCount() int64 {
	return r.syntheses.Load()
}
