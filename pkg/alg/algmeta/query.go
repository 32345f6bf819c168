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

// Package algmeta answers typed metadata questions about algebra operator
// nodes: estimated row count, cost, selectivity, column origins, physical
// distribution and so on. It is a strongly-typed facade over an open,
// extensible set of per-operator-kind computation strategies.
//
// A Query is one session of metadata computation, created per planning
// attempt. It memoizes results, lazily binds strategies for operator kinds
// as they are first seen (synthesizing bindings from ancestor kinds or
// defaults), and detects re-entrant computations over cyclic plan shapes,
// resolving them with a statistic-specific fallback instead of recursing
// forever.
package algmeta

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/google/uuid"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/alg"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/rex"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/log"
)

// StrategySource is an optional capability of operator nodes. A node that
// implements it is asked for a strategy before the registry is consulted,
// so a node can answer a statistic directly. Returning nil delegates to the
// registry as usual.
type StrategySource interface {
	// MetadataStrategy returns a strategy of the def's function type, or
	// nil to delegate to the registry.
	MetadataStrategy(def *Def) interface{}
}

// cacheKey identifies one memoized result: the node (by reference
// identity), the statistic, and the statistic's extra arguments. Extra
// arguments must be comparable values; column sets are keyed by their
// canonical string rendering, expressions by their structural identity.
type cacheKey struct {
	node alg.Node
	stat StatID
	arg1 interface{}
	arg2 interface{}
}

type memoEntry struct {
	val interface{}
	ok  bool
}

// Diag holds per-session diagnostic counters.
type Diag struct {
	// CacheHits counts accessor calls answered from the memo cache.
	CacheHits int
	// StrategyInvocations counts invocations of bound strategies.
	StrategyInvocations int
	// Syntheses counts times this session had to ask the registry to revise
	// a binding.
	Syntheses int
	// CycleFallbacks counts cyclic computations resolved with a fallback.
	CycleFallbacks int
}

// Query is one metadata computation session, used by a single planning
// attempt. It is not safe for concurrent use: each concurrent planning
// activity must create its own Query. The memo cache and the cycle-guard
// stack are only valid for one logically-single-threaded traversal, and
// cached results are specific to the plan tree version in scope.
type Query struct {
	ctx      context.Context
	registry *Registry
	// bindings holds the per-statistic strategy snapshots currently bound
	// by this session, indexed by StatID. A nil entry is the initial stub:
	// the first call for that statistic always takes the synthesis path.
	bindings []map[alg.Kind]interface{}
	memo     map[cacheKey]memoEntry
	// active is the set of (node, statistic, args) computations currently
	// on the logical call stack, used to detect re-entrancy.
	active map[cacheKey]struct{}

	diag        Diag
	cycleByStat map[StatID]int
	warnEvery   log.EveryN
}

// New returns a metadata query session over DefaultRegistry.
func New(ctx context.Context) *Query {
	return NewForRegistry(ctx, DefaultRegistry)
}

// NewForRegistry returns a metadata query session over the given registry.
func NewForRegistry(ctx context.Context, registry *Registry) *Query {
	ctx = logtags.AddTag(ctx, "algmeta", uuid.New().String()[:8])
	return &Query{
		ctx:         ctx,
		registry:    registry,
		bindings:    make([]map[alg.Kind]interface{}, NumDefs()),
		memo:        make(map[cacheKey]memoEntry),
		active:      make(map[cacheKey]struct{}),
		cycleByStat: make(map[StatID]int),
		warnEvery:   log.Every(10 * time.Second),
	}
}

// Diag returns a snapshot of the session's diagnostic counters.
func (q *Query) Diag() Diag {
	return q.diag
}

// CycleFallbackCount returns how many cyclic computations of the given
// statistic this session has resolved.
func (q *Query) CycleFallbackCount(def *Def) int {
	return q.cycleByStat[def.id]
}

// bind returns the strategy to invoke for the given statistic on the given
// node. It consults the node's own capability first, then the session's
// binding snapshot; on a miss it asks the registry to revise the binding
// for the node's kind and rebinds. bind never returns nil: synthesis always
// installs at least the def's unsupported strategy.
func (q *Query) bind(def *Def, n alg.Node) interface{} {
	if src, ok := n.(StrategySource); ok {
		if fn := src.MetadataStrategy(def); fn != nil {
			return fn
		}
	}
	kind := n.Kind()
	if int(def.id) >= len(q.bindings) {
		// A statistic registered after this session was created.
		grown := make([]map[alg.Kind]interface{}, NumDefs())
		copy(grown, q.bindings)
		q.bindings = grown
	}
	if snap := q.bindings[def.id]; snap != nil {
		if fn, ok := snap[kind]; ok {
			return fn
		}
	}
	snap := q.registry.revise(def, kind)
	q.bindings[def.id] = snap
	q.diag.Syntheses++
	fn, ok := snap[kind]
	if !ok {
		panic(errors.AssertionFailedf("revise installed no strategy for %s on %s", def, kind))
	}
	return fn
}

func (q *Query) noteCycle(def *Def, n alg.Node) {
	q.diag.CycleFallbacks++
	q.cycleByStat[def.id]++
	if def.warnOnCycle && q.warnEvery.ShouldLog() {
		log.Warningf(q.ctx, "cyclic metadata detected while computing %s for %v node", def, n.Kind())
	}
}

type outcome int8

const (
	outcomeOK outcome = iota
	outcomeUnknown
	outcomeCycle
)

// runStat executes the common accessor protocol around one strategy
// invocation: memo lookup, cycle-guard check, bind (with synthesis on
// miss), invoke, memoize. The call closure type-asserts the bound strategy
// to the def's function type F, invokes it and applies the def's result
// validation; its (value, ok) result is memoized on both the known and the
// unknown outcome. Cycle fallbacks are never memoized.
func runStat[F, R any](
	q *Query, def *Def, n alg.Node, a1, a2 interface{}, call func(fn F) (R, bool),
) (R, outcome) {
	var zero R
	key := cacheKey{node: n, stat: def.id, arg1: a1, arg2: a2}
	if e, ok := q.memo[key]; ok {
		q.diag.CacheHits++
		if !e.ok {
			return zero, outcomeUnknown
		}
		return e.val.(R), outcomeOK
	}
	if _, ok := q.active[key]; ok {
		q.noteCycle(def, n)
		return zero, outcomeCycle
	}
	fn := q.bind(def, n)
	typed, ok := fn.(F)
	if !ok {
		var want F
		panic(errors.AssertionFailedf(
			"strategy for %s on %s has type %T, expected %T", def, n.Kind(), fn, want))
	}
	q.active[key] = struct{}{}
	defer delete(q.active, key)
	q.diag.StrategyInvocations++
	res, known := call(typed)
	if !known {
		q.memo[key] = memoEntry{ok: false}
		return zero, outcomeUnknown
	}
	q.memo[key] = memoEntry{val: res, ok: true}
	return res, outcomeOK
}

// colSetKey renders a column set as a comparable memo-key component.
func colSetKey(cols alg.ColSet) string {
	return cols.String()
}

// NodeTypes returns the nodes of the subtree rooted at n, grouped by
// operator kind. The second return value is false if no reliable answer
// can be determined.
func (q *Query) NodeTypes(n alg.Node) (map[alg.Kind][]alg.Node, bool) {
	res, out := runStat(q, NodeTypes, n, nil, nil,
		func(fn NodeTypesFn) (map[alg.Kind][]alg.Node, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// RowCount returns the estimated number of rows produced by n, or false if
// no reliable estimate can be determined. The estimate is normalized to the
// count domain: at least 1, and finite.
func (q *Query) RowCount(n alg.Node) (float64, bool) {
	res, out := runStat(q, RowCount, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			c, ok := fn(q, n)
			if !ok {
				return 0, false
			}
			return validateCount(c), true
		})
	return res, out == outcomeOK
}

// MaxRowCount returns an upper bound on the number of rows produced by n.
func (q *Query) MaxRowCount(n alg.Node) (float64, bool) {
	res, out := runStat(q, MaxRowCount, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// MinRowCount returns a lower bound on the number of rows produced by n.
func (q *Query) MinRowCount(n alg.Node) (float64, bool) {
	res, out := runStat(q, MinRowCount, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// CumulativeCost returns the estimated cost of executing n and its entire
// input subtree. A cyclic cost computation resolves to the infinite cost
// sentinel, so the search never prefers a degenerate recursive plan.
func (q *Query) CumulativeCost(n alg.Node) (alg.Cost, bool) {
	res, out := runStat(q, CumulativeCost, n, nil, nil,
		func(fn CostFn) (alg.Cost, bool) {
			return fn(q, n)
		})
	switch out {
	case outcomeOK:
		return res, true
	case outcomeCycle:
		return alg.InfiniteCost(), true
	}
	return alg.Cost{}, false
}

// NonCumulativeCost returns the estimated cost of executing n alone,
// excluding its inputs. Cyclic computations resolve like CumulativeCost.
func (q *Query) NonCumulativeCost(n alg.Node) (alg.Cost, bool) {
	res, out := runStat(q, NonCumulativeCost, n, nil, nil,
		func(fn CostFn) (alg.Cost, bool) {
			return fn(q, n)
		})
	switch out {
	case outcomeOK:
		return res, true
	case outcomeCycle:
		return alg.InfiniteCost(), true
	}
	return alg.Cost{}, false
}

// PercentageOriginalRows returns the estimated fraction, in [0, 1], of the
// underlying table rows still represented in the output of n.
func (q *Query) PercentageOriginalRows(n alg.Node) (float64, bool) {
	res, out := runStat(q, PercentageOriginalRows, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			p, ok := fn(q, n)
			if !ok {
				return 0, false
			}
			return validateFraction(p), true
		})
	return res, out == outcomeOK
}

// ColumnOrigins returns the origin columns of output column col of n. An
// empty result means the column definitely has no origin columns, which is
// distinct from the second return value being false ("cannot be
// determined").
func (q *Query) ColumnOrigins(n alg.Node, col int) ([]alg.ColumnOrigin, bool) {
	res, out := runStat(q, ColumnOrigins, n, col, nil,
		func(fn ColumnOriginsFn) ([]alg.ColumnOrigin, bool) {
			return fn(q, n, col)
		})
	return res, out == outcomeOK
}

// ColumnOrigin returns the origin of output column col, provided the column
// maps to exactly one column that is not derived; otherwise false.
func (q *Query) ColumnOrigin(n alg.Node, col int) (alg.ColumnOrigin, bool) {
	origins, ok := q.ColumnOrigins(n, col)
	if !ok || len(origins) != 1 || origins[0].Derived {
		return alg.ColumnOrigin{}, false
	}
	return origins[0], true
}

// ExpressionLineage returns the expressions, over table columns, that the
// given expression on the output of n originates from.
func (q *Query) ExpressionLineage(n alg.Node, expr rex.Expr) ([]rex.Expr, bool) {
	res, out := runStat(q, ExpressionLineage, n, expr, nil,
		func(fn LineageFn) ([]rex.Expr, bool) {
			return fn(q, n, expr)
		})
	return res, out == outcomeOK
}

// TableReferences returns the tables used by the subtree rooted at n.
func (q *Query) TableReferences(n alg.Node) ([]alg.TableRef, bool) {
	res, out := runStat(q, TableReferences, n, nil, nil,
		func(fn TableRefsFn) ([]alg.TableRef, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// TableOrigin returns the table that n trivially originates from: the owner
// of the single non-derived origin of column 0. It returns false for nodes
// that produce no columns or combine several tables.
func (q *Query) TableOrigin(n alg.Node) (alg.TableRef, bool) {
	if n.OutputColCount() == 0 {
		return alg.TableRef{}, false
	}
	origin, ok := q.ColumnOrigin(n, 0)
	if !ok {
		return alg.TableRef{}, false
	}
	return origin.Table, true
}

// Selectivity returns the estimated fraction, in [0, 1], of the output rows
// of n that satisfy the given predicate. A nil predicate selects all rows.
func (q *Query) Selectivity(n alg.Node, pred rex.Expr) (float64, bool) {
	res, out := runStat(q, Selectivity, n, pred, nil,
		func(fn SelectivityFn) (float64, bool) {
			s, ok := fn(q, n, pred)
			if !ok {
				return 0, false
			}
			return validateFraction(s), true
		})
	return res, out == outcomeOK
}

// UniqueKeys returns the column sets that are unique keys of the output of
// n. An empty result means the output definitely has no keys, which is
// distinct from the second return value being false.
func (q *Query) UniqueKeys(n alg.Node) ([]alg.ColSet, bool) {
	return q.uniqueKeys(n, false /* ignoreNulls */)
}

// UniqueKeysIgnoringNulls is like UniqueKeys, but null values are ignored
// when determining whether the keys are unique.
func (q *Query) UniqueKeysIgnoringNulls(n alg.Node) ([]alg.ColSet, bool) {
	return q.uniqueKeys(n, true /* ignoreNulls */)
}

func (q *Query) uniqueKeys(n alg.Node, ignoreNulls bool) ([]alg.ColSet, bool) {
	res, out := runStat(q, UniqueKeys, n, ignoreNulls, nil,
		func(fn UniqueKeysFn) ([]alg.ColSet, bool) {
			return fn(q, n, ignoreNulls)
		})
	return res, out == outcomeOK
}

// ColumnsUnique returns whether the given set of output columns of n is
// unique, or false in the second value if not enough information is
// available to decide.
func (q *Query) ColumnsUnique(n alg.Node, cols alg.ColSet, ignoreNulls bool) (bool, bool) {
	res, out := runStat(q, ColumnUniqueness, n, colSetKey(cols), ignoreNulls,
		func(fn ColumnsUniqueFn) (bool, bool) {
			return fn(q, n, cols, ignoreNulls)
		})
	return res, out == outcomeOK
}

// RowsUnique returns whether the rows produced by n are distinct. This is
// column uniqueness applied over all output columns taken as one key; it
// adds no cycle-guard entry of its own.
func (q *Query) RowsUnique(n alg.Node) (bool, bool) {
	var cols alg.ColSet
	for i := 0; i < n.OutputColCount(); i++ {
		cols.Add(alg.ColumnID(i))
	}
	return q.ColumnsUnique(n, cols, false /* ignoreNulls */)
}

// Collations returns the sort orders the output of n is known to satisfy.
func (q *Query) Collations(n alg.Node) ([]alg.Collation, bool) {
	res, out := runStat(q, Collations, n, nil, nil,
		func(fn CollationsFn) ([]alg.Collation, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// Distribution returns the physical distribution of the output rows of n.
func (q *Query) Distribution(n alg.Node) (alg.Distribution, bool) {
	res, out := runStat(q, Distribution, n, nil, nil,
		func(fn DistributionFn) (alg.Distribution, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// PopulationSize returns the estimated number of distinct values of the
// given group key within the underlying population of n, normalized to the
// count domain.
func (q *Query) PopulationSize(n alg.Node, groupKey alg.ColSet) (float64, bool) {
	res, out := runStat(q, PopulationSize, n, colSetKey(groupKey), nil,
		func(fn PopulationSizeFn) (float64, bool) {
			c, ok := fn(q, n, groupKey)
			if !ok {
				return 0, false
			}
			return validateCount(c), true
		})
	return res, out == outcomeOK
}

// AverageRowSize returns the estimated average width of an output row of n,
// in bytes.
func (q *Query) AverageRowSize(n alg.Node) (float64, bool) {
	res, out := runStat(q, AverageRowSize, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// AverageColumnSizes returns the estimated average width of each output
// column of n. Individual columns may be unknown even when the list is
// known.
func (q *Query) AverageColumnSizes(n alg.Node) ([]ColumnSize, bool) {
	res, out := runStat(q, AverageColumnSizes, n, nil, nil,
		func(fn ColumnSizesFn) ([]ColumnSize, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// AverageColumnSizesNotNull is like AverageColumnSizes, but instead of
// reporting the whole list as unknown it returns a list of per-column
// unknowns of the node's output arity.
func (q *Query) AverageColumnSizesNotNull(n alg.Node) []ColumnSize {
	sizes, ok := q.AverageColumnSizes(n)
	if !ok {
		return make([]ColumnSize, n.OutputColCount())
	}
	return sizes
}

// IsPhaseTransition returns whether n executes in a different process than
// its inputs, or false in the second value if not known.
func (q *Query) IsPhaseTransition(n alg.Node) (bool, bool) {
	res, out := runStat(q, PhaseTransition, n, nil, nil,
		func(fn BoolFn) (bool, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// SplitCount returns the number of distinct splits of the data that n
// processes in parallel.
func (q *Query) SplitCount(n alg.Node) (int, bool) {
	res, out := runStat(q, SplitCount, n, nil, nil,
		func(fn IntFn) (int, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// Memory returns the expected amount of memory, in bytes, required by n
// across all splits.
func (q *Query) Memory(n alg.Node) (float64, bool) {
	res, out := runStat(q, Memory, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// CumulativeMemoryWithinPhase returns the memory, in bytes, required by n
// and all other operators within the same execution phase, across all
// splits.
func (q *Query) CumulativeMemoryWithinPhase(n alg.Node) (float64, bool) {
	res, out := runStat(q, CumulativeMemoryWithinPhase, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// CumulativeMemoryWithinPhaseSplit returns the memory, in bytes, required
// by n and all other operators within the same execution phase, within each
// split.
func (q *Query) CumulativeMemoryWithinPhaseSplit(n alg.Node) (float64, bool) {
	res, out := runStat(q, CumulativeMemoryWithinPhaseSplit, n, nil, nil,
		func(fn ScalarFn) (float64, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// DistinctRowCount returns the estimated number of distinct rows of n under
// the given group key, filtered by the given predicate, normalized to the
// count domain.
func (q *Query) DistinctRowCount(
	n alg.Node, groupKey alg.ColSet, pred rex.Expr,
) (float64, bool) {
	res, out := runStat(q, DistinctRowCount, n, colSetKey(groupKey), pred,
		func(fn DistinctRowCountFn) (float64, bool) {
			c, ok := fn(q, n, groupKey, pred)
			if !ok {
				return 0, false
			}
			return validateCount(c), true
		})
	return res, out == outcomeOK
}

// PulledUpPredicates returns the predicates that can be pulled up above n.
func (q *Query) PulledUpPredicates(n alg.Node) (rex.PredicateList, bool) {
	res, out := runStat(q, Predicates, n, nil, nil,
		func(fn PredicatesFn) (rex.PredicateList, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// AllPredicates returns all predicates within and below n.
func (q *Query) AllPredicates(n alg.Node) (rex.PredicateList, bool) {
	res, out := runStat(q, AllPredicates, n, nil, nil,
		func(fn PredicatesFn) (rex.PredicateList, bool) {
			return fn(q, n)
		})
	return res, out == outcomeOK
}

// VisibleInExplain returns whether n shows up in EXPLAIN output at the
// given level of detail. Nodes are visible unless declared otherwise.
func (q *Query) VisibleInExplain(n alg.Node, level alg.ExplainLevel) bool {
	res, out := runStat(q, ExplainVisibility, n, level, nil,
		func(fn ExplainVisibilityFn) (bool, bool) {
			return fn(q, n, level)
		})
	if out == outcomeOK {
		return res
	}
	return true
}
