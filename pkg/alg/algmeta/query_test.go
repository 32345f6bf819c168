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
	"context"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/alg"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/rex"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/leaktest"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/log"
)

// Operator kinds shared by the tests in this package.
var (
	testRelKind    = alg.RegisterKind("TestRel", alg.AnyOperator)
	testScanKind   = alg.RegisterKind("TestScan", testRelKind)
	testFilterKind = alg.RegisterKind("TestFilter", testRelKind)
	testJoinKind   = alg.RegisterKind("TestJoin", testRelKind)
	testSortKind   = alg.RegisterKind("TestSort", testRelKind)
)

// testNode is a minimal operator node. Inputs are mutable so that tests can
// tie plan shapes into cycles after construction.
type testNode struct {
	kind   alg.Kind
	inputs []alg.Node
	cols   int
}

var _ alg.Node = (*testNode)(nil)

func (n *testNode) Kind() alg.Kind      { return n.kind }
func (n *testNode) Inputs() []alg.Node  { return n.inputs }
func (n *testNode) OutputColCount() int { return n.cols }

func newScan(cols int) *testNode {
	return &testNode{kind: testScanKind, cols: cols}
}

func newFilter(in alg.Node) *testNode {
	return &testNode{kind: testFilterKind, inputs: []alg.Node{in}, cols: in.OutputColCount()}
}

func newJoin(left, right alg.Node) *testNode {
	return &testNode{
		kind:   testJoinKind,
		inputs: []alg.Node{left, right},
		cols:   left.OutputColCount() + right.OutputColCount(),
	}
}

// selfDescribingNode additionally answers statistics itself, bypassing the
// registry.
type selfDescribingNode struct {
	testNode
	strategies map[StatID]interface{}
}

var _ StrategySource = (*selfDescribingNode)(nil)

func (n *selfDescribingNode) MetadataStrategy(def *Def) interface{} {
	return n.strategies[def.id]
}

func TestQueryMemoization(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	var invocations int
	r.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		invocations++
		return 100, true
	}))

	q := NewForRegistry(context.Background(), r)
	scan := newScan(2)

	rc, ok := q.RowCount(scan)
	require.True(t, ok)
	require.Equal(t, 100.0, rc)
	rc, ok = q.RowCount(scan)
	require.True(t, ok)
	require.Equal(t, 100.0, rc)

	require.Equal(t, 1, invocations)
	d := q.Diag()
	require.Equal(t, 1, d.CacheHits)
	require.Equal(t, 1, d.StrategyInvocations)

	// A second node of the same kind is a distinct cache entry but reuses
	// the session binding, so no further synthesis happens.
	_, _ = q.RowCount(newScan(2))
	require.Equal(t, 2, invocations)
	require.Equal(t, 1, q.Diag().Syntheses)
}

func TestUnknownResultsAreMemoized(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	var invocations int
	r.Register(MaxRowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		invocations++
		return 0, false
	}))

	q := NewForRegistry(context.Background(), r)
	scan := newScan(1)

	_, ok := q.MaxRowCount(scan)
	require.False(t, ok)
	_, ok = q.MaxRowCount(scan)
	require.False(t, ok)
	require.Equal(t, 1, invocations)
	require.Equal(t, 1, q.Diag().CacheHits)
}

func TestRowCountValidation(t *testing.T) {
	defer leaktest.AfterTest(t)()

	testCases := []struct {
		raw      float64
		expected float64
	}{
		{raw: 42, expected: 42},
		{raw: 0.3, expected: 1.0},
		{raw: 0, expected: 1.0},
		{raw: math.Inf(1), expected: math.MaxFloat64},
	}
	for _, tc := range testCases {
		r := NewDefaultRegistry()
		raw := tc.raw
		r.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
			return raw, true
		}))
		q := NewForRegistry(context.Background(), r)
		rc, ok := q.RowCount(newScan(1))
		require.True(t, ok)
		require.Equal(t, tc.expected, rc, "raw count %v", tc.raw)
	}

	// A negative count is a contract violation in the strategy.
	r := NewDefaultRegistry()
	r.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		return -1, true
	}))
	q := NewForRegistry(context.Background(), r)
	require.Panics(t, func() { q.RowCount(newScan(1)) })
}

func TestSelectivityValidation(t *testing.T) {
	defer leaktest.AfterTest(t)()

	for _, bad := range []float64{-0.1, 1.5} {
		r := NewDefaultRegistry()
		bad := bad
		r.Register(Selectivity, testScanKind,
			SelectivityFn(func(*Query, alg.Node, rex.Expr) (float64, bool) {
				return bad, true
			}))
		q := NewForRegistry(context.Background(), r)

		err := CatchMetadataError(func() {
			q.Selectivity(newScan(1), nil)
		})
		require.Error(t, err)
		require.True(t, errors.HasAssertionFailure(err), "%+v", err)
	}

	// In-range values pass through unclamped.
	r := NewDefaultRegistry()
	r.Register(PercentageOriginalRows, testScanKind,
		ScalarFn(func(*Query, alg.Node) (float64, bool) {
			return 0.25, true
		}))
	q := NewForRegistry(context.Background(), r)
	p, ok := q.PercentageOriginalRows(newScan(1))
	require.True(t, ok)
	require.Equal(t, 0.25, p)
}

func TestCostCycleFallsBackToInfinite(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(NonCumulativeCost, testRelKind, CostFn(func(*Query, alg.Node) (alg.Cost, bool) {
		return alg.MakeCost(1, 1, 1), true
	}))
	q := NewForRegistry(context.Background(), r)

	// Mutually recursive plan shape, as optimizer search can transiently
	// produce.
	n1 := &testNode{kind: testFilterKind, cols: 1}
	n2 := &testNode{kind: testFilterKind, cols: 1}
	n1.inputs = []alg.Node{n2}
	n2.inputs = []alg.Node{n1}

	cost, ok := q.CumulativeCost(n1)
	require.True(t, ok)
	require.True(t, cost.IsInfinite())
	require.Equal(t, 1, q.CycleFallbackCount(CumulativeCost))

	// The infinite result poisons the whole cycle, so any plan containing
	// it loses to any finite alternative.
	cost2, ok := q.CumulativeCost(n2)
	require.True(t, ok)
	require.True(t, cost2.IsInfinite())
}

func TestRowCountCycleIsUnknownAndLogged(t *testing.T) {
	defer leaktest.AfterTest(t)()

	var warnings []string
	restore := log.TestingSetIntercept(func(e log.Entry) {
		if e.Severity == log.SeverityWarning {
			warnings = append(warnings, string(e.Message))
		}
	})
	defer restore()

	r := NewDefaultRegistry()
	r.Register(RowCount, testFilterKind, ScalarFn(func(q *Query, n alg.Node) (float64, bool) {
		return q.RowCount(n.Inputs()[0])
	}))
	q := NewForRegistry(context.Background(), r)

	n := &testNode{kind: testFilterKind, cols: 1}
	n.inputs = []alg.Node{n}

	_, ok := q.RowCount(n)
	require.False(t, ok)
	require.Equal(t, 1, q.CycleFallbackCount(RowCount))
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "cyclic metadata")
	require.Contains(t, warnings[0], "RowCount")
}

func TestCycleFallbackIsNotCached(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	var invocations int
	r.Register(RowCount, testFilterKind, ScalarFn(func(q *Query, n alg.Node) (float64, bool) {
		invocations++
		if rc, ok := q.RowCount(n.Inputs()[0]); ok {
			return rc, true
		}
		return 0, false
	}))
	q := NewForRegistry(context.Background(), r)

	n := &testNode{kind: testFilterKind, cols: 1}
	n.inputs = []alg.Node{n}

	// The first call resolves the inner re-entrant lookup with the unknown
	// fallback; only the outer result lands in the cache.
	_, ok := q.RowCount(n)
	require.False(t, ok)
	require.Equal(t, 1, invocations)
	require.Equal(t, 1, q.CycleFallbackCount(RowCount))

	// Breaking the cycle does not help this session: the outer unknown was
	// memoized. A fresh session sees the repaired shape.
	n.inputs = []alg.Node{newScan(1)}
	_, ok = q.RowCount(n)
	require.False(t, ok)
	require.Equal(t, 1, invocations)

	r2 := NewDefaultRegistry()
	r2.Register(RowCount, testFilterKind, ScalarFn(func(q *Query, n alg.Node) (float64, bool) {
		return q.RowCount(n.Inputs()[0])
	}))
	r2.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		return 10, true
	}))
	q2 := NewForRegistry(context.Background(), r2)
	rc, ok := q2.RowCount(n)
	require.True(t, ok)
	require.Equal(t, 10.0, rc)
}

func TestColumnOrigins(t *testing.T) {
	defer leaktest.AfterTest(t)()

	tbl := alg.TableRef{ID: 7, Instance: 0}
	origins := map[int][]alg.ColumnOrigin{
		0: {{Table: tbl, Ordinal: 3}},
		1: {{Table: tbl, Ordinal: 4, Derived: true}},
		2: {{Table: tbl, Ordinal: 3}, {Table: tbl, Ordinal: 4}},
		3: {},
	}
	r := NewDefaultRegistry()
	r.Register(ColumnOrigins, testScanKind,
		ColumnOriginsFn(func(_ *Query, _ alg.Node, col int) ([]alg.ColumnOrigin, bool) {
			res, ok := origins[col]
			return res, ok
		}))
	q := NewForRegistry(context.Background(), r)
	scan := newScan(5)

	// Column 0: exactly one non-derived origin.
	o, ok := q.ColumnOrigin(scan, 0)
	require.True(t, ok)
	require.Equal(t, alg.ColumnOrigin{Table: tbl, Ordinal: 3}, o)

	// Column 1: a derived origin does not qualify as "the" origin.
	_, ok = q.ColumnOrigin(scan, 1)
	require.False(t, ok)

	// Column 2: more than one origin.
	_, ok = q.ColumnOrigin(scan, 2)
	require.False(t, ok)

	// Column 3: definitely no origins. The list is empty but known, which
	// is distinct from column 4, where nothing is known at all.
	list, ok := q.ColumnOrigins(scan, 3)
	require.True(t, ok)
	require.Empty(t, list)
	_, ok = q.ColumnOrigins(scan, 4)
	require.False(t, ok)

	// TableOrigin follows column 0.
	ref, ok := q.TableOrigin(scan)
	require.True(t, ok)
	require.Equal(t, tbl, ref)

	// A node with no output columns has no table origin.
	_, ok = q.TableOrigin(newScan(0))
	require.False(t, ok)
}

func TestSessionIsolation(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	// The strategy returns a different value on every invocation, so a stale
	// shared cache would be visible in the results.
	var invocations int
	r.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		invocations++
		return float64(invocations * 5), true
	}))

	scan := newScan(1)
	q1 := NewForRegistry(context.Background(), r)
	q2 := NewForRegistry(context.Background(), r)

	// Sessions share the registry but not the memo cache: each computes its
	// own answer once and sticks to it.
	rc, _ := q1.RowCount(scan)
	require.Equal(t, 5.0, rc)
	rc, _ = q2.RowCount(scan)
	require.Equal(t, 10.0, rc)
	rc, _ = q1.RowCount(scan)
	require.Equal(t, 5.0, rc)
	require.Equal(t, 2, invocations)

	// The registry synthesized the binding once; the second session bound
	// the already-revised snapshot.
	require.Equal(t, int64(1), r.SynthesisCount())
	require.Equal(t, 1, q1.Diag().Syntheses)
	require.Equal(t, 1, q2.Diag().Syntheses)
}

func TestStructuralCacheKeys(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	var invocations int
	r.Register(Selectivity, testScanKind,
		SelectivityFn(func(_ *Query, _ alg.Node, pred rex.Expr) (float64, bool) {
			invocations++
			return 0.5, true
		}))
	q := NewForRegistry(context.Background(), r)
	scan := newScan(1)

	// Two separately constructed, structurally identical predicates hit the
	// same cache entry.
	p1 := rex.Comparison{Op: rex.EqOp, Left: rex.InputRef{Index: 0, Typ: rex.IntType},
		Right: rex.Literal{Typ: rex.IntType, Value: 5}}
	p2 := rex.Comparison{Op: rex.EqOp, Left: rex.InputRef{Index: 0, Typ: rex.IntType},
		Right: rex.Literal{Typ: rex.IntType, Value: 5}}
	_, _ = q.Selectivity(scan, p1)
	_, _ = q.Selectivity(scan, p2)
	require.Equal(t, 1, invocations)
	require.Equal(t, 1, q.Diag().CacheHits)

	// A structurally different predicate is a distinct entry.
	p3 := rex.Comparison{Op: rex.EqOp, Left: rex.InputRef{Index: 0, Typ: rex.IntType},
		Right: rex.Literal{Typ: rex.IntType, Value: 6}}
	_, _ = q.Selectivity(scan, p3)
	require.Equal(t, 2, invocations)
}

func TestColumnSetCacheKeys(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	var invocations int
	r.Register(PopulationSize, testScanKind,
		PopulationSizeFn(func(_ *Query, _ alg.Node, key alg.ColSet) (float64, bool) {
			invocations++
			return float64(100 * key.Len()), true
		}))
	q := NewForRegistry(context.Background(), r)
	scan := newScan(3)

	key := alg.MakeColSet(0, 2)
	same := alg.MakeColSet(2, 0)
	other := alg.MakeColSet(1)

	ps, ok := q.PopulationSize(scan, key)
	require.True(t, ok)
	require.Equal(t, 200.0, ps)
	_, _ = q.PopulationSize(scan, same)
	require.Equal(t, 1, invocations)
	_, _ = q.PopulationSize(scan, other)
	require.Equal(t, 2, invocations)
}

func TestStrategySource(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	q := NewForRegistry(context.Background(), r)

	n := &selfDescribingNode{
		testNode: testNode{kind: testScanKind, cols: 1},
		strategies: map[StatID]interface{}{
			RowCount.ID(): ScalarFn(func(*Query, alg.Node) (float64, bool) {
				return 1234, true
			}),
		},
	}

	rc, ok := q.RowCount(n)
	require.True(t, ok)
	require.Equal(t, 1234.0, rc)
	// The node answered directly; no registry synthesis happened.
	require.Equal(t, 0, q.Diag().Syntheses)

	// For statistics the node does not describe, dispatch falls back to the
	// registry as usual.
	visible := q.VisibleInExplain(n, alg.ExplainPlan)
	require.True(t, visible)
	require.Equal(t, 1, q.Diag().Syntheses)
}

func TestMistypedStrategy(t *testing.T) {
	defer leaktest.AfterTest(t)()

	// A strategy of the wrong function type is a registration bug; it is
	// caught at registration under invariants builds and at invocation
	// otherwise, as an assertion failure either way.
	err := CatchMetadataError(func() {
		r := NewDefaultRegistry()
		r.Register(RowCount, testScanKind, CostFn(func(*Query, alg.Node) (alg.Cost, bool) {
			return alg.ZeroCost, true
		}))
		q := NewForRegistry(context.Background(), r)
		q.RowCount(newScan(1))
	})
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err), "%+v", err)
}

func TestAncestorDispatch(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(RowCount, testRelKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		return 1, true
	}))
	r.Register(RowCount, testScanKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		return 2, true
	}))
	q := NewForRegistry(context.Background(), r)

	// The scan kind has its own strategy; the filter kind inherits the one
	// registered on the common ancestor.
	rc, ok := q.RowCount(newScan(1))
	require.True(t, ok)
	require.Equal(t, 2.0, rc)
	rc, ok = q.RowCount(newFilter(newScan(1)))
	require.True(t, ok)
	require.Equal(t, 1.0, rc)

	// A kind with nothing registered anywhere on its chain answers unknown
	// through the synthesized fallback, rather than failing.
	_, ok = q.MinRowCount(newScan(1))
	require.False(t, ok)
}

func TestDefaultNodeTypes(t *testing.T) {
	defer leaktest.AfterTest(t)()

	scanA, scanB := newScan(2), newScan(2)
	join := newJoin(newFilter(scanA), scanB)
	q := New(context.Background())

	types, ok := q.NodeTypes(join)
	require.True(t, ok)
	require.Len(t, types, 3)
	require.Len(t, types[testScanKind], 2)
	require.Len(t, types[testFilterKind], 1)
	require.Equal(t, []alg.Node{join}, types[testJoinKind])

	// The cached result for the subtree is not aliased into the parent's
	// result.
	sub, ok := q.NodeTypes(scanA)
	require.True(t, ok)
	require.Len(t, sub[testScanKind], 1)
}

func TestDefaultCumulativeCost(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(NonCumulativeCost, testRelKind, CostFn(func(_ *Query, n alg.Node) (alg.Cost, bool) {
		return alg.MakeCost(10, 1, 2), true
	}))
	q := NewForRegistry(context.Background(), r)

	tree := newJoin(newScan(1), newFilter(newScan(1)))
	cost, ok := q.CumulativeCost(tree)
	require.True(t, ok)
	require.Equal(t, alg.MakeCost(40, 4, 8), cost)

	// Unknown propagates: a subtree with an uncosted node has no cumulative
	// cost.
	r2 := NewDefaultRegistry()
	r2.Register(NonCumulativeCost, testScanKind, CostFn(func(*Query, alg.Node) (alg.Cost, bool) {
		return alg.MakeCost(10, 1, 2), true
	}))
	q2 := NewForRegistry(context.Background(), r2)
	_, ok = q2.CumulativeCost(newFilter(newScan(1)))
	require.False(t, ok)
}

func TestDefaultSelectivity(t *testing.T) {
	defer leaktest.AfterTest(t)()

	col := rex.InputRef{Index: 0, Typ: rex.IntType}
	five := rex.Literal{Typ: rex.IntType, Value: 5}
	eq := rex.Comparison{Op: rex.EqOp, Left: col, Right: five}
	lt := rex.Comparison{Op: rex.LtOp, Left: col, Right: five}

	// Computed with float64 variables so the expected values go through the
	// same floating point operations as the estimator.
	eqSel, cmpSel := 0.15, 0.5
	testCases := []struct {
		pred     rex.Expr
		expected float64
	}{
		{pred: nil, expected: 1.0},
		{pred: rex.True, expected: 1.0},
		{pred: rex.False, expected: 0.0},
		{pred: eq, expected: eqSel},
		{pred: lt, expected: cmpSel},
		{pred: rex.And{Left: eq, Right: lt}, expected: eqSel * cmpSel},
		{pred: rex.Or{Left: eq, Right: lt}, expected: eqSel + cmpSel - eqSel*cmpSel},
		{pred: rex.Not{Input: eq}, expected: 1.0 - eqSel},
		{pred: col, expected: 0.25},
	}

	q := New(context.Background())
	scan := newScan(1)
	for _, tc := range testCases {
		s, ok := q.Selectivity(scan, tc.pred)
		require.True(t, ok, "%v", tc.pred)
		require.Equal(t, tc.expected, s, "%v", tc.pred)
	}
}

func TestDefaultAverageRowSize(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(AverageColumnSizes, testScanKind,
		ColumnSizesFn(func(*Query, alg.Node) ([]ColumnSize, bool) {
			return []ColumnSize{
				{Bytes: 8, Known: true},
				{},
				{Bytes: 16, Known: true},
			}, true
		}))
	q := NewForRegistry(context.Background(), r)

	// The unknown middle column contributes the default width.
	sz, ok := q.AverageRowSize(newScan(3))
	require.True(t, ok)
	require.Equal(t, 28.0, sz)

	// With no column size information at all, the row size is unknown, but
	// the not-null variant still yields a list of the output arity.
	filter := newFilter(newScan(3))
	_, ok = q.AverageRowSize(filter)
	require.False(t, ok)
	sizes := q.AverageColumnSizesNotNull(filter)
	require.Len(t, sizes, 3)
	for _, s := range sizes {
		require.False(t, s.Known)
	}
}

func TestDefaultMemoryWithinPhase(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(Memory, testRelKind, ScalarFn(func(*Query, alg.Node) (float64, bool) {
		return 100, true
	}))
	r.Register(PhaseTransition, testRelKind, BoolFn(func(_ *Query, n alg.Node) (bool, bool) {
		return n.Kind() == testSortKind, true
	}))
	r.Register(SplitCount, testRelKind, IntFn(func(*Query, alg.Node) (int, bool) {
		return 4, true
	}))
	q := NewForRegistry(context.Background(), r)

	// sort is a phase transition: the filter above it starts a new phase,
	// so the sort's subtree contributes nothing to the filter's phase.
	scan := newScan(1)
	sort := &testNode{kind: testSortKind, inputs: []alg.Node{scan}, cols: 1}
	filter := newFilter(sort)

	mem, ok := q.CumulativeMemoryWithinPhase(filter)
	require.True(t, ok)
	require.Equal(t, 100.0, mem)

	mem, ok = q.CumulativeMemoryWithinPhase(sort)
	require.True(t, ok)
	require.Equal(t, 200.0, mem)

	perSplit, ok := q.CumulativeMemoryWithinPhaseSplit(sort)
	require.True(t, ok)
	require.Equal(t, 50.0, perSplit)
}

func TestDefaultTableReferences(t *testing.T) {
	defer leaktest.AfterTest(t)()

	refA := alg.TableRef{ID: 1, Instance: 0}
	refB := alg.TableRef{ID: 2, Instance: 0}
	r := NewDefaultRegistry()
	r.Register(TableReferences, testScanKind,
		TableRefsFn(func(_ *Query, n alg.Node) ([]alg.TableRef, bool) {
			if n.OutputColCount() == 1 {
				return []alg.TableRef{refA}, true
			}
			return []alg.TableRef{refB}, true
		}))
	q := NewForRegistry(context.Background(), r)

	// Duplicates across inputs collapse; first-occurrence order wins.
	tree := newJoin(newJoin(newScan(1), newScan(2)), newScan(1))
	refs, ok := q.TableReferences(tree)
	require.True(t, ok)
	require.Equal(t, []alg.TableRef{refA, refB}, refs)

	// A leaf kind without its own strategy has no answer.
	_, ok = q.TableReferences(&testNode{kind: testFilterKind, cols: 1})
	require.False(t, ok)
}

func TestUniqueness(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	// Column 0 is the key: any set containing it is unique.
	r.Register(ColumnUniqueness, testScanKind,
		ColumnsUniqueFn(func(_ *Query, _ alg.Node, cols alg.ColSet, _ bool) (bool, bool) {
			return cols.Contains(0), true
		}))
	r.Register(UniqueKeys, testScanKind,
		UniqueKeysFn(func(*Query, alg.Node, bool) ([]alg.ColSet, bool) {
			return []alg.ColSet{alg.MakeColSet(0)}, true
		}))
	q := NewForRegistry(context.Background(), r)
	scan := newScan(3)

	unique, ok := q.ColumnsUnique(scan, alg.MakeColSet(0, 2), false)
	require.True(t, ok)
	require.True(t, unique)
	unique, ok = q.ColumnsUnique(scan, alg.MakeColSet(1, 2), false)
	require.True(t, ok)
	require.False(t, unique)

	// All output columns include the key column.
	unique, ok = q.RowsUnique(scan)
	require.True(t, ok)
	require.True(t, unique)

	keys, ok := q.UniqueKeys(scan)
	require.True(t, ok)
	require.Equal(t, []alg.ColSet{alg.MakeColSet(0)}, keys)
}

func TestPredicates(t *testing.T) {
	defer leaktest.AfterTest(t)()

	q := New(context.Background())
	scan := newScan(1)

	// The default answer is the empty list: no predicates known to hold,
	// which is sound for any operator.
	preds, ok := q.PulledUpPredicates(scan)
	require.True(t, ok)
	require.True(t, preds.Empty())

	// AllPredicates has no sound default; it stays unknown.
	_, ok = q.AllPredicates(scan)
	require.False(t, ok)
}

func TestVisibleInExplain(t *testing.T) {
	defer leaktest.AfterTest(t)()

	q := New(context.Background())
	require.True(t, q.VisibleInExplain(newScan(1), alg.ExplainPlan))

	// An operator kind can hide itself below a detail threshold.
	r := NewDefaultRegistry()
	r.Register(ExplainVisibility, testFilterKind,
		ExplainVisibilityFn(func(_ *Query, _ alg.Node, level alg.ExplainLevel) (bool, bool) {
			return level == alg.ExplainAll, true
		}))
	q2 := NewForRegistry(context.Background(), r)
	filter := newFilter(newScan(1))
	require.False(t, q2.VisibleInExplain(filter, alg.ExplainPlan))
	require.True(t, q2.VisibleInExplain(filter, alg.ExplainAll))
}

func TestPhysicalProperties(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	r.Register(Collations, testSortKind,
		CollationsFn(func(*Query, alg.Node) ([]alg.Collation, bool) {
			return []alg.Collation{alg.MakeCollation(
				alg.MakeOrderingColumn(0, false),
				alg.MakeOrderingColumn(1, true),
			)}, true
		}))
	r.Register(Distribution, testScanKind,
		DistributionFn(func(*Query, alg.Node) (alg.Distribution, bool) {
			return alg.HashDistributed(alg.ColList{0}), true
		}))
	q := NewForRegistry(context.Background(), r)

	sort := &testNode{kind: testSortKind, inputs: []alg.Node{newScan(2)}, cols: 2}
	collations, ok := q.Collations(sort)
	require.True(t, ok)
	require.Len(t, collations, 1)
	require.Equal(t, "[+0,-1]", collations[0].String())

	dist, ok := q.Distribution(newScan(2))
	require.True(t, ok)
	require.Equal(t, "hash(0)", dist.String())

	// Neither property has an operator-independent derivation.
	_, ok = q.Collations(newScan(2))
	require.False(t, ok)
	_, ok = q.Distribution(sort)
	require.False(t, ok)
}

func TestExpressionLineage(t *testing.T) {
	defer leaktest.AfterTest(t)()

	r := NewDefaultRegistry()
	// The filter passes columns through untouched, so lineage delegates to
	// the input with the same expression.
	r.Register(ExpressionLineage, testFilterKind,
		LineageFn(func(q *Query, n alg.Node, expr rex.Expr) ([]rex.Expr, bool) {
			return q.ExpressionLineage(n.Inputs()[0], expr)
		}))
	r.Register(ExpressionLineage, testScanKind,
		LineageFn(func(_ *Query, _ alg.Node, expr rex.Expr) ([]rex.Expr, bool) {
			if ref, ok := expr.(rex.InputRef); ok {
				return []rex.Expr{ref}, true
			}
			return nil, false
		}))
	q := NewForRegistry(context.Background(), r)

	filter := newFilter(newScan(2))
	ref := rex.InputRef{Index: 1, Typ: rex.IntType}
	exprs, ok := q.ExpressionLineage(filter, ref)
	require.True(t, ok)
	require.Equal(t, []rex.Expr{ref}, exprs)

	_, ok = q.ExpressionLineage(filter, rex.Not{Input: ref})
	require.False(t, ok)
}

func TestSessionTagInWarnings(t *testing.T) {
	defer leaktest.AfterTest(t)()

	var tags []string
	restore := log.TestingSetIntercept(func(e log.Entry) {
		tags = append(tags, e.Tags)
	})
	defer restore()

	r := NewDefaultRegistry()
	r.Register(RowCount, testFilterKind, ScalarFn(func(q *Query, n alg.Node) (float64, bool) {
		return q.RowCount(n.Inputs()[0])
	}))
	q := NewForRegistry(context.Background(), r)
	n := &testNode{kind: testFilterKind, cols: 1}
	n.inputs = []alg.Node{n}
	_, _ = q.RowCount(n)

	require.Len(t, tags, 1)
	require.True(t, strings.HasPrefix(tags[0], "algmeta="), "tags: %q", tags[0])
}
