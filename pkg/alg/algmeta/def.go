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
	"github.com/cockroachdb/errors"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/alg"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/rex"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/syncutil"
)

// StatID is a dense index assigned to each registered statistic, used to
// address per-session handler binding slots.
type StatID int32

// Domain classifies the numeric contract of a statistic's result.
type Domain int8

const (
	// DomainAny places no constraint on the result.
	DomainAny Domain = iota
	// DomainCount marks count-like results: non-negative, floored at 1 and
	// capped below infinity by the validator.
	DomainCount
	// DomainFraction marks probability-like results that must lie in [0, 1].
	DomainFraction
)

// CyclePolicy selects the fallback applied when computing a statistic
// re-enters itself through a cyclic plan shape.
type CyclePolicy int8

const (
	// CycleUnknown resolves a cyclic computation to "no estimate".
	CycleUnknown CyclePolicy = iota
	// CycleInfiniteCost resolves a cyclic computation to the maximal cost
	// sentinel, so the search never sees a cyclic plan as cheap.
	CycleInfiniteCost
)

// Def describes one kind of metadata statistic: its name, the numeric
// contract of its result, its cycle fallback policy, and the strategy
// installed when synthesis finds nothing registered for an operator kind.
// Defs are immutable once registered.
type Def struct {
	id          StatID
	name        string
	domain      Domain
	cycle       CyclePolicy
	warnOnCycle bool
	// unsupported is the strategy of this def's function type that always
	// answers "unknown". Synthesis installs it when no strategy is
	// registered anywhere on a kind's ancestry chain.
	unsupported interface{}
}

// ID returns the def's dense statistic index.
func (d *Def) ID() StatID { return d.id }

// Name returns the registered statistic name.
func (d *Def) Name() string { return d.name }

// Domain returns the numeric contract of the statistic's result.
func (d *Def) Domain() Domain { return d.domain }

// Cycle returns the statistic's cycle fallback policy.
func (d *Def) Cycle() CyclePolicy { return d.cycle }

func (d *Def) String() string { return d.name }

// SafeValue implements the redact.SafeValue interface.
func (d *Def) SafeValue() {}

// DefSpec describes a statistic to RegisterDef.
type DefSpec struct {
	Name   string
	Domain Domain
	Cycle  CyclePolicy
	// WarnOnCycle emits a warning log entry whenever a cyclic computation of
	// this statistic is resolved.
	WarnOnCycle bool
	// Unsupported is the "always unknown" strategy; its dynamic type defines
	// the strategy function type required for this statistic.
	Unsupported interface{}
}

var defTab = struct {
	syncutil.Mutex
	defs []*Def
}{}

// RegisterDef registers a new statistic kind and returns its descriptor.
// Statistics must be registered at startup, before any Query is created.
// Registering the same name twice is a bug and panics.
func RegisterDef(spec DefSpec) *Def {
	if spec.Unsupported == nil {
		panic(errors.AssertionFailedf("statistic %q has no unsupported strategy", spec.Name))
	}
	defTab.Lock()
	defer defTab.Unlock()
	for _, d := range defTab.defs {
		if d.name == spec.Name {
			panic(errors.AssertionFailedf("statistic %q registered twice", spec.Name))
		}
	}
	d := &Def{
		id:          StatID(len(defTab.defs)),
		name:        spec.Name,
		domain:      spec.Domain,
		cycle:       spec.Cycle,
		warnOnCycle: spec.WarnOnCycle,
		unsupported: spec.Unsupported,
	}
	defTab.defs = append(defTab.defs, d)
	return d
}

// NumDefs returns the number of registered statistics.
func NumDefs() int {
	defTab.Lock()
	defer defTab.Unlock()
	return len(defTab.defs)
}

// Strategy function types, one per statistic result shape. A strategy
// computes the answer for one node; it may recurse into the session for
// other statistics on the same or other nodes. The (value, ok) result pair
// renders the first-class "unknown" outcome: ok == false means "no reliable
// estimate", which is distinct from any computed value.
type (
	// ScalarFn computes a plain numeric statistic.
	ScalarFn func(q *Query, n alg.Node) (float64, bool)
	// CostFn computes a cost statistic.
	CostFn func(q *Query, n alg.Node) (alg.Cost, bool)
	// NodeTypesFn collects the nodes of a subtree grouped by operator kind.
	NodeTypesFn func(q *Query, n alg.Node) (map[alg.Kind][]alg.Node, bool)
	// ColumnOriginsFn computes the origin columns of one output column. An
	// empty result means "definitely no origin columns", which is distinct
	// from unknown.
	ColumnOriginsFn func(q *Query, n alg.Node, col int) ([]alg.ColumnOrigin, bool)
	// LineageFn computes the expressions an output expression originates
	// from, expressed over table columns.
	LineageFn func(q *Query, n alg.Node, expr rex.Expr) ([]rex.Expr, bool)
	// TableRefsFn computes the tables used by a subtree.
	TableRefsFn func(q *Query, n alg.Node) ([]alg.TableRef, bool)
	// SelectivityFn estimates the fraction of output rows satisfying a
	// predicate.
	SelectivityFn func(q *Query, n alg.Node, pred rex.Expr) (float64, bool)
	// UniqueKeysFn computes the column sets that are unique keys of the
	// output. An empty result means "definitely no keys".
	UniqueKeysFn func(q *Query, n alg.Node, ignoreNulls bool) ([]alg.ColSet, bool)
	// ColumnsUniqueFn decides whether a set of output columns is unique.
	ColumnsUniqueFn func(q *Query, n alg.Node, cols alg.ColSet, ignoreNulls bool) (bool, bool)
	// CollationsFn computes the sort orders the output is known to satisfy.
	CollationsFn func(q *Query, n alg.Node) ([]alg.Collation, bool)
	// DistributionFn computes the physical distribution of the output rows.
	DistributionFn func(q *Query, n alg.Node) (alg.Distribution, bool)
	// PopulationSizeFn estimates the number of distinct values of a group
	// key within the underlying population.
	PopulationSizeFn func(q *Query, n alg.Node, groupKey alg.ColSet) (float64, bool)
	// ColumnSizesFn estimates the average width of each output column.
	ColumnSizesFn func(q *Query, n alg.Node) ([]ColumnSize, bool)
	// BoolFn computes a boolean statistic.
	BoolFn func(q *Query, n alg.Node) (bool, bool)
	// IntFn computes an integer statistic.
	IntFn func(q *Query, n alg.Node) (int, bool)
	// DistinctRowCountFn estimates the number of distinct rows under a group
	// key, filtered by a predicate.
	DistinctRowCountFn func(q *Query, n alg.Node, groupKey alg.ColSet, pred rex.Expr) (float64, bool)
	// PredicatesFn computes a list of predicates attached to a node.
	PredicatesFn func(q *Query, n alg.Node) (rex.PredicateList, bool)
	// ExplainVisibilityFn decides whether a node shows up in EXPLAIN output
	// at a given level of detail.
	ExplainVisibilityFn func(q *Query, n alg.Node, level alg.ExplainLevel) (bool, bool)
)

// ColumnSize is the estimated average width of a single output column, in
// bytes. Known is false when no estimate is available for that column.
type ColumnSize struct {
	Bytes float64
	Known bool
}

// The built-in statistics. Extensions may register further statistics at
// startup via RegisterDef.
var (
	// NodeTypes groups the nodes of a subtree by operator kind.
	NodeTypes = RegisterDef(DefSpec{
		Name: "NodeTypes",
		Unsupported: NodeTypesFn(func(*Query, alg.Node) (map[alg.Kind][]alg.Node, bool) {
			return nil, false
		}),
	})

	// RowCount estimates the number of rows produced by a node. A cyclic
	// row count resolves to unknown and is logged as a recoverable anomaly.
	RowCount = RegisterDef(DefSpec{
		Name:        "RowCount",
		Domain:      DomainCount,
		WarnOnCycle: true,
		Unsupported: ScalarFn(unknownScalar),
	})

	// MaxRowCount is an upper bound on the number of rows produced.
	MaxRowCount = RegisterDef(DefSpec{
		Name:        "MaxRowCount",
		Unsupported: ScalarFn(unknownScalar),
	})

	// MinRowCount is a lower bound on the number of rows produced.
	MinRowCount = RegisterDef(DefSpec{
		Name:        "MinRowCount",
		Unsupported: ScalarFn(unknownScalar),
	})

	// CumulativeCost is the cost of a node and its entire input subtree.
	CumulativeCost = RegisterDef(DefSpec{
		Name:        "CumulativeCost",
		Cycle:       CycleInfiniteCost,
		Unsupported: CostFn(unknownCost),
	})

	// NonCumulativeCost is the cost of a node alone, excluding its inputs.
	NonCumulativeCost = RegisterDef(DefSpec{
		Name:        "NonCumulativeCost",
		Cycle:       CycleInfiniteCost,
		Unsupported: CostFn(unknownCost),
	})

	// PercentageOriginalRows estimates the fraction of the underlying table
	// rows still represented in a node's output.
	PercentageOriginalRows = RegisterDef(DefSpec{
		Name:        "PercentageOriginalRows",
		Domain:      DomainFraction,
		Unsupported: ScalarFn(unknownScalar),
	})

	// ColumnOrigins computes the origin columns of one output column.
	ColumnOrigins = RegisterDef(DefSpec{
		Name: "ColumnOrigins",
		Unsupported: ColumnOriginsFn(func(*Query, alg.Node, int) ([]alg.ColumnOrigin, bool) {
			return nil, false
		}),
	})

	// ExpressionLineage rewrites an expression in terms of table columns.
	ExpressionLineage = RegisterDef(DefSpec{
		Name: "ExpressionLineage",
		Unsupported: LineageFn(func(*Query, alg.Node, rex.Expr) ([]rex.Expr, bool) {
			return nil, false
		}),
	})

	// TableReferences computes the tables used by a subtree.
	TableReferences = RegisterDef(DefSpec{
		Name: "TableReferences",
		Unsupported: TableRefsFn(func(*Query, alg.Node) ([]alg.TableRef, bool) {
			return nil, false
		}),
	})

	// Selectivity estimates the fraction of rows satisfying a predicate.
	Selectivity = RegisterDef(DefSpec{
		Name:   "Selectivity",
		Domain: DomainFraction,
		Unsupported: SelectivityFn(func(*Query, alg.Node, rex.Expr) (float64, bool) {
			return 0, false
		}),
	})

	// UniqueKeys computes the unique keys of a node's output.
	UniqueKeys = RegisterDef(DefSpec{
		Name: "UniqueKeys",
		Unsupported: UniqueKeysFn(func(*Query, alg.Node, bool) ([]alg.ColSet, bool) {
			return nil, false
		}),
	})

	// ColumnUniqueness decides whether a set of output columns is unique.
	ColumnUniqueness = RegisterDef(DefSpec{
		Name: "ColumnUniqueness",
		Unsupported: ColumnsUniqueFn(func(*Query, alg.Node, alg.ColSet, bool) (bool, bool) {
			return false, false
		}),
	})

	// Collations computes the sort orders of a node's output.
	Collations = RegisterDef(DefSpec{
		Name: "Collations",
		Unsupported: CollationsFn(func(*Query, alg.Node) ([]alg.Collation, bool) {
			return nil, false
		}),
	})

	// Distribution computes the physical distribution of a node's output.
	Distribution = RegisterDef(DefSpec{
		Name: "Distribution",
		Unsupported: DistributionFn(func(*Query, alg.Node) (alg.Distribution, bool) {
			return alg.Distribution{}, false
		}),
	})

	// PopulationSize estimates the distinct values of a group key in the
	// underlying population.
	PopulationSize = RegisterDef(DefSpec{
		Name:   "PopulationSize",
		Domain: DomainCount,
		Unsupported: PopulationSizeFn(func(*Query, alg.Node, alg.ColSet) (float64, bool) {
			return 0, false
		}),
	})

	// AverageRowSize estimates the average output row width, in bytes.
	AverageRowSize = RegisterDef(DefSpec{
		Name:        "AverageRowSize",
		Unsupported: ScalarFn(unknownScalar),
	})

	// AverageColumnSizes estimates the average width of each output column.
	AverageColumnSizes = RegisterDef(DefSpec{
		Name: "AverageColumnSizes",
		Unsupported: ColumnSizesFn(func(*Query, alg.Node) ([]ColumnSize, bool) {
			return nil, false
		}),
	})

	// PhaseTransition reports whether a node executes in a different
	// process/phase than its inputs.
	PhaseTransition = RegisterDef(DefSpec{
		Name:        "PhaseTransition",
		Unsupported: BoolFn(func(*Query, alg.Node) (bool, bool) { return false, false }),
	})

	// SplitCount is the number of distinct splits of the data a node
	// processes in parallel.
	SplitCount = RegisterDef(DefSpec{
		Name:        "SplitCount",
		Unsupported: IntFn(func(*Query, alg.Node) (int, bool) { return 0, false }),
	})

	// Memory is the expected memory, in bytes, required by a node across
	// all splits.
	Memory = RegisterDef(DefSpec{
		Name:        "Memory",
		Unsupported: ScalarFn(unknownScalar),
	})

	// CumulativeMemoryWithinPhase is the memory required by a node and all
	// other nodes within the same execution phase, across all splits.
	CumulativeMemoryWithinPhase = RegisterDef(DefSpec{
		Name:        "CumulativeMemoryWithinPhase",
		Unsupported: ScalarFn(unknownScalar),
	})

	// CumulativeMemoryWithinPhaseSplit is the memory required by a node and
	// all other nodes within the same execution phase, within each split.
	CumulativeMemoryWithinPhaseSplit = RegisterDef(DefSpec{
		Name:        "CumulativeMemoryWithinPhaseSplit",
		Unsupported: ScalarFn(unknownScalar),
	})

	// DistinctRowCount estimates the distinct rows under a group key,
	// filtered by a predicate.
	DistinctRowCount = RegisterDef(DefSpec{
		Name:   "DistinctRowCount",
		Domain: DomainCount,
		Unsupported: DistinctRowCountFn(func(*Query, alg.Node, alg.ColSet, rex.Expr) (float64, bool) {
			return 0, false
		}),
	})

	// Predicates computes the predicates that can be pulled up above a node.
	Predicates = RegisterDef(DefSpec{
		Name: "Predicates",
		Unsupported: PredicatesFn(func(*Query, alg.Node) (rex.PredicateList, bool) {
			return rex.PredicateList{}, false
		}),
	})

	// AllPredicates computes all predicates within and below a node.
	AllPredicates = RegisterDef(DefSpec{
		Name: "AllPredicates",
		Unsupported: PredicatesFn(func(*Query, alg.Node) (rex.PredicateList, bool) {
			return rex.PredicateList{}, false
		}),
	})

	// ExplainVisibility decides whether a node shows up in EXPLAIN output.
	ExplainVisibility = RegisterDef(DefSpec{
		Name: "ExplainVisibility",
		Unsupported: ExplainVisibilityFn(func(*Query, alg.Node, alg.ExplainLevel) (bool, bool) {
			return false, false
		}),
	})
)

func unknownScalar(*Query, alg.Node) (float64, bool) { return 0, false }

func unknownCost(*Query, alg.Node) (alg.Cost, bool) { return alg.Cost{}, false }
