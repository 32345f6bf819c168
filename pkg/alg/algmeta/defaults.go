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
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/alg"
	"github.com/avinashkrsingh01/Polypheny-DB/pkg/rex"
)

// Default selectivity guesses for predicates over which nothing better is
// known, and the default column width assumed when a column has no size
// estimate.
const (
	defaultEqSelectivity      = 0.15
	defaultCmpSelectivity     = 0.5
	defaultUnknownSelectivity = 0.25
	defaultColumnWidth        = 4.0
)

// RegisterDefaultStrategies installs, on the root operator kind, the
// strategies that have a sensible operator-independent derivation: the ones
// expressible purely in terms of a node's inputs and other statistics.
// Statistics with no such derivation keep their "always unknown" fallback.
func RegisterDefaultStrategies(r *Registry) {
	r.Register(NodeTypes, alg.AnyOperator, NodeTypesFn(defaultNodeTypes))
	r.Register(CumulativeCost, alg.AnyOperator, CostFn(defaultCumulativeCost))
	r.Register(CumulativeMemoryWithinPhase, alg.AnyOperator,
		ScalarFn(defaultCumulativeMemoryWithinPhase))
	r.Register(CumulativeMemoryWithinPhaseSplit, alg.AnyOperator,
		ScalarFn(defaultCumulativeMemoryWithinPhaseSplit))
	r.Register(TableReferences, alg.AnyOperator, TableRefsFn(defaultTableReferences))
	r.Register(Predicates, alg.AnyOperator, PredicatesFn(defaultPulledUpPredicates))
	r.Register(Selectivity, alg.AnyOperator, SelectivityFn(defaultSelectivity))
	r.Register(AverageRowSize, alg.AnyOperator, ScalarFn(defaultAverageRowSize))
	r.Register(ExplainVisibility, alg.AnyOperator,
		ExplainVisibilityFn(defaultExplainVisibility))
}

// defaultNodeTypes groups the subtree rooted at n by operator kind by
// recursing into the inputs. Input results come out of the session cache,
// so the slices they hold must be copied, never appended to in place.
func defaultNodeTypes(q *Query, n alg.Node) (map[alg.Kind][]alg.Node, bool) {
	res := map[alg.Kind][]alg.Node{n.Kind(): {n}}
	for _, in := range n.Inputs() {
		sub, ok := q.NodeTypes(in)
		if !ok {
			return nil, false
		}
		for kind, nodes := range sub {
			res[kind] = append(res[kind], nodes...)
		}
	}
	return res, true
}

// defaultCumulativeCost is the node's own cost plus the cumulative cost of
// each input. Unknown propagates: a subtree with any uncosted node has no
// cumulative cost.
func defaultCumulativeCost(q *Query, n alg.Node) (alg.Cost, bool) {
	cost, ok := q.NonCumulativeCost(n)
	if !ok {
		return alg.Cost{}, false
	}
	for _, in := range n.Inputs() {
		sub, ok := q.CumulativeCost(in)
		if !ok {
			return alg.Cost{}, false
		}
		cost = cost.Add(sub)
	}
	return cost, true
}

// defaultCumulativeMemoryWithinPhase is the node's own memory plus the
// within-phase memory of each input that executes in the same phase. An
// input behind a phase transition contributes nothing.
func defaultCumulativeMemoryWithinPhase(q *Query, n alg.Node) (float64, bool) {
	mem, ok := q.Memory(n)
	if !ok {
		return 0, false
	}
	for _, in := range n.Inputs() {
		transition, ok := q.IsPhaseTransition(in)
		if !ok {
			return 0, false
		}
		if transition {
			continue
		}
		sub, ok := q.CumulativeMemoryWithinPhase(in)
		if !ok {
			return 0, false
		}
		mem += sub
	}
	return mem, true
}

// defaultCumulativeMemoryWithinPhaseSplit divides the phase's memory evenly
// across the node's splits.
func defaultCumulativeMemoryWithinPhaseSplit(q *Query, n alg.Node) (float64, bool) {
	mem, ok := q.CumulativeMemoryWithinPhase(n)
	if !ok {
		return 0, false
	}
	splits, ok := q.SplitCount(n)
	if !ok || splits <= 0 {
		return 0, false
	}
	return mem / float64(splits), true
}

// defaultTableReferences unions the tables referenced by the inputs,
// deduplicated, preserving first-occurrence order. A leaf has no
// operator-independent answer: a scan references its table, but only a
// scan-specific strategy knows which one.
func defaultTableReferences(q *Query, n alg.Node) ([]alg.TableRef, bool) {
	inputs := n.Inputs()
	if len(inputs) == 0 {
		return nil, false
	}
	var res []alg.TableRef
	seen := make(map[alg.TableRef]struct{})
	for _, in := range inputs {
		refs, ok := q.TableReferences(in)
		if !ok {
			return nil, false
		}
		for _, ref := range refs {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			res = append(res, ref)
		}
	}
	if res == nil {
		res = []alg.TableRef{}
	}
	return res, true
}

// defaultPulledUpPredicates answers that no predicates are known to hold,
// which is always sound.
func defaultPulledUpPredicates(*Query, alg.Node) (rex.PredicateList, bool) {
	return rex.EmptyPredicateList, true
}

// defaultExplainVisibility shows every node: operators are visible in
// EXPLAIN output unless a specific strategy hides them.
func defaultExplainVisibility(*Query, alg.Node, alg.ExplainLevel) (bool, bool) {
	return true, true
}

// defaultSelectivity estimates the fraction of rows satisfying pred from
// the shape of the predicate alone, with the textbook guesses for each
// form. A nil predicate selects everything.
func defaultSelectivity(_ *Query, _ alg.Node, pred rex.Expr) (float64, bool) {
	return guessSelectivity(pred), true
}

func guessSelectivity(pred rex.Expr) float64 {
	switch e := pred.(type) {
	case nil:
		return 1.0
	case rex.Literal:
		if b, ok := e.Value.(bool); ok {
			if b {
				return 1.0
			}
			return 0.0
		}
		return defaultUnknownSelectivity
	case rex.Comparison:
		if e.Op == rex.EqOp {
			return defaultEqSelectivity
		}
		return defaultCmpSelectivity
	case rex.And:
		return guessSelectivity(e.Left) * guessSelectivity(e.Right)
	case rex.Or:
		l, r := guessSelectivity(e.Left), guessSelectivity(e.Right)
		return l + r - l*r
	case rex.Not:
		return 1.0 - guessSelectivity(e.Input)
	default:
		return defaultUnknownSelectivity
	}
}

// defaultAverageRowSize sums the per-column size estimates, substituting
// defaultColumnWidth for columns with no estimate of their own. Only a
// wholly unknown column size list makes the row size unknown.
func defaultAverageRowSize(q *Query, n alg.Node) (float64, bool) {
	sizes, ok := q.AverageColumnSizes(n)
	if !ok {
		return 0, false
	}
	var total float64
	for _, sz := range sizes {
		if sz.Known {
			total += sz.Bytes
		} else {
			total += defaultColumnWidth
		}
	}
	return total, true
}
