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

// Package alg defines the contract between algebra operator nodes and the
// metadata query engine: the Node interface, the open operator kind
// hierarchy, and the value types that statistic answers are expressed in
// (column sets, origins, costs, collations, distributions).
package alg

import "fmt"

// Node is one operator of a query plan. Concrete node types are defined
// outside this module; the metadata engine only relies on this surface.
//
// Node identity is Go reference identity: within one planning session no two
// distinct logical operators may alias the same Node value. Plans form DAGs,
// and optimizer search can introduce cycles; consumers must not assume the
// input graph is a tree.
type Node interface {
	// Kind reports the operator kind of this node, used for strategy
	// dispatch.
	Kind() Kind

	// Inputs returns the input nodes, ordered. The arity is fixed per node
	// instance. The caller must not modify the returned slice.
	Inputs() []Node

	// OutputColCount returns the number of columns in the node's output row.
	OutputColCount() int
}

// ExplainLevel is the level of detail of an EXPLAIN rendering.
type ExplainLevel int8

const (
	// ExplainNone elides all attributes.
	ExplainNone ExplainLevel = iota
	// ExplainPlan includes the attributes relevant to the plan shape.
	ExplainPlan
	// ExplainAll includes all attributes.
	ExplainAll
	// ExplainDigest includes the attributes that participate in the plan
	// digest.
	ExplainDigest
)

func (l ExplainLevel) String() string {
	switch l {
	case ExplainNone:
		return "none"
	case ExplainPlan:
		return "plan"
	case ExplainAll:
		return "all"
	case ExplainDigest:
		return "digest"
	}
	return fmt.Sprintf("level(%d)", l)
}
