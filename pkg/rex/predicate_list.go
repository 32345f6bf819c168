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

package rex

import "strings"

// PredicateList is a list of predicates known to hold on the output rows of
// an operator. The empty list means "no predicates known", which is distinct
// from "predicates unknown" (the latter is expressed by the caller).
type PredicateList struct {
	Predicates []Expr
}

// EmptyPredicateList is the predicate list with no predicates.
var EmptyPredicateList = PredicateList{}

// MakePredicateList returns a list holding the given predicates.
func MakePredicateList(preds ...Expr) PredicateList {
	return PredicateList{Predicates: preds}
}

// Empty returns true if the list holds no predicates.
func (pl PredicateList) Empty() bool {
	return len(pl.Predicates) == 0
}

// Union returns a list holding the predicates of both lists, with duplicates
// removed. Order of first occurrence is preserved.
func (pl PredicateList) Union(other PredicateList) PredicateList {
	if other.Empty() {
		return pl
	}
	if pl.Empty() {
		return other
	}
	seen := make(map[Expr]struct{}, len(pl.Predicates)+len(other.Predicates))
	res := make([]Expr, 0, len(pl.Predicates)+len(other.Predicates))
	for _, lists := range [][]Expr{pl.Predicates, other.Predicates} {
		for _, p := range lists {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			res = append(res, p)
		}
	}
	return PredicateList{Predicates: res}
}

func (pl PredicateList) String() string {
	if pl.Empty() {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range pl.Predicates {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
