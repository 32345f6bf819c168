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

package alg

import (
	"fmt"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/intsets"
)

// ColumnID identifies an output column of a node by its 0-based ordinal.
type ColumnID int32

// ColList is an ordered list of column ordinals.
type ColList = []ColumnID

// ColSet efficiently stores an unordered set of column ordinals.
type ColSet struct {
	set intsets.Fast
}

// MakeColSet returns a set initialized with the given values.
func MakeColSet(vals ...ColumnID) ColSet {
	var res ColSet
	for _, v := range vals {
		res.Add(v)
	}
	return res
}

// Add adds a column to the set. No-op if the column is already in the set.
func (s *ColSet) Add(col ColumnID) { s.set.Add(int(col)) }

// Remove removes a column from the set. No-op if the column is not in the set.
func (s *ColSet) Remove(col ColumnID) { s.set.Remove(int(col)) }

// Contains returns true if the set contains the column.
func (s ColSet) Contains(col ColumnID) bool { return s.set.Contains(int(col)) }

// Empty returns true if the set is empty.
func (s ColSet) Empty() bool { return s.set.Empty() }

// Len returns the number of the columns in the set.
func (s ColSet) Len() int { return s.set.Len() }

// Next returns the first column in the set with an ordinal >= startVal. If
// there is no such column, the second return value is false.
func (s ColSet) Next(startVal ColumnID) (ColumnID, bool) {
	c, ok := s.set.Next(int(startVal))
	return ColumnID(c), ok
}

// ForEach calls a function for each column in the set, in increasing ordinal
// order.
func (s ColSet) ForEach(f func(col ColumnID)) { s.set.ForEach(func(i int) { f(ColumnID(i)) }) }

// Copy returns a copy of s which can be modified independently.
func (s ColSet) Copy() ColSet { return ColSet{set: s.set.Copy()} }

// UnionWith adds all the columns from rhs to this set.
func (s *ColSet) UnionWith(rhs ColSet) { s.set.UnionWith(rhs.set) }

// Union returns the union of s and rhs as a new set.
func (s ColSet) Union(rhs ColSet) ColSet { return ColSet{set: s.set.Union(rhs.set)} }

// IntersectionWith removes any columns not in rhs from this set.
func (s *ColSet) IntersectionWith(rhs ColSet) { s.set.IntersectionWith(rhs.set) }

// Intersection returns the intersection of s and rhs as a new set.
func (s ColSet) Intersection(rhs ColSet) ColSet { return ColSet{set: s.set.Intersection(rhs.set)} }

// Difference returns the columns of s that are not in rhs as a new set.
func (s ColSet) Difference(rhs ColSet) ColSet { return ColSet{set: s.set.Difference(rhs.set)} }

// Intersects returns true if s has any columns in common with rhs.
func (s ColSet) Intersects(rhs ColSet) bool { return s.set.Intersects(rhs.set) }

// SubsetOf returns true if rhs contains all the columns in s.
func (s ColSet) SubsetOf(rhs ColSet) bool { return s.set.SubsetOf(rhs.set) }

// Equals returns true if the two sets are identical.
func (s ColSet) Equals(rhs ColSet) bool { return s.set.Equals(rhs.set) }

func (s ColSet) String() string { return s.set.String() }

// ColListToSet converts a column list to a column set.
func ColListToSet(colList ColList) ColSet {
	var res ColSet
	for _, col := range colList {
		res.Add(col)
	}
	return res
}

// ColSetToList converts a column set to a column list, in increasing ordinal
// order.
func ColSetToList(s ColSet) ColList {
	res := make(ColList, 0, s.Len())
	s.ForEach(func(col ColumnID) {
		res = append(res, col)
	})
	return res
}

// TableID identifies a table in the catalog.
type TableID int64

// TableRef identifies one usage of a table within a plan. The same catalog
// table scanned twice appears as two TableRefs with distinct Instance
// numbers.
type TableRef struct {
	ID       TableID
	Instance int
}

func (t TableRef) String() string {
	return fmt.Sprintf("table(%d)#%d", t.ID, t.Instance)
}

// ColumnOrigin describes where an output column of a node ultimately comes
// from: an ordinal of a base table usage. Derived is true if the column value
// passes through an expression on the way (so the origin contributes to, but
// does not equal, the output).
type ColumnOrigin struct {
	Table   TableRef
	Ordinal int
	Derived bool
}

func (o ColumnOrigin) String() string {
	suffix := ""
	if o.Derived {
		suffix = " (derived)"
	}
	return fmt.Sprintf("%s.%d%s", o.Table, o.Ordinal, suffix)
}
