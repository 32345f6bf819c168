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

// Package intsets provides a set data structure optimized for sets of small
// non-negative integers, such as column ordinals and unique key masks.
package intsets

import (
	"bytes"
	"fmt"
	"math/bits"
	"sort"
)

// smallCutoff is the size of the fast bitmap. Values in [0, smallCutoff) are
// stored inline; everything else spills to a map.
const smallCutoff = 64

// Fast keeps track of a set of integers. It is optimized for the common case
// of values smaller than smallCutoff, which are stored in a single word with
// no allocation. The zero value is an empty set.
type Fast struct {
	small uint64
	// large holds values outside [0, smallCutoff); nil until needed.
	large map[int]struct{}
}

// MakeFast returns a set initialized with the given values.
func MakeFast(vals ...int) Fast {
	var s Fast
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func isSmall(i int) bool {
	return i >= 0 && i < smallCutoff
}

// Add adds a value to the set. No-op if the value is already in the set.
func (s *Fast) Add(i int) {
	if isSmall(i) {
		s.small |= 1 << uint64(i)
		return
	}
	if s.large == nil {
		s.large = make(map[int]struct{})
	}
	s.large[i] = struct{}{}
}

// Remove removes a value from the set. No-op if the value is not in the set.
func (s *Fast) Remove(i int) {
	if isSmall(i) {
		s.small &^= 1 << uint64(i)
		return
	}
	delete(s.large, i)
}

// Contains returns true if the set contains the value.
func (s Fast) Contains(i int) bool {
	if isSmall(i) {
		return s.small&(1<<uint64(i)) != 0
	}
	_, ok := s.large[i]
	return ok
}

// Empty returns true if the set is empty.
func (s Fast) Empty() bool {
	return s.small == 0 && len(s.large) == 0
}

// Len returns the number of the elements in the set.
func (s Fast) Len() int {
	return bits.OnesCount64(s.small) + len(s.large)
}

// Next returns the first value in the set which is >= startVal. If there is no
// such value, the second return value is false.
func (s Fast) Next(startVal int) (int, bool) {
	if startVal < smallCutoff {
		if startVal < 0 {
			startVal = 0
		}
		if rest := s.small >> uint64(startVal); rest != 0 {
			return startVal + bits.TrailingZeros64(rest), true
		}
	}
	res := -1
	for v := range s.large {
		if v >= startVal && (res == -1 || v < res) {
			res = v
		}
	}
	if res == -1 {
		return -1, false
	}
	return res, true
}

// ForEach calls a function for each value in the set, in increasing order.
func (s Fast) ForEach(f func(i int)) {
	for _, v := range s.Ordered() {
		f(v)
	}
}

// Ordered returns a slice with all the integers in the set, in increasing
// order.
func (s Fast) Ordered() []int {
	if s.Empty() {
		return nil
	}
	result := make([]int, 0, s.Len())
	for rest := s.small; rest != 0; {
		v := bits.TrailingZeros64(rest)
		result = append(result, v)
		rest &^= 1 << uint64(v)
	}
	for v := range s.large {
		result = append(result, v)
	}
	sort.Ints(result)
	return result
}

// Copy returns a copy of s which can be modified independently.
func (s Fast) Copy() Fast {
	c := Fast{small: s.small}
	if len(s.large) > 0 {
		c.large = make(map[int]struct{}, len(s.large))
		for v := range s.large {
			c.large[v] = struct{}{}
		}
	}
	return c
}

// UnionWith adds all the elements from rhs to this set.
func (s *Fast) UnionWith(rhs Fast) {
	s.small |= rhs.small
	for v := range rhs.large {
		s.Add(v)
	}
}

// Union returns the union of s and rhs as a new set.
func (s Fast) Union(rhs Fast) Fast {
	r := s.Copy()
	r.UnionWith(rhs)
	return r
}

// IntersectionWith removes any elements not in rhs from this set.
func (s *Fast) IntersectionWith(rhs Fast) {
	s.small &= rhs.small
	for v := range s.large {
		if !rhs.Contains(v) {
			delete(s.large, v)
		}
	}
}

// Intersection returns the intersection of s and rhs as a new set.
func (s Fast) Intersection(rhs Fast) Fast {
	r := s.Copy()
	r.IntersectionWith(rhs)
	return r
}

// Intersects returns true if s has any elements in common with rhs.
func (s Fast) Intersects(rhs Fast) bool {
	if s.small&rhs.small != 0 {
		return true
	}
	for v := range s.large {
		if rhs.Contains(v) {
			return true
		}
	}
	return false
}

// DifferenceWith removes any elements in rhs from this set.
func (s *Fast) DifferenceWith(rhs Fast) {
	s.small &^= rhs.small
	for v := range rhs.large {
		s.Remove(v)
	}
}

// Difference returns the elements of s that are not in rhs as a new set.
func (s Fast) Difference(rhs Fast) Fast {
	r := s.Copy()
	r.DifferenceWith(rhs)
	return r
}

// SubsetOf returns true if rhs contains all the elements in s.
func (s Fast) SubsetOf(rhs Fast) bool {
	if s.small&rhs.small != s.small {
		return false
	}
	for v := range s.large {
		if !rhs.Contains(v) {
			return false
		}
	}
	return true
}

// Equals returns true if the two sets are identical.
func (s Fast) Equals(rhs Fast) bool {
	if s.small != rhs.small || len(s.large) != len(rhs.large) {
		return false
	}
	for v := range s.large {
		if !rhs.Contains(v) {
			return false
		}
	}
	return true
}

// String returns a list representation of elements. Sequential runs of three
// or more elements are printed as ranges, e.g. "(1-3,5,10)".
func (s Fast) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	appendRange := func(start, end int) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		switch {
		case start == end:
			fmt.Fprintf(&buf, "%d", start)
		case start == end-1:
			fmt.Fprintf(&buf, "%d,%d", start, end)
		default:
			fmt.Fprintf(&buf, "%d-%d", start, end)
		}
	}
	rangeStart, rangeEnd := -1, -1
	s.ForEach(func(i int) {
		if rangeStart != -1 && rangeEnd == i-1 {
			rangeEnd = i
			return
		}
		if rangeStart != -1 {
			appendRange(rangeStart, rangeEnd)
		}
		rangeStart, rangeEnd = i, i
	})
	if rangeStart != -1 {
		appendRange(rangeStart, rangeEnd)
	}
	buf.WriteByte(')')
	return buf.String()
}
