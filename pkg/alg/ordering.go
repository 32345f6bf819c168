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
	"strings"
)

// OrderingColumn is the ColumnID for a column that is part of an ordering,
// except that it can be negated to indicate a descending ordering on that
// column.
type OrderingColumn int32

// MakeOrderingColumn initializes an ordering column with a ColumnID and a flag
// indicating whether the direction is descending.
func MakeOrderingColumn(id ColumnID, descending bool) OrderingColumn {
	if descending {
		return OrderingColumn(-(id + 1))
	}
	return OrderingColumn(id + 1)
}

// ID returns the ColumnID for this OrderingColumn.
func (c OrderingColumn) ID() ColumnID {
	if c < 0 {
		return ColumnID(-c) - 1
	}
	return ColumnID(c) - 1
}

// Ascending returns true if the ordering on this column is ascending.
func (c OrderingColumn) Ascending() bool {
	return c > 0
}

// Descending returns true if the ordering on this column is descending.
func (c OrderingColumn) Descending() bool {
	return c < 0
}

func (c OrderingColumn) String() string {
	if c.Descending() {
		return fmt.Sprintf("-%d", c.ID())
	}
	return fmt.Sprintf("+%d", c.ID())
}

// Collation describes one sort order that the output rows of a node are known
// to satisfy.
type Collation struct {
	Cols []OrderingColumn
}

// MakeCollation returns a collation over the given ordering columns.
func MakeCollation(cols ...OrderingColumn) Collation {
	return Collation{Cols: cols}
}

func (c Collation) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, col := range c.Cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(col.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
