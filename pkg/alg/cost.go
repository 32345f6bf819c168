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
	"math"
)

// Cost is the estimated execution cost of one operator or plan fragment,
// broken into rows processed, CPU work and I/O work. The metadata engine owns
// this representation rather than borrowing the planner's, so that worst-case
// sentinels can be produced without a cost-factory collaborator.
type Cost struct {
	Rows float64
	CPU  float64
	IO   float64
}

// MakeCost returns a cost with the given components.
func MakeCost(rows, cpu, io float64) Cost {
	return Cost{Rows: rows, CPU: cpu, IO: io}
}

// InfiniteCost returns the maximal cost sentinel. It compares greater than
// every finite cost and is used to steer the search away from degenerate
// (e.g. cyclic) plans.
func InfiniteCost() Cost {
	return Cost{
		Rows: math.Inf(1),
		CPU:  math.Inf(1),
		IO:   math.Inf(1),
	}
}

// ZeroCost is the cost of doing nothing.
var ZeroCost = Cost{}

// IsInfinite returns true if any component of the cost is infinite.
func (c Cost) IsInfinite() bool {
	return math.IsInf(c.Rows, 1) || math.IsInf(c.CPU, 1) || math.IsInf(c.IO, 1)
}

// Add returns the component-wise sum of the two costs.
func (c Cost) Add(other Cost) Cost {
	return Cost{
		Rows: c.Rows + other.Rows,
		CPU:  c.CPU + other.CPU,
		IO:   c.IO + other.IO,
	}
}

// Less returns true if this cost is cheaper than the other. Work (CPU plus
// I/O) dominates; row count breaks ties.
func (c Cost) Less(other Cost) bool {
	w1, w2 := c.CPU+c.IO, other.CPU+other.IO
	if w1 != w2 {
		return w1 < w2
	}
	return c.Rows < other.Rows
}

func (c Cost) String() string {
	if c.IsInfinite() {
		return "{inf}"
	}
	return fmt.Sprintf("{rows: %v, cpu: %v, io: %v}", c.Rows, c.CPU, c.IO)
}

// SafeValue implements the redact.SafeValue interface. Costs are estimates,
// never user data.
func (c Cost) SafeValue() {}
