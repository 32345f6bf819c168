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
	"math"

	"github.com/cockroachdb/errors"
)

// validateFraction checks that a probability-style result lies in [0, 1].
// A value outside the range is a contract violation in the computing
// strategy; it is rejected rather than silently clamped, since clamping
// would mask the buggy strategy.
func validateFraction(v float64) float64 {
	if v < 0.0 || v > 1.0 {
		panic(errors.AssertionFailedf("fraction statistic out of range: %v", v))
	}
	return v
}

// validateCount normalizes a count-style result. Counts are used as divisors
// in downstream cost and selectivity arithmetic, so the contract guarantees
// "small but positive" and "large but finite": an infinite result caps at the
// largest finite value and a finite result below 1 floors at 1. A negative
// count is a contract violation in the computing strategy.
func validateCount(v float64) float64 {
	if math.IsInf(v, 1) {
		v = math.MaxFloat64
	}
	if v < 0 {
		panic(errors.AssertionFailedf("count statistic is negative: %v", v))
	}
	if v < 1.0 {
		v = 1.0
	}
	return v
}
