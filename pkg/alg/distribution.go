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

// DistributionType classifies how the rows of a node are spread over
// physical execution units.
type DistributionType int8

const (
	// DistributionAny means the distribution is unconstrained.
	DistributionAny DistributionType = iota
	// DistributionSingleton means all rows live on a single unit.
	DistributionSingleton
	// DistributionBroadcast means every unit holds a full copy of the rows.
	DistributionBroadcast
	// DistributionRandom means rows are spread with no placement function.
	DistributionRandom
	// DistributionHash means rows are placed by a hash of the key columns.
	DistributionHash
	// DistributionRange means rows are placed by key ranges.
	DistributionRange
)

func (t DistributionType) String() string {
	switch t {
	case DistributionAny:
		return "any"
	case DistributionSingleton:
		return "single"
	case DistributionBroadcast:
		return "broadcast"
	case DistributionRandom:
		return "random"
	case DistributionHash:
		return "hash"
	case DistributionRange:
		return "range"
	}
	return fmt.Sprintf("distribution(%d)", t)
}

// Distribution describes the physical distribution of the rows produced by a
// node. Keys is meaningful only for the hash and range types.
type Distribution struct {
	Typ  DistributionType
	Keys ColList
}

// Singleton returns the distribution with all rows on a single unit.
func Singleton() Distribution {
	return Distribution{Typ: DistributionSingleton}
}

// Broadcast returns the distribution with all rows replicated to every unit.
func Broadcast() Distribution {
	return Distribution{Typ: DistributionBroadcast}
}

// RandomDistributed returns the distribution with rows spread arbitrarily.
func RandomDistributed() Distribution {
	return Distribution{Typ: DistributionRandom}
}

// HashDistributed returns the distribution that places rows by a hash of the
// given key columns.
func HashDistributed(keys ColList) Distribution {
	return Distribution{Typ: DistributionHash, Keys: keys}
}

// RangeDistributed returns the distribution that places rows by ranges of the
// given key columns.
func RangeDistributed(keys ColList) Distribution {
	return Distribution{Typ: DistributionRange, Keys: keys}
}

func (d Distribution) String() string {
	if len(d.Keys) == 0 {
		return d.Typ.String()
	}
	keys := make([]string, len(d.Keys))
	for i, k := range d.Keys {
		keys[i] = fmt.Sprintf("%d", k)
	}
	return fmt.Sprintf("%s(%s)", d.Typ, strings.Join(keys, ","))
}
