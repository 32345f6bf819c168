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

	"github.com/cockroachdb/errors"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/syncutil"
)

// Kind identifies a family of algebra operators. The set of kinds is open:
// extensions register new kinds at run time via RegisterKind. Each kind
// declares a parent kind, forming a hierarchy rooted at AnyOperator which the
// metadata registry walks when resolving strategies for a concrete kind.
type Kind int32

// AnyOperator is the root of the operator kind hierarchy.
const AnyOperator Kind = 0

type kindInfo struct {
	name   string
	parent Kind
}

var kindTab = struct {
	syncutil.RWMutex
	info   []kindInfo
	byName map[string]Kind
}{
	info:   []kindInfo{{name: "AnyOperator", parent: AnyOperator}},
	byName: map[string]Kind{"AnyOperator": AnyOperator},
}

// RegisterKind allocates a new operator kind with the given name and parent.
// It is safe for concurrent use. Registering the same name twice is a bug and
// panics.
func RegisterKind(name string, parent Kind) Kind {
	kindTab.Lock()
	defer kindTab.Unlock()
	if _, ok := kindTab.byName[name]; ok {
		panic(errors.AssertionFailedf("operator kind %q registered twice", name))
	}
	if int(parent) < 0 || int(parent) >= len(kindTab.info) {
		panic(errors.AssertionFailedf("operator kind %q has unregistered parent %d", name, parent))
	}
	k := Kind(len(kindTab.info))
	kindTab.info = append(kindTab.info, kindInfo{name: name, parent: parent})
	kindTab.byName[name] = k
	return k
}

// LookupKind returns the kind registered under the given name.
func LookupKind(name string) (Kind, bool) {
	kindTab.RLock()
	defer kindTab.RUnlock()
	k, ok := kindTab.byName[name]
	return k, ok
}

// Parent returns the declared parent of this kind. The parent of AnyOperator
// is AnyOperator itself.
func (k Kind) Parent() Kind {
	kindTab.RLock()
	defer kindTab.RUnlock()
	if int(k) < 0 || int(k) >= len(kindTab.info) {
		panic(errors.AssertionFailedf("unregistered operator kind %d", k))
	}
	return kindTab.info[k].parent
}

// Isa returns true if k equals ancestor or descends from it.
func (k Kind) Isa(ancestor Kind) bool {
	for {
		if k == ancestor {
			return true
		}
		if k == AnyOperator {
			return false
		}
		k = k.Parent()
	}
}

func (k Kind) String() string {
	kindTab.RLock()
	defer kindTab.RUnlock()
	if int(k) < 0 || int(k) >= len(kindTab.info) {
		return fmt.Sprintf("kind(%d)", k)
	}
	return kindTab.info[k].name
}

// SafeValue implements the redact.SafeValue interface.
func (k Kind) SafeValue() {}
