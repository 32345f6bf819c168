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
	"runtime"

	"github.com/cockroachdb/errors"
)

// CatchMetadataError runs f and catches panics raised inside metadata
// strategies (contract violations, mistyped registrations), returning them
// as errors. The planner wraps metadata computation at its boundary so that
// the engine can propagate internal bugs as panics without error checks on
// every recursive call. This is only safe because statistic computation does
// not update shared state mid-flight and does not hold locks.
func CatchMetadataError(f func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			// Not an error object. For serious internal errors, e.g. bad
			// goroutine state, the runtime throws a string that does not
			// implement error. In that case we cannot recover and must crash.
			panic(r)
		}
		if errors.HasInterface(e, (*runtime.Error)(nil)) {
			// Convert runtime errors to assertion failures, which include
			// stacks in their reports.
			e = errors.HandleAsAssertionFailure(e)
		}
		err = e
	}()
	f()
	return nil
}
