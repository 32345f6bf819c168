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

// Package log provides leveled, context-aware logging. Messages are formatted
// through redact so that unsafe values can be scrubbed from diagnostic output,
// and log tags attached to the context via logtags are prepended to each line.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"

	"github.com/avinashkrsingh01/Polypheny-DB/pkg/util/syncutil"
)

// Severity identifies the importance of a log entry.
type Severity int32

const (
	// SeverityInfo is used for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is used for messages that indicate a recoverable
	// anomaly.
	SeverityWarning
	// SeverityError is used for messages that indicate an error.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "I"
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	}
	return fmt.Sprintf("severity(%d)", s)
}

// Entry is one log event, as seen by an interceptor.
type Entry struct {
	Severity Severity
	Tags     string
	// Message is the formatted message, in redactable form.
	Message redact.RedactableString
}

var verbosity atomic.Int32

// SetVerbosity sets the verbosity threshold for V and returns the previous
// value. Messages logged under V(n) are emitted only when the threshold is at
// least n.
func SetVerbosity(v int) int {
	return int(verbosity.Swap(int32(v)))
}

// V returns true if logging at the given verbosity level is enabled.
func V(level int32) bool {
	return verbosity.Load() >= level
}

var sink struct {
	syncutil.Mutex
	w           io.Writer
	interceptor func(Entry)
}

// writer returns the destination for log output.
func writer() io.Writer {
	if sink.w != nil {
		return sink.w
	}
	return os.Stderr
}

// TestingSetIntercept diverts log entries to the given function instead of the
// log output. The returned function restores the previous state.
func TestingSetIntercept(fn func(Entry)) func() {
	sink.Lock()
	defer sink.Unlock()
	prev := sink.interceptor
	sink.interceptor = fn
	return func() {
		sink.Lock()
		defer sink.Unlock()
		sink.interceptor = prev
	}
}

// Infof logs an informational message.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityInfo, format, args...)
}

// Warningf logs a warning message.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityWarning, format, args...)
}

// Errorf logs an error message.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityError, format, args...)
}

// VInfof logs an informational message if the given verbosity level is
// enabled.
func VInfof(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		logfDepth(ctx, SeverityInfo, format, args...)
	}
}

func logfDepth(ctx context.Context, sev Severity, format string, args ...interface{}) {
	entry := Entry{
		Severity: sev,
		Message:  redact.Sprintf(format, args...),
	}
	if tags := logtags.FromContext(ctx); tags != nil {
		entry.Tags = tags.String()
	}
	sink.Lock()
	defer sink.Unlock()
	if sink.interceptor != nil {
		sink.interceptor(entry)
		return
	}
	var tags string
	if entry.Tags != "" {
		tags = " [" + entry.Tags + "]"
	}
	fmt.Fprintf(writer(), "%s %s%s %s\n",
		time.Now().Format("060102 15:04:05.000000"), sev, tags,
		entry.Message.StripMarkers())
}
