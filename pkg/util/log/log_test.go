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

package log

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/stretchr/testify/require"
)

func TestIntercept(t *testing.T) {
	var entries []Entry
	defer TestingSetIntercept(func(e Entry) {
		entries = append(entries, e)
	})()

	ctx := logtags.AddTag(context.Background(), "job", 42)
	Infof(ctx, "hello %s", "world")
	Warningf(ctx, "watch out")

	require.Len(t, entries, 2)
	require.Equal(t, SeverityInfo, entries[0].Severity)
	require.Equal(t, "job=42", entries[0].Tags)
	require.Equal(t, "hello world", entries[0].Message.StripMarkers())
	require.Equal(t, SeverityWarning, entries[1].Severity)
}

func TestVerbosity(t *testing.T) {
	var n int
	defer TestingSetIntercept(func(Entry) { n++ })()

	prev := SetVerbosity(0)
	defer SetVerbosity(prev)

	VInfof(context.Background(), 2, "quiet")
	require.Equal(t, 0, n)
	SetVerbosity(2)
	VInfof(context.Background(), 2, "loud")
	require.Equal(t, 1, n)
}

func TestEveryN(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := Every(time.Minute)
	testCases := []struct {
		t        time.Duration
		expected bool
	}{
		{0, true},
		{time.Second, false},
		{time.Minute - time.Nanosecond, false},
		{time.Minute, true},
		{time.Minute + 30*time.Second, false},
		{10 * time.Minute, true},
	}
	for _, tc := range testCases {
		if got := e.shouldLog(start.Add(tc.t)); got != tc.expected {
			t.Errorf("at %s expected %t, got %t", tc.t, tc.expected, got)
		}
	}
}
