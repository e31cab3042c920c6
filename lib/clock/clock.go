// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock provides the time operations ForgeFS needs. The interface is
// deliberately small: only what the codebase actually calls.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. If d <= 0, the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the current goroutine for at least duration d.
	Sleep(d time.Duration)
}
