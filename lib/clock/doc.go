// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code injects
// Real(); tests inject Fake() and advance it deterministically.
//
// Code that would otherwise call time.Now, time.After, or time.Sleep
// directly should take a Clock instead. The GitHub client's rate-limit
// backoff is the main consumer: tests drive its waits with a fake clock
// instead of sleeping.
package clock
