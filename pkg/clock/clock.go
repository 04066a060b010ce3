// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package clock abstracts the wall clock so expiry logic can be tested
// without sleeping.
//
// # Usage
//
// Production code receives [System]. Tests receive a [*Fake] and move time
// forward explicitly with [Fake.Advance].
package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now implements [Clock].
func (System) Now() time.Time {
	return time.Now()
}

// Fake is a manually driven [Clock]. It is safe for concurrent use.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a [Fake] frozen at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now implements [Clock].
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// Advance moves the clock forward by d.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.now = fake.now.Add(d)
	fake.mu.Unlock()
}

// Set pins the clock to t.
func (fake *Fake) Set(t time.Time) {
	fake.mu.Lock()
	fake.now = t
	fake.mu.Unlock()
}
