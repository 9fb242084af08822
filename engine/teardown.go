// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/gviegas/inflight/driver"
)

// release is a named action that destroys a resource.
type release struct {
	name string
	fn   func()
}

// teardown is a stack of release actions.
// Resources are pushed as they are created and released in
// reverse order, so no resource outlives one that depends
// on it. Actions must tolerate being run on resources that
// were already replaced or destroyed by recreation.
type teardown struct {
	stack []release
}

// push adds a release action on top of the stack.
func (t *teardown) push(name string, fn func()) {
	t.stack = append(t.stack, release{name, fn})
}

// run pops and runs every action.
func (t *teardown) run() {
	log := driver.Logger()
	for i := len(t.stack) - 1; i >= 0; i-- {
		log.WithField("resource", t.stack[i].name).Debug("releasing")
		t.stack[i].fn()
	}
	t.stack = t.stack[:0]
}

// names returns the action names in release order.
func (t *teardown) names() []string {
	s := make([]string, len(t.stack))
	for i := range t.stack {
		s[len(s)-1-i] = t.stack[i].name
	}
	return s
}
