// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeardown(t *testing.T) {
	var td teardown
	var order []string
	for _, s := range []string{"a", "b", "c"} {
		td.push(s, func() { order = append(order, s) })
	}
	assert.Equal(t, []string{"c", "b", "a"}, td.names())

	td.run()
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Empty(t, td.names())

	td.run()
	assert.Len(t, order, 3, "run must not repeat released actions")
}

func TestFatalError(t *testing.T) {
	err := error(&FatalError{"submit", ErrHung})
	assert.ErrorIs(t, err, ErrFatal)
	assert.ErrorIs(t, err, ErrHung)
	assert.NotErrorIs(t, err, ErrShutdown)
	assert.Equal(t, "engine: submit: "+ErrHung.Error(), err.Error())
}
