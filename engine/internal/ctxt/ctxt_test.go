// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ctxt

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/gputest"
)

type failing struct{}

func (failing) Open(driver.Options) (driver.GPU, error) { return nil, driver.ErrNoDevice }
func (failing) Name() string                          { return "ctxt-failing" }
func (failing) Close()                                {}

func TestLoad(t *testing.T) {
	g := gputest.New()
	driver.Register(failing{})
	driver.Register(gputest.Driver{G: g})

	drv, gpu, err := Load("GPUTEST", driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "gputest", drv.Name())
	assert.Same(t, g, gpu)

	_, _, err = Load("", driver.Options{})
	assert.NoError(t, err, "some registered driver must open")

	_, _, err = Load("ctxt-failing", driver.Options{})
	assert.True(t, errors.Is(err, driver.ErrNoDevice), "have %v", err)

	_, _, err = Load("no-such-driver", driver.Options{})
	assert.True(t, errors.Is(err, ErrNoDriver), "have %v", err)
}
