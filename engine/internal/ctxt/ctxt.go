// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package ctxt selects and opens the GPU driver used in
// the engine.
package ctxt

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// ErrNoDriver means that no registered driver matched.
var ErrNoDriver = errors.New("ctxt: driver not found")

// Load attempts to open any registered driver whose name
// contains the name string. It is case insensitive.
// If name is the empty string, then all registered
// drivers are considered, in registration order.
// The error of the last driver that failed to open is
// returned when none succeeds.
func Load(name string, opt driver.Options) (driver.Driver, driver.GPU, error) {
	drivers := driver.Drivers()
	err := ErrNoDriver
	name = strings.ToLower(name)
	for i := range drivers {
		if !strings.Contains(strings.ToLower(drivers[i].Name()), name) {
			continue
		}
		var u driver.GPU
		if u, err = drivers[i].Open(opt); err != nil {
			driver.Logger().WithError(err).WithField("driver", drivers[i].Name()).Warn("driver failed to open")
			continue
		}
		driver.Logger().WithField("device", u.DeviceName()).Info("driver opened")
		return drivers[i], u, nil
	}
	return nil, nil, errors.Wrapf(err, "no usable driver matching %q", name)
}
