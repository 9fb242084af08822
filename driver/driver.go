// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines the set of interfaces that a GPU
// backend must implement so frames can be rendered and
// presented on a window surface.
// It is designed to allow explicit APIs (such as Vulkan) to
// be implemented in a mostly straightforward manner, with
// synchronization objects exposed as first-class values.
package driver

import (
	"errors"
	"sync"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same GPU instance.
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open(opt Options) (GPU, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	// Callers should assume that Close is not safe for
	// parallel execution.
	Close()
}

// Options configures how a driver is opened.
type Options struct {
	// AppName is reported to the underlying API, if
	// it has such a concept.
	AppName string

	// Validation enables API validation layers when
	// they are available. Missing layers are not an
	// error.
	Validation bool
}

// ErrNotInstalled means that a platform-specific library
// required for the driver to work is not present in the
// system.
var ErrNotInstalled = errors.New("driver: missing required library")

// ErrNoDevice means that no suitable device could be
// found.
var ErrNoDevice = errors.New("driver: no suitable device found")

// ErrNoHostMemory means that host memory could not be
// allocated.
var ErrNoHostMemory = errors.New("driver: out of host memory")

// ErrNoDeviceMemory means that device memory could not
// be allocated.
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// ErrFatal means that the driver is in an unrecoverable
// state (e.g., the device was lost). Upon encountering
// such an error, the application must destroy everything
// that it created using the driver's GPU and then call the
// Close method.
var ErrFatal = errors.New("driver: fatal error")

// ErrTimeout means that a bounded wait elapsed before the
// waited condition was met.
var ErrTimeout = errors.New("driver: wait timed out")

// Drivers returns the registered Drivers.
// Client code imports specific driver packages, and then
// call this function. As such, drivers that do not
// register themselves on init will not be considered
// for selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver.
// Driver implementations are expected to call Register
// exactly once, from an init function.
// If a driver with the same name has already been
// registered, it will be replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			Logger().WithField("driver", drv.Name()).Warn("driver replaced")
			return
		}
	}
	drivers = append(drivers, drv)
	Logger().WithField("driver", drv.Name()).Debug("driver registered")
}

// Lookup returns the registered Driver with the given name.
func Lookup(name string) (Driver, bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, d := range drivers {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Variables used for driver registration.
var (
	mu      sync.Mutex
	drivers []Driver = make([]Driver, 0, 1)
)
