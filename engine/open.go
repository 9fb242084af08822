// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/engine/internal/ctxt"
)

// OpenGPU opens the first registered driver whose name
// contains name (case insensitive). An empty name matches
// every driver.
// Drivers register themselves when their package is
// imported, so at least one driver package (e.g.,
// driver/vk) must be imported by the program.
func OpenGPU(name string, opt driver.Options) (driver.Driver, driver.GPU, error) {
	return ctxt.Load(name, opt)
}
