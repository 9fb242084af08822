// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package vk implements driver interfaces using the Vulkan API.
//
// The Vulkan loader is located through the wsi package, so
// wsi.Init must succeed before the driver can be opened.
package vk

import (
	"time"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/wsi"
)

const driverName = "vulkan"

const validationLayer = "VK_LAYER_KHRONOS_validation"

// Driver implements driver.Driver and driver.GPU.
type Driver struct {
	inst  vk.Instance
	pdev  vk.PhysicalDevice
	dname string
	dev   vk.Device

	// One queue of every family exposed by pdev.
	// Graphics commands are submitted to ques[qfam].
	ques []queue
	qfam int

	// Enabled extensions, indexed by ext* constants.
	exts [extN]bool

	// Routes validation messages to the logger.
	// Only set when validation is enabled.
	dbg vk.DebugReportCallback
}

func init() {
	driver.Register(&Driver{})
}

func (d *Driver) log() *logrus.Entry {
	return driver.Logger().WithField("driver", driverName)
}

// open loads the Vulkan library.
func (d *Driver) open() error {
	if err := wsi.Init(); err != nil {
		return errors.Wrap(driver.ErrNotInstalled, err.Error())
	}
	if !wsi.VulkanSupported() {
		return driver.ErrNotInstalled
	}
	vk.SetGetInstanceProcAddr(wsi.VulkanProcAddr())
	if err := vk.Init(); err != nil {
		return errors.Wrap(driver.ErrNotInstalled, err.Error())
	}
	return nil
}

// initInstance initializes the Vulkan instance.
func (d *Driver) initInstance(opt driver.Options) error {
	avail, err := instanceExts()
	if err != nil {
		return err
	}
	names := wsi.RequiredExtensions()
	if miss := missingExts(names, avail); len(miss) > 0 {
		return errors.Wrapf(errNoExtension, "missing instance extensions %v", miss)
	}
	for _, e := range names {
		if e == extSurfaceS {
			d.exts[extSurface] = true
		}
	}
	pexts, flags := portabilityExts(avail)
	if len(pexts) > 0 {
		names = append(names, pexts...)
		d.exts[extPortabilityEnum] = true
		d.log().Debug("enumerating portability devices")
	}

	var layers []string
	if opt.Validation {
		switch avail, err := instanceLayers(); {
		case err != nil:
			return err
		case hasName(avail, validationLayer):
			layers = []string{validationLayer}
		default:
			d.log().WithField("layer", validationLayer).Warn("validation layer not available")
		}
		if len(layers) > 0 && hasName(avail, extDebugReportS) {
			names = append(names, extDebugReportS)
			d.exts[extDebugReport] = true
		}
	}

	app := opt.AppName
	if app == "" {
		app = wsi.AppName()
	}
	info := &vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   cstr(app),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PEngineName:        cstr("inflight"),
			EngineVersion:      vk.MakeVersion(1, 0, 0),
			ApiVersion:         vk.MakeVersion(1, 0, 0),
		},
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     cstrs(layers),
		EnabledExtensionCount:   uint32(len(names)),
		PpEnabledExtensionNames: cstrs(names),
	}
	if err := checkResult(vk.CreateInstance(info, nil, &d.inst)); err != nil {
		return errors.Wrap(err, "vk: instance creation failed")
	}
	if err := vk.InitInstance(d.inst); err != nil {
		return errors.Wrap(err, "vk: failed to load instance procs")
	}
	if d.exts[extDebugReport] {
		d.initDebugReport()
	}
	d.log().WithFields(logrus.Fields{
		"extensions": names,
		"layers":     layers,
	}).Debug("instance created")
	return nil
}

// initDevice initializes the Vulkan device.
func (d *Driver) initDevice() error {
	var n uint32
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, nil)); err != nil {
		return err
	}
	if n == 0 {
		return driver.ErrNoDevice
	}
	devs := make([]vk.PhysicalDevice, n)
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, devs)); err != nil {
		return err
	}

	// A device must have a graphics queue and be capable
	// of creating swapchains. Hardware-accelerated
	// devices are preferred.
	weight := 0
	nfam := 0
	subset := false
	for _, dev := range devs[:n] {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()
		name := vk.ToString(props.DeviceName[:])

		var qn uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &qn, nil)
		qprops := make([]vk.QueueFamilyProperties, qn)
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &qn, qprops)
		flags := make([]vk.QueueFlags, qn)
		for i := range flags {
			qprops[i].Deref()
			flags[i] = qprops[i].QueueFlags
		}

		exts, err := deviceExts(dev)
		if err != nil {
			d.log().WithError(err).WithField("device", name).Debug("device skipped")
			continue
		}
		wgt, fam := rateDevice(props.DeviceType, flags, exts)
		d.log().WithFields(logrus.Fields{
			"device": name,
			"weight": wgt,
		}).Debug("device rated")
		if wgt > weight {
			d.pdev = dev
			d.dname = name
			d.qfam = fam
			nfam = len(flags)
			subset = hasName(exts, extPortabilitySubsetS)
			weight = wgt
		}
	}
	if weight == 0 {
		return driver.ErrNoDevice
	}

	// Create one queue of every family. The graphics
	// queue is ques[qfam]; the others only exist to
	// increase the likelihood of finding one that can
	// present to a given surface.
	qinfos := make([]vk.DeviceQueueCreateInfo, nfam)
	for i := range qinfos {
		qinfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(i),
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}
	}
	names := []string{extSwapchainS}
	d.exts[extSwapchain] = true
	if subset {
		names = append(names, extPortabilitySubsetS)
		d.exts[extPortabilitySubset] = true
	}
	info := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(qinfos)),
		PQueueCreateInfos:       qinfos,
		EnabledExtensionCount:   uint32(len(names)),
		PpEnabledExtensionNames: cstrs(names),
	}
	if err := checkResult(vk.CreateDevice(d.pdev, info, nil, &d.dev)); err != nil {
		return errors.Wrap(err, "vk: device creation failed")
	}
	d.ques = make([]queue, nfam)
	for i := range d.ques {
		d.ques[i] = queue{d: d, fam: i}
		vk.GetDeviceQueue(d.dev, uint32(i), 0, &d.ques[i].q)
	}
	return nil
}

// Open initializes the driver.
// It requires the wsi package to be initialized, and
// calls wsi.Init if it is not.
func (d *Driver) Open(opt driver.Options) (gpu driver.GPU, err error) {
	if d.dev != nil {
		return d, nil
	}
	if err = d.open(); err != nil {
		goto fail
	}
	if err = d.initInstance(opt); err != nil {
		goto fail
	}
	if err = d.initDevice(); err != nil {
		goto fail
	}
	d.log().WithFields(logrus.Fields{
		"device":      d.dname,
		"family":      d.qfam,
		"portability": d.exts[extPortabilitySubset],
	}).Info("device opened")
	return d, nil
fail:
	d.Close()
	return nil, err
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	if d.inst != nil {
		if d.dev != nil {
			vk.DeviceWaitIdle(d.dev)
			vk.DestroyDevice(d.dev, nil)
		}
		if d.dbg != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(d.inst, d.dbg, nil)
		}
		vk.DestroyInstance(d.inst, nil)
	}
	*d = Driver{}
}

// Driver returns the receiver.
func (d *Driver) Driver() driver.Driver { return d }

// DeviceName returns the name of the physical device.
func (d *Driver) DeviceName() string { return d.dname }

// GraphicsQueue returns the queue used for rendering.
func (d *Driver) GraphicsQueue() driver.Queue { return &d.ques[d.qfam] }

// WaitIdle waits for the device to go idle.
func (d *Driver) WaitIdle() error { return checkResult(vk.DeviceWaitIdle(d.dev)) }

// rateDevice rates a physical device from its type, the
// flags of its queue families and the device extensions
// it supports.
// It returns the device's weight and the index of the
// family to use for graphics. A weight of zero means that
// the device is not suitable.
func rateDevice(typ vk.PhysicalDeviceType, fams []vk.QueueFlags, exts []string) (weight, family int) {
	family = -1
	for i, f := range fams {
		if f&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			family = i
			break
		}
	}
	if family == -1 || !hasName(exts, extSwapchainS) {
		return 0, -1
	}
	weight = 1
	switch typ {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		weight += 2
	case vk.PhysicalDeviceTypeIntegratedGpu:
		weight++
	}
	return
}

// checkResult returns an error derived from a negative
// result, or nil otherwise.
// Positive results (e.g., vk.Suboptimal) are not errors
// here; callers that care about them check first.
func checkResult(res vk.Result) error {
	if res >= 0 {
		return nil
	}
	switch res {
	case vk.ErrorOutOfHostMemory:
		return errNoHostMemory
	case vk.ErrorOutOfDeviceMemory:
		return errNoDeviceMemory
	case vk.ErrorInitializationFailed:
		return errInitFailed
	case vk.ErrorDeviceLost:
		return errDeviceLost
	case vk.ErrorLayerNotPresent:
		return errNoLayer
	case vk.ErrorExtensionNotPresent:
		return errNoExtension
	case vk.ErrorFeatureNotPresent:
		return errNoFeature
	case vk.ErrorIncompatibleDriver:
		return errDriverCompat
	case vk.ErrorTooManyObjects:
		return errTooManyObjects
	case vk.ErrorFormatNotSupported:
		return errUnsupportedFormat
	case vk.ErrorSurfaceLost:
		return errSurfaceLost
	case vk.ErrorNativeWindowInUse:
		return errWindowInUse
	case vk.ErrorOutOfDate:
		return errOutOfDate
	}
	return errors.Wrapf(errUnknown, "result %d", int32(res))
}

// swapchainResult is like checkResult, but also maps the
// non-error results of acquisition and presentation.
func swapchainResult(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		return driver.ErrSuboptimal
	case vk.Timeout, vk.NotReady:
		return driver.ErrTimeout
	}
	return checkResult(res)
}

// timeoutNS converts a timeout to nanoseconds.
// Negative durations wait indefinitely.
func timeoutNS(t time.Duration) uint64 {
	if t < 0 {
		return vk.MaxUint64
	}
	return uint64(t)
}

// Common Vulkan errors (VK_ERROR_*).
var (
	errNoHostMemory      = driver.ErrNoHostMemory
	errNoDeviceMemory    = driver.ErrNoDeviceMemory
	errInitFailed        = errors.New("vk: initialization failed")
	errDeviceLost        = driver.ErrFatal
	errNoLayer           = errors.New("vk: layer not present")
	errNoExtension       = errors.New("vk: extension not present")
	errNoFeature         = errors.New("vk: feature not present")
	errDriverCompat      = errors.New("vk: incompatible driver")
	errTooManyObjects    = errors.New("vk: too many objects")
	errUnsupportedFormat = errors.New("vk: format not supported")
	errSurfaceLost       = driver.ErrSurfaceLost
	errWindowInUse       = errors.New("vk: native window in use")
	errOutOfDate         = driver.ErrOutOfDate
	errUnknown           = errors.New("vk: unknown error")
)
