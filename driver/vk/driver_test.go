// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
)

func TestRegistered(t *testing.T) {
	drv, ok := driver.Lookup(driverName)
	require.True(t, ok)
	assert.Equal(t, "vulkan", drv.Name())
	_, ok = drv.(*Driver)
	assert.True(t, ok)
}

func TestOpen(t *testing.T) {
	d := Driver{}
	gpu, err := d.Open(driver.Options{AppName: "vk.TestOpen", Validation: true})
	defer d.Close()
	if err != nil {
		if d.inst != nil || d.dev != nil {
			t.Error("d.Open(): Driver\nhave non-zero\nwant Driver{}")
		}
		if gpu != nil {
			t.Error("d.Open(): GPU\nhave non-nil\nwant nil")
		}
		t.Skipf("d.Open() failed: %v", err)
	}
	if d.pdev == nil || d.dev == nil {
		t.Fatal("d.Open(): device\nhave nil\nwant non-nil")
	}
	if x, ok := gpu.(*Driver); !ok || x != &d {
		t.Fatalf("d.Open(): GPU\nhave %p\nwant %p", gpu, &d)
	}
	if d.DeviceName() == "" {
		t.Error("d.DeviceName():\nhave \"\"\nwant non-empty")
	}
	if q := d.GraphicsQueue(); q.Family() != d.qfam {
		t.Errorf("d.GraphicsQueue().Family():\nhave %d\nwant %d", q.Family(), d.qfam)
	}
	if !d.exts[extSwapchain] {
		t.Error("d.exts[extSwapchain]:\nhave false\nwant true")
	}
	if d.exts[extDebugReport] && d.dbg == vk.NullDebugReportCallback {
		t.Error("d.dbg:\nhave null\nwant debug report callback")
	}
	// Subsequent calls to Open should return the same GPU.
	if x, err := d.Open(driver.Options{}); err != nil || x != gpu {
		t.Errorf("d.Open(): second call\nhave %p, %v\nwant %p, nil", x, err, gpu)
	}

	f, err := d.NewFence(true)
	require.NoError(t, err)
	defer f.Destroy()
	assert.NoError(t, d.WaitFences([]driver.Fence{f}, time.Second))
	assert.NoError(t, d.ResetFences([]driver.Fence{f}))
	assert.ErrorIs(t, d.WaitFences([]driver.Fence{f}, 0), driver.ErrTimeout)
	assert.NoError(t, d.WaitIdle())
}

func TestCheckResult(t *testing.T) {
	cases := []struct {
		res  vk.Result
		want error
	}{
		{vk.Success, nil},
		{vk.Suboptimal, nil},
		{vk.Timeout, nil},
		{vk.ErrorOutOfHostMemory, driver.ErrNoHostMemory},
		{vk.ErrorOutOfDeviceMemory, driver.ErrNoDeviceMemory},
		{vk.ErrorDeviceLost, driver.ErrFatal},
		{vk.ErrorSurfaceLost, driver.ErrSurfaceLost},
		{vk.ErrorOutOfDate, driver.ErrOutOfDate},
		{vk.ErrorExtensionNotPresent, errNoExtension},
		{-1000012000, errUnknown},
	}
	for _, c := range cases {
		err := checkResult(c.res)
		if c.want == nil {
			assert.NoError(t, err, "checkResult(%d)", c.res)
		} else {
			assert.ErrorIs(t, err, c.want, "checkResult(%d)", c.res)
		}
	}
}

func TestSwapchainResult(t *testing.T) {
	assert.NoError(t, swapchainResult(vk.Success))
	assert.ErrorIs(t, swapchainResult(vk.Suboptimal), driver.ErrSuboptimal)
	assert.ErrorIs(t, swapchainResult(vk.Timeout), driver.ErrTimeout)
	assert.ErrorIs(t, swapchainResult(vk.NotReady), driver.ErrTimeout)
	assert.ErrorIs(t, swapchainResult(vk.ErrorOutOfDate), driver.ErrOutOfDate)
	assert.ErrorIs(t, swapchainResult(vk.ErrorDeviceLost), driver.ErrFatal)
}

func TestDebugLevel(t *testing.T) {
	cases := []struct {
		flags vk.DebugReportFlagBits
		want  logrus.Level
	}{
		{vk.DebugReportErrorBit, logrus.ErrorLevel},
		{vk.DebugReportErrorBit | vk.DebugReportWarningBit, logrus.ErrorLevel},
		{vk.DebugReportWarningBit, logrus.WarnLevel},
		{vk.DebugReportPerformanceWarningBit, logrus.WarnLevel},
		{vk.DebugReportInformationBit, logrus.DebugLevel},
		{vk.DebugReportDebugBit, logrus.DebugLevel},
		{0, logrus.DebugLevel},
	}
	for _, c := range cases {
		if x := debugLevel(vk.DebugReportFlags(c.flags)); x != c.want {
			t.Errorf("debugLevel(%#x):\nhave %v\nwant %v", c.flags, x, c.want)
		}
	}
}

func TestDebugReport(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	driver.SetLogger(l)
	defer driver.SetLogger(nil)

	var d Driver
	res := d.debugReport(vk.DebugReportFlags(vk.DebugReportWarningBit), 0, 0, 0, 42, "Validation", "bad usage", nil)
	assert.Equal(t, vk.Bool32(vk.False), res)
	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "bad usage")
	assert.Contains(t, out, "layer=Validation")
	assert.Contains(t, out, "code=42")
}

func TestTimeoutNS(t *testing.T) {
	assert.Equal(t, uint64(vk.MaxUint64), timeoutNS(driver.NoTimeout))
	assert.Equal(t, uint64(0), timeoutNS(0))
	assert.Equal(t, uint64(1e9), timeoutNS(time.Second))
}

func TestRateDevice(t *testing.T) {
	gfx := vk.QueueFlags(vk.QueueGraphicsBit)
	xfer := vk.QueueFlags(vk.QueueTransferBit)
	exts := []string{extSwapchainS}

	cases := []struct {
		typ    vk.PhysicalDeviceType
		fams   []vk.QueueFlags
		exts   []string
		weight int
		family int
	}{
		{vk.PhysicalDeviceTypeDiscreteGpu, []vk.QueueFlags{gfx}, exts, 3, 0},
		{vk.PhysicalDeviceTypeIntegratedGpu, []vk.QueueFlags{xfer, gfx}, exts, 2, 1},
		{vk.PhysicalDeviceTypeCpu, []vk.QueueFlags{gfx | xfer}, exts, 1, 0},
		{vk.PhysicalDeviceTypeDiscreteGpu, []vk.QueueFlags{xfer}, exts, 0, -1},
		{vk.PhysicalDeviceTypeDiscreteGpu, []vk.QueueFlags{gfx}, nil, 0, -1},
	}
	for i, c := range cases {
		w, f := rateDevice(c.typ, c.fams, c.exts)
		assert.Equal(t, c.weight, w, "case %d: weight", i)
		assert.Equal(t, c.family, f, "case %d: family", i)
	}
}

func TestPortabilityExts(t *testing.T) {
	exts, flags := portabilityExts([]string{extSurfaceS, "VK_KHR_xcb_surface"})
	assert.Empty(t, exts)
	assert.Zero(t, flags)

	exts, flags = portabilityExts([]string{extSurfaceS, extPortabilityEnumS})
	assert.Equal(t, []string{extPortabilityEnumS}, exts)
	assert.Equal(t, instanceCreateEnumeratePortability, flags)
}

func TestMissingExts(t *testing.T) {
	have := []string{extSurfaceS, "VK_KHR_wayland_surface"}
	assert.Empty(t, missingExts([]string{extSurfaceS}, have))
	assert.Empty(t, missingExts(nil, have))
	assert.Equal(t, []string{"VK_KHR_xcb_surface"},
		missingExts([]string{extSurfaceS, "VK_KHR_xcb_surface"}, have))
}

func TestCStr(t *testing.T) {
	assert.Equal(t, "main\x00", cstr("main"))
	assert.Equal(t, "main\x00", cstr("main\x00"))
	assert.Equal(t, "\x00", cstr(""))
	assert.Nil(t, cstrs(nil))
	assert.Equal(t, []string{"a\x00", "b\x00"}, cstrs([]string{"a", "b\x00"}))
}

func TestSharingFamilies(t *testing.T) {
	assert.Equal(t, []uint32{0}, sharingFamilies(0, 0))
	assert.Equal(t, []uint32{2, 0}, sharingFamilies(2, 0))
}

func TestSPIRVWords(t *testing.T) {
	words := []uint32{spirvMagic, 0x00010000, 0, 8, 0, 0x00020011}

	le := make([]byte, len(words)*4)
	be := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(le[i*4:], w)
		binary.BigEndian.PutUint32(be[i*4:], w)
	}
	for _, data := range [][]byte{le, be} {
		x, err := spirvWords(data)
		require.NoError(t, err)
		assert.Equal(t, words, x)
	}

	for _, data := range [][]byte{
		nil,
		le[:16],
		le[:21],
		append([]byte{0xde, 0xad, 0xbe, 0xef}, le[4:]...),
	} {
		_, err := spirvWords(data)
		if !errors.Is(err, errInvalidShader) {
			t.Fatalf("spirvWords(%d bytes):\nhave %v\nwant %v", len(data), err, errInvalidShader)
		}
	}
}
