// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/sirupsen/logrus"
)

// Messages reported by validation layers.
const debugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit |
	vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit |
	vk.DebugReportInformationBit)

// initDebugReport installs a debug report callback that
// forwards validation messages to the logger.
// Failure is not fatal: messages then go wherever the
// layer sends them by default.
func (d *Driver) initDebugReport() {
	info := &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: d.debugReport,
	}
	var dbg vk.DebugReportCallback
	if err := checkResult(vk.CreateDebugReportCallback(d.inst, info, nil, &dbg)); err != nil {
		d.log().WithError(err).Warn("debug report callback not installed")
		return
	}
	d.dbg = dbg
}

// debugReport implements vk.DebugReportCallbackFunc.
func (d *Driver) debugReport(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, object uint64,
	_ uint64, code int32, layer string, msg string, _ unsafe.Pointer) vk.Bool32 {

	d.log().WithFields(logrus.Fields{
		"layer":  layer,
		"code":   code,
		"object": object,
	}).Log(debugLevel(flags), msg)
	// The call that triggered the message must not be
	// aborted.
	return vk.False
}

// debugLevel returns the log level of a debug report
// message with the given flags.
func debugLevel(flags vk.DebugReportFlags) logrus.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return logrus.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return logrus.WarnLevel
	default:
		return logrus.DebugLevel
	}
}
