// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"slices"
	"strings"

	vk "github.com/goki/vulkan"
)

const (
	// Instance extensions.
	extSurface, extSurfaceS                 = iota, "VK_KHR_surface"
	extPortabilityEnum, extPortabilityEnumS = iota, "VK_KHR_portability_enumeration"
	extDebugReport, extDebugReportS         = iota, "VK_EXT_debug_report"

	// Device extensions.
	extSwapchain, extSwapchainS                 = iota, "VK_KHR_swapchain"
	extPortabilitySubset, extPortabilitySubsetS = iota, "VK_KHR_portability_subset"

	extN = iota
)

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
const instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x1

// instanceExts returns a list containing the names of all
// instance extensions advertised by the Vulkan
// implementation.
func instanceExts() ([]string, error) {
	var n uint32
	if err := checkResult(vk.EnumerateInstanceExtensionProperties("", &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	props := make([]vk.ExtensionProperties, n)
	if err := checkResult(vk.EnumerateInstanceExtensionProperties("", &n, props)); err != nil {
		return nil, err
	}
	return extNames(props[:n]), nil
}

// deviceExts returns a list containing the names of all
// device extensions advertised by the Vulkan
// implementation.
func deviceExts(pdev vk.PhysicalDevice) ([]string, error) {
	if pdev == nil {
		panic("vk.deviceExts called with nil physical device")
	}
	var n uint32
	if err := checkResult(vk.EnumerateDeviceExtensionProperties(pdev, "", &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	props := make([]vk.ExtensionProperties, n)
	if err := checkResult(vk.EnumerateDeviceExtensionProperties(pdev, "", &n, props)); err != nil {
		return nil, err
	}
	return extNames(props[:n]), nil
}

// instanceLayers returns a list containing the names of
// all instance layers that are available.
func instanceLayers() ([]string, error) {
	var n uint32
	if err := checkResult(vk.EnumerateInstanceLayerProperties(&n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	props := make([]vk.LayerProperties, n)
	if err := checkResult(vk.EnumerateInstanceLayerProperties(&n, props)); err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range names {
		props[i].Deref()
		names[i] = vk.ToString(props[i].LayerName[:])
	}
	return names, nil
}

func extNames(props []vk.ExtensionProperties) []string {
	names := make([]string, len(props))
	for i := range props {
		props[i].Deref()
		names[i] = vk.ToString(props[i].ExtensionName[:])
	}
	return names
}

// portabilityExts returns the instance extensions and
// creation flags needed to enumerate portability devices,
// given the available extensions.
// Both are empty when the implementation does not
// advertise VK_KHR_portability_enumeration.
func portabilityExts(avail []string) ([]string, vk.InstanceCreateFlags) {
	if !hasName(avail, extPortabilityEnumS) {
		return nil, 0
	}
	return []string{extPortabilityEnumS}, instanceCreateEnumeratePortability
}

// missingExts returns the names in want that are not
// present in have.
func missingExts(want, have []string) (miss []string) {
	for _, w := range want {
		if !hasName(have, w) {
			miss = append(miss, w)
		}
	}
	return
}

func hasName(names []string, name string) bool {
	return slices.Contains(names, name)
}

// cstr returns s terminated by a null byte.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// cstrs calls cstr on every element of s.
func cstrs(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	cs := make([]string, len(s))
	for i := range s {
		cs[i] = cstr(s[i])
	}
	return cs
}
