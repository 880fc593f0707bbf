/*
Copyright 2025 The nvvk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package nvvk

import (
	"goarrg.com/debug"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// Availability and parameter errors.
var (
	ErrExtensionNotPresent = debug.Errorf("extension not present")
	ErrInvalidHandle       = debug.Errorf("invalid handle")
	ErrNotInitialized      = debug.Errorf("not initialized")
	ErrInsufficientFrames  = debug.Errorf("insufficient frame history")
)

// Driver errors.
var (
	ErrDeviceLost           = debug.Errorf("device lost")
	ErrOutOfHostMemory      = debug.Errorf("out of host memory")
	ErrOutOfDeviceMemory    = debug.Errorf("out of device memory")
	ErrInitializationFailed = debug.Errorf("initialization failed")
	ErrMemoryMapFailed      = debug.Errorf("memory map failed")
	ErrFormatNotSupported   = debug.Errorf("format not supported")
	ErrFragmentedPool       = debug.Errorf("fragmented pool")
	ErrSurfaceLost          = debug.Errorf("surface lost")
	ErrNativeWindowInUse    = debug.Errorf("native window in use")
	ErrOutOfDate            = debug.Errorf("swapchain out of date")
	ErrUnknown              = debug.Errorf("unknown driver error")
)

// Loader and parse errors.
var (
	ErrLoader           = debug.Errorf("vulkan runtime not found")
	ErrFunctionNotFound = debug.Errorf("entry point not found")
	ErrParse            = debug.Errorf("malformed driver identity string")
)

// vkCheck translates a driver VkResult into one of the error sentinels,
// nil on success.
func vkCheck(r vk.Result) error {
	switch r {
	case vk.SUCCESS, vk.NOT_READY, vk.TIMEOUT, vk.INCOMPLETE:
		return nil
	case vk.ERROR_DEVICE_LOST:
		return ErrDeviceLost
	case vk.ERROR_OUT_OF_HOST_MEMORY:
		return ErrOutOfHostMemory
	case vk.ERROR_OUT_OF_DEVICE_MEMORY:
		return ErrOutOfDeviceMemory
	case vk.ERROR_INITIALIZATION_FAILED:
		return ErrInitializationFailed
	case vk.ERROR_MEMORY_MAP_FAILED:
		return ErrMemoryMapFailed
	case vk.ERROR_EXTENSION_NOT_PRESENT:
		return ErrExtensionNotPresent
	case vk.ERROR_FORMAT_NOT_SUPPORTED:
		return ErrFormatNotSupported
	case vk.ERROR_FRAGMENTED_POOL:
		return ErrFragmentedPool
	case vk.ERROR_SURFACE_LOST_KHR:
		return ErrSurfaceLost
	case vk.ERROR_NATIVE_WINDOW_IN_USE:
		return ErrNativeWindowInUse
	case vk.ERROR_OUT_OF_DATE_KHR:
		return ErrOutOfDate
	default:
		logger.WPrintf("unhandled VkResult %d", r)
		return ErrUnknown
	}
}
