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

// Package capi is the stable C surface over the low latency and
// diagnostics contexts, for DXVK, vkd3d-proton and other hosts that link
// the library as a shared object. Handles are opaque integers minted from
// a process-wide registry; Go pointers never cross the boundary.
//
// Frame generation stays a Go-level API: its pipeline works on
// caller-owned GPU images and shader words that the flat C initializer
// cannot carry.
package capi

/*
#include <stdint.h>
#include <stdbool.h>
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	nvvk "github.com/GhostKellz/nvvk"
	"github.com/GhostKellz/nvvk/internal/vk"
)

// Result codes, mirrored as plain integers.
const (
	resultSuccess       = 0
	resultNotSupported  = -1
	resultInvalidHandle = -2
	resultOutOfMemory   = -3
	resultDeviceLost    = -4
	resultUnknown       = -5
)

func resultFromError(err error) C.int32_t {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, nvvk.ErrExtensionNotPresent):
		return resultNotSupported
	case errors.Is(err, nvvk.ErrInvalidHandle):
		return resultInvalidHandle
	case errors.Is(err, nvvk.ErrOutOfHostMemory), errors.Is(err, nvvk.ErrOutOfDeviceMemory):
		return resultOutOfMemory
	case errors.Is(err, nvvk.ErrDeviceLost):
		return resultDeviceLost
	default:
		return resultUnknown
	}
}

// The process-wide registry backing handle blocks: allocate on init, free
// on destroy, never shared across processes.
var registry = struct {
	sync.Mutex
	next       uintptr
	lowLatency map[uintptr]*nvvk.LowLatencyContext
	diag       map[uintptr]*nvvk.DiagnosticsContext
}{
	next:       1,
	lowLatency: map[uintptr]*nvvk.LowLatencyContext{},
	diag:       map[uintptr]*nvvk.DiagnosticsContext{},
}

func newHandle() uintptr {
	h := registry.next
	registry.next++
	return h
}

func lowLatencyCtx(h C.uintptr_t) *nvvk.LowLatencyContext {
	registry.Lock()
	defer registry.Unlock()
	return registry.lowLatency[uintptr(h)]
}

func diagCtx(h C.uintptr_t) *nvvk.DiagnosticsContext {
	registry.Lock()
	defer registry.Unlock()
	return registry.diag[uintptr(h)]
}

// Extension name strings live as C memory for the lifetime of the
// library.
var (
	cLowLatencyExt  = C.CString(nvvk.ExtensionLowLatency2)
	cCheckpointsExt = C.CString(nvvk.ExtensionDiagnosticCheckpoints)
	cDiagConfigExt  = C.CString(nvvk.ExtensionDiagnosticsConfig)
	cOpticalFlowExt = C.CString(nvvk.ExtensionOpticalFlow)
)

//export nvvk_get_version
func nvvk_get_version() C.uint32_t {
	return C.uint32_t(nvvk.Version())
}

//export nvvk_is_nvidia_gpu
func nvvk_is_nvidia_gpu() C.bool {
	return C.bool(nvvk.IsNvidiaGPU())
}

//export nvvk_get_low_latency_extension_name
func nvvk_get_low_latency_extension_name() *C.char {
	return cLowLatencyExt
}

//export nvvk_get_diagnostic_checkpoints_extension_name
func nvvk_get_diagnostic_checkpoints_extension_name() *C.char {
	return cCheckpointsExt
}

//export nvvk_get_diagnostics_config_extension_name
func nvvk_get_diagnostics_config_extension_name() *C.char {
	return cDiagConfigExt
}

//export nvvk_get_optical_flow_extension_name
func nvvk_get_optical_flow_extension_name() *C.char {
	return cOpticalFlowExt
}

//export nvvk_low_latency_init
func nvvk_low_latency_init(device unsafe.Pointer, swapchain C.uint64_t, getDeviceProcAddr unsafe.Pointer) C.uintptr_t {
	if device == nil || getDeviceProcAddr == nil {
		return 0
	}
	dispatch := nvvk.NewDeviceDispatch(vk.Device(uintptr(device)), vk.Proc(uintptr(getDeviceProcAddr)))
	ctx := nvvk.NewLowLatencyContext(dispatch, vk.SwapchainKHR(swapchain))
	if ctx == nil {
		return 0
	}

	registry.Lock()
	defer registry.Unlock()
	h := newHandle()
	registry.lowLatency[h] = ctx
	return C.uintptr_t(h)
}

//export nvvk_low_latency_destroy
func nvvk_low_latency_destroy(h C.uintptr_t) {
	registry.Lock()
	ctx := registry.lowLatency[uintptr(h)]
	delete(registry.lowLatency, uintptr(h))
	registry.Unlock()
	if ctx != nil {
		ctx.Destroy()
	}
}

//export nvvk_low_latency_is_supported
func nvvk_low_latency_is_supported(h C.uintptr_t) C.bool {
	ctx := lowLatencyCtx(h)
	return C.bool(ctx != nil && ctx.IsSupported())
}

//export nvvk_low_latency_enable
func nvvk_low_latency_enable(h C.uintptr_t, boost C.bool, minIntervalUs C.uint32_t) C.int32_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil {
		return resultInvalidHandle
	}
	return resultFromError(ctx.Enable(bool(boost), uint32(minIntervalUs)))
}

//export nvvk_low_latency_disable
func nvvk_low_latency_disable(h C.uintptr_t) C.int32_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil {
		return resultInvalidHandle
	}
	return resultFromError(ctx.Disable())
}

//export nvvk_low_latency_sleep
func nvvk_low_latency_sleep(h C.uintptr_t, semaphore, value C.uint64_t) C.int32_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil {
		return resultInvalidHandle
	}
	return resultFromError(ctx.Sleep(vk.Semaphore(semaphore), uint64(value)))
}

//export nvvk_low_latency_set_marker
func nvvk_low_latency_set_marker(h C.uintptr_t, marker C.int32_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.SetMarker(nvvk.Marker(marker))
	}
}

//export nvvk_low_latency_begin_frame
func nvvk_low_latency_begin_frame(h C.uintptr_t) C.uint64_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil {
		return 0
	}
	return C.uint64_t(ctx.BeginFrame())
}

//export nvvk_low_latency_end_simulation
func nvvk_low_latency_end_simulation(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.EndSimulation()
	}
}

//export nvvk_low_latency_begin_render_submit
func nvvk_low_latency_begin_render_submit(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.BeginRenderSubmit()
	}
}

//export nvvk_low_latency_end_render_submit
func nvvk_low_latency_end_render_submit(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.EndRenderSubmit()
	}
}

//export nvvk_low_latency_begin_present
func nvvk_low_latency_begin_present(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.BeginPresent()
	}
}

//export nvvk_low_latency_end_present
func nvvk_low_latency_end_present(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.EndPresent()
	}
}

//export nvvk_low_latency_mark_input_sample
func nvvk_low_latency_mark_input_sample(h C.uintptr_t) {
	if ctx := lowLatencyCtx(h); ctx != nil {
		ctx.MarkInputSample()
	}
}

//export nvvk_low_latency_get_current_frame_id
func nvvk_low_latency_get_current_frame_id(h C.uintptr_t) C.uint64_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil {
		return 0
	}
	return C.uint64_t(ctx.CurrentFrameID())
}

//export nvvk_low_latency_get_timings
func nvvk_low_latency_get_timings(h C.uintptr_t, timings unsafe.Pointer, maxCount C.uint32_t) C.uint32_t {
	ctx := lowLatencyCtx(h)
	if ctx == nil || timings == nil || maxCount == 0 {
		return 0
	}
	got := ctx.GetTimings(uint32(maxCount))
	out := unsafe.Slice((*nvvk.FrameTimings)(timings), int(maxCount))
	n := copy(out, got)
	return C.uint32_t(n)
}

//export nvvk_diagnostics_init
func nvvk_diagnostics_init(device unsafe.Pointer, getDeviceProcAddr unsafe.Pointer) C.uintptr_t {
	if device == nil || getDeviceProcAddr == nil {
		return 0
	}
	dispatch := nvvk.NewDeviceDispatch(vk.Device(uintptr(device)), vk.Proc(uintptr(getDeviceProcAddr)))
	ctx := nvvk.NewDiagnosticsContext(dispatch)
	if ctx == nil {
		return 0
	}

	registry.Lock()
	defer registry.Unlock()
	h := newHandle()
	registry.diag[h] = ctx
	return C.uintptr_t(h)
}

//export nvvk_diagnostics_destroy
func nvvk_diagnostics_destroy(h C.uintptr_t) {
	registry.Lock()
	ctx := registry.diag[uintptr(h)]
	delete(registry.diag, uintptr(h))
	registry.Unlock()
	if ctx != nil {
		ctx.Destroy()
	}
}

//export nvvk_diagnostics_is_supported
func nvvk_diagnostics_is_supported(h C.uintptr_t) C.bool {
	ctx := diagCtx(h)
	return C.bool(ctx != nil && ctx.IsSupported())
}

//export nvvk_diagnostics_set_checkpoint
func nvvk_diagnostics_set_checkpoint(h C.uintptr_t, cmd unsafe.Pointer, marker unsafe.Pointer) {
	if ctx := diagCtx(h); ctx != nil && cmd != nil {
		ctx.SetCheckpoint(vk.CommandBuffer(uintptr(cmd)), uintptr(marker))
	}
}

//export nvvk_diagnostics_set_tagged_checkpoint
func nvvk_diagnostics_set_tagged_checkpoint(h C.uintptr_t, cmd unsafe.Pointer, tag C.uint32_t) {
	if ctx := diagCtx(h); ctx != nil && cmd != nil {
		ctx.SetTaggedCheckpoint(vk.CommandBuffer(uintptr(cmd)), nvvk.CheckpointTag(tag))
	}
}

//export nvvk_diagnostics_get_full_config_flags
func nvvk_diagnostics_get_full_config_flags() C.uint32_t {
	return C.uint32_t(nvvk.FullDiagnosticsConfig().Flags())
}

//export nvvk_diagnostics_get_minimal_config_flags
func nvvk_diagnostics_get_minimal_config_flags() C.uint32_t {
	return C.uint32_t(nvvk.MinimalDiagnosticsConfig().Flags())
}
