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
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// DeviceDispatch is the per-device record of resolved extension entry
// points. A slot is either 0 or callable for the lifetime of the owning
// device; feature predicates are pure conjunctions over the slots the
// extension surface needs. Callers go through the typed wrappers below,
// which never call through 0: result-returning wrappers report
// ErrExtensionNotPresent and recording wrappers do nothing.
type DeviceDispatch struct {
	device vk.Device

	// VK_NV_low_latency2
	setLatencySleepModeNV vk.Proc
	latencySleepNV        vk.Proc
	setLatencyMarkerNV    vk.Proc
	getLatencyTimingsNV   vk.Proc

	// VK_NV_device_diagnostic_checkpoints
	cmdSetCheckpointNV       vk.Proc
	getQueueCheckpointDataNV vk.Proc

	// VK_NV_optical_flow
	createOpticalFlowSessionNV    vk.Proc
	destroyOpticalFlowSessionNV   vk.Proc
	bindOpticalFlowSessionImageNV vk.Proc
	cmdOpticalFlowExecuteNV       vk.Proc

	// Core entry points the synthesis stage records and creates through.
	createShaderModule         vk.Proc
	destroyShaderModule        vk.Proc
	createDescriptorSetLayout  vk.Proc
	destroyDescriptorSetLayout vk.Proc
	createPipelineLayout       vk.Proc
	destroyPipelineLayout      vk.Proc
	createDescriptorPool       vk.Proc
	destroyDescriptorPool      vk.Proc
	allocateDescriptorSets     vk.Proc
	updateDescriptorSets       vk.Proc
	createComputePipelines     vk.Proc
	destroyPipeline            vk.Proc
	cmdBindPipeline            vk.Proc
	cmdBindDescriptorSets      vk.Proc
	cmdPushConstants           vk.Proc
	cmdDispatch                vk.Proc
	cmdPipelineBarrier2        vk.Proc

	// Thin forwarding surfaces. Presence-gated, nothing layered on top.
	cmdTraceRaysKHR       vk.Proc
	cmdDrawMeshTasksEXT   vk.Proc
	cmdBuildMicromapsEXT  vk.Proc
	cmdDecompressMemoryNV vk.Proc
	cmdCudaLaunchKernelNV vk.Proc
}

// NewDeviceDispatch resolves the fixed entry-point list through the
// host-supplied vkGetDeviceProcAddr. Missing names stay 0.
func NewDeviceDispatch(device vk.Device, getDeviceProcAddr vk.Proc) *DeviceDispatch {
	d := &DeviceDispatch{device: device}
	if getDeviceProcAddr == 0 {
		return d
	}

	resolve := func(name string) vk.Proc {
		cName := append([]byte(name), 0)
		proc, _, _ := purego.SyscallN(getDeviceProcAddr,
			uintptr(device), uintptr(unsafe.Pointer(&cName[0])))
		runtime.KeepAlive(cName)
		if proc == 0 {
			logger.VPrintf("%s not present", name)
		}
		return proc
	}

	d.setLatencySleepModeNV = resolve("vkSetLatencySleepModeNV")
	d.latencySleepNV = resolve("vkLatencySleepNV")
	d.setLatencyMarkerNV = resolve("vkSetLatencyMarkerNV")
	d.getLatencyTimingsNV = resolve("vkGetLatencyTimingsNV")

	d.cmdSetCheckpointNV = resolve("vkCmdSetCheckpointNV")
	d.getQueueCheckpointDataNV = resolve("vkGetQueueCheckpointDataNV")

	d.createOpticalFlowSessionNV = resolve("vkCreateOpticalFlowSessionNV")
	d.destroyOpticalFlowSessionNV = resolve("vkDestroyOpticalFlowSessionNV")
	d.bindOpticalFlowSessionImageNV = resolve("vkBindOpticalFlowSessionImageNV")
	d.cmdOpticalFlowExecuteNV = resolve("vkCmdOpticalFlowExecuteNV")

	d.createShaderModule = resolve("vkCreateShaderModule")
	d.destroyShaderModule = resolve("vkDestroyShaderModule")
	d.createDescriptorSetLayout = resolve("vkCreateDescriptorSetLayout")
	d.destroyDescriptorSetLayout = resolve("vkDestroyDescriptorSetLayout")
	d.createPipelineLayout = resolve("vkCreatePipelineLayout")
	d.destroyPipelineLayout = resolve("vkDestroyPipelineLayout")
	d.createDescriptorPool = resolve("vkCreateDescriptorPool")
	d.destroyDescriptorPool = resolve("vkDestroyDescriptorPool")
	d.allocateDescriptorSets = resolve("vkAllocateDescriptorSets")
	d.updateDescriptorSets = resolve("vkUpdateDescriptorSets")
	d.createComputePipelines = resolve("vkCreateComputePipelines")
	d.destroyPipeline = resolve("vkDestroyPipeline")
	d.cmdBindPipeline = resolve("vkCmdBindPipeline")
	d.cmdBindDescriptorSets = resolve("vkCmdBindDescriptorSets")
	d.cmdPushConstants = resolve("vkCmdPushConstants")
	d.cmdDispatch = resolve("vkCmdDispatch")
	d.cmdPipelineBarrier2 = resolve("vkCmdPipelineBarrier2")

	d.cmdTraceRaysKHR = resolve("vkCmdTraceRaysKHR")
	d.cmdDrawMeshTasksEXT = resolve("vkCmdDrawMeshTasksEXT")
	d.cmdBuildMicromapsEXT = resolve("vkCmdBuildMicromapsEXT")
	d.cmdDecompressMemoryNV = resolve("vkCmdDecompressMemoryNV")
	d.cmdCudaLaunchKernelNV = resolve("vkCmdCudaLaunchKernelNV")

	return d
}

func (d *DeviceDispatch) Device() vk.Device { return d.device }

// Feature predicates.

func (d *DeviceDispatch) HasLowLatency2() bool {
	return d.setLatencySleepModeNV != 0 && d.latencySleepNV != 0 &&
		d.setLatencyMarkerNV != 0 && d.getLatencyTimingsNV != 0
}

func (d *DeviceDispatch) HasDiagnosticCheckpoints() bool {
	return d.cmdSetCheckpointNV != 0 && d.getQueueCheckpointDataNV != 0
}

func (d *DeviceDispatch) HasOpticalFlow() bool {
	return d.createOpticalFlowSessionNV != 0 && d.destroyOpticalFlowSessionNV != 0 &&
		d.bindOpticalFlowSessionImageNV != 0 && d.cmdOpticalFlowExecuteNV != 0
}

// hasCompute gates the synthesis stage: object creation plus recording.
func (d *DeviceDispatch) hasCompute() bool {
	return d.createShaderModule != 0 && d.createDescriptorSetLayout != 0 &&
		d.createPipelineLayout != 0 && d.createDescriptorPool != 0 &&
		d.allocateDescriptorSets != 0 && d.updateDescriptorSets != 0 &&
		d.createComputePipelines != 0 && d.cmdBindPipeline != 0 &&
		d.cmdBindDescriptorSets != 0 && d.cmdPushConstants != 0 &&
		d.cmdDispatch != 0
}

func (d *DeviceDispatch) HasRayTracing() bool          { return d.cmdTraceRaysKHR != 0 }
func (d *DeviceDispatch) HasMeshShading() bool         { return d.cmdDrawMeshTasksEXT != 0 }
func (d *DeviceDispatch) HasMicromaps() bool           { return d.cmdBuildMicromapsEXT != 0 }
func (d *DeviceDispatch) HasMemoryDecompression() bool { return d.cmdDecompressMemoryNV != 0 }
func (d *DeviceDispatch) HasCudaKernelLaunch() bool    { return d.cmdCudaLaunchKernelNV != 0 }

// Typed call wrappers. Recording wrappers are silent no-ops when the slot
// is absent so marker-style paths never fail; result-returning wrappers
// report ErrExtensionNotPresent.

func (d *DeviceDispatch) SetLatencySleepMode(swapchain vk.SwapchainKHR, info *vk.LatencySleepModeInfoNV) error {
	if d.setLatencySleepModeNV == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.setLatencySleepModeNV,
		uintptr(d.device), uintptr(swapchain), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) LatencySleep(swapchain vk.SwapchainKHR, info *vk.LatencySleepInfoNV) error {
	if d.latencySleepNV == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.latencySleepNV,
		uintptr(d.device), uintptr(swapchain), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) SetLatencyMarker(swapchain vk.SwapchainKHR, info *vk.SetLatencyMarkerInfoNV) {
	if d.setLatencyMarkerNV == 0 {
		return
	}
	purego.SyscallN(d.setLatencyMarkerNV,
		uintptr(d.device), uintptr(swapchain), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
}

func (d *DeviceDispatch) GetLatencyTimings(swapchain vk.SwapchainKHR, info *vk.GetLatencyMarkerInfoNV) {
	if d.getLatencyTimingsNV == 0 {
		return
	}
	purego.SyscallN(d.getLatencyTimingsNV,
		uintptr(d.device), uintptr(swapchain), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
}

// marker is an opaque machine word, not a Go pointer.
func (d *DeviceDispatch) CmdSetCheckpoint(cmd vk.CommandBuffer, marker uintptr) {
	if d.cmdSetCheckpointNV == 0 {
		return
	}
	purego.SyscallN(d.cmdSetCheckpointNV, uintptr(cmd), marker)
}

func (d *DeviceDispatch) GetQueueCheckpointData(queue vk.Queue, count *uint32, data *vk.CheckpointDataNV) {
	if d.getQueueCheckpointDataNV == 0 {
		*count = 0
		return
	}
	purego.SyscallN(d.getQueueCheckpointDataNV,
		uintptr(queue), uintptr(unsafe.Pointer(count)), uintptr(unsafe.Pointer(data)))
	runtime.KeepAlive(count)
	runtime.KeepAlive(data)
}

func (d *DeviceDispatch) CreateOpticalFlowSession(info *vk.OpticalFlowSessionCreateInfoNV, session *vk.OpticalFlowSessionNV) error {
	if d.createOpticalFlowSessionNV == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createOpticalFlowSessionNV,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(session)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(session)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyOpticalFlowSession(session vk.OpticalFlowSessionNV) {
	if d.destroyOpticalFlowSessionNV == 0 {
		return
	}
	purego.SyscallN(d.destroyOpticalFlowSessionNV, uintptr(d.device), uintptr(session), 0)
}

func (d *DeviceDispatch) BindOpticalFlowSessionImage(session vk.OpticalFlowSessionNV,
	bindingPoint vk.OpticalFlowSessionBindingPointNV, view vk.ImageView, layout vk.ImageLayout,
) error {
	if d.bindOpticalFlowSessionImageNV == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.bindOpticalFlowSessionImageNV,
		uintptr(d.device), uintptr(session), uintptr(bindingPoint), uintptr(view), uintptr(layout))
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) CmdOpticalFlowExecute(cmd vk.CommandBuffer, session vk.OpticalFlowSessionNV, info *vk.OpticalFlowExecuteInfoNV) error {
	if d.cmdOpticalFlowExecuteNV == 0 {
		return ErrExtensionNotPresent
	}
	purego.SyscallN(d.cmdOpticalFlowExecuteNV,
		uintptr(cmd), uintptr(session), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
	return nil
}

func (d *DeviceDispatch) CreateShaderModule(info *vk.ShaderModuleCreateInfo, module *vk.ShaderModule) error {
	if d.createShaderModule == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createShaderModule,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(module)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(module)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyShaderModule(module vk.ShaderModule) {
	if d.destroyShaderModule == 0 || module == 0 {
		return
	}
	purego.SyscallN(d.destroyShaderModule, uintptr(d.device), uintptr(module), 0)
}

func (d *DeviceDispatch) CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo, layout *vk.DescriptorSetLayout) error {
	if d.createDescriptorSetLayout == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createDescriptorSetLayout,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(layout)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(layout)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	if d.destroyDescriptorSetLayout == 0 || layout == 0 {
		return
	}
	purego.SyscallN(d.destroyDescriptorSetLayout, uintptr(d.device), uintptr(layout), 0)
}

func (d *DeviceDispatch) CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo, layout *vk.PipelineLayout) error {
	if d.createPipelineLayout == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createPipelineLayout,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(layout)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(layout)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyPipelineLayout(layout vk.PipelineLayout) {
	if d.destroyPipelineLayout == 0 || layout == 0 {
		return
	}
	purego.SyscallN(d.destroyPipelineLayout, uintptr(d.device), uintptr(layout), 0)
}

func (d *DeviceDispatch) CreateDescriptorPool(info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) error {
	if d.createDescriptorPool == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createDescriptorPool,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(pool)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(pool)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyDescriptorPool(pool vk.DescriptorPool) {
	if d.destroyDescriptorPool == 0 || pool == 0 {
		return
	}
	purego.SyscallN(d.destroyDescriptorPool, uintptr(d.device), uintptr(pool), 0)
}

func (d *DeviceDispatch) AllocateDescriptorSets(info *vk.DescriptorSetAllocateInfo, sets *vk.DescriptorSet) error {
	if d.allocateDescriptorSets == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.allocateDescriptorSets,
		uintptr(d.device), uintptr(unsafe.Pointer(info)), uintptr(unsafe.Pointer(sets)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(sets)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) UpdateDescriptorSets(writes []vk.WriteDescriptorSet) {
	if d.updateDescriptorSets == 0 || len(writes) == 0 {
		return
	}
	purego.SyscallN(d.updateDescriptorSets,
		uintptr(d.device), uintptr(len(writes)), uintptr(unsafe.Pointer(&writes[0])), 0, 0)
	runtime.KeepAlive(writes)
}

func (d *DeviceDispatch) CreateComputePipeline(info *vk.ComputePipelineCreateInfo, pipeline *vk.Pipeline) error {
	if d.createComputePipelines == 0 {
		return ErrExtensionNotPresent
	}
	r, _, _ := purego.SyscallN(d.createComputePipelines,
		uintptr(d.device), 0, 1, uintptr(unsafe.Pointer(info)), 0, uintptr(unsafe.Pointer(pipeline)))
	runtime.KeepAlive(info)
	runtime.KeepAlive(pipeline)
	return vkCheck(vk.Result(r))
}

func (d *DeviceDispatch) DestroyPipeline(pipeline vk.Pipeline) {
	if d.destroyPipeline == 0 || pipeline == 0 {
		return
	}
	purego.SyscallN(d.destroyPipeline, uintptr(d.device), uintptr(pipeline), 0)
}

func (d *DeviceDispatch) CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	if d.cmdBindPipeline == 0 {
		return
	}
	purego.SyscallN(d.cmdBindPipeline, uintptr(cmd), uintptr(bindPoint), uintptr(pipeline))
}

func (d *DeviceDispatch) CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint,
	layout vk.PipelineLayout, set vk.DescriptorSet,
) {
	if d.cmdBindDescriptorSets == 0 {
		return
	}
	sets := [1]vk.DescriptorSet{set}
	purego.SyscallN(d.cmdBindDescriptorSets,
		uintptr(cmd), uintptr(bindPoint), uintptr(layout), 0, 1, uintptr(unsafe.Pointer(&sets[0])), 0, 0)
	runtime.KeepAlive(&sets)
}

func (d *DeviceDispatch) CmdPushConstants(cmd vk.CommandBuffer, layout vk.PipelineLayout,
	stages vk.ShaderStageFlags, data unsafe.Pointer, size uint32,
) {
	if d.cmdPushConstants == 0 {
		return
	}
	purego.SyscallN(d.cmdPushConstants,
		uintptr(cmd), uintptr(layout), uintptr(stages), 0, uintptr(size), uintptr(data))
}

func (d *DeviceDispatch) CmdDispatch(cmd vk.CommandBuffer, x, y, z uint32) {
	if d.cmdDispatch == 0 {
		return
	}
	purego.SyscallN(d.cmdDispatch, uintptr(cmd), uintptr(x), uintptr(y), uintptr(z))
}

func (d *DeviceDispatch) CmdPipelineBarrier2(cmd vk.CommandBuffer, info *vk.DependencyInfo) {
	if d.cmdPipelineBarrier2 == 0 {
		return
	}
	purego.SyscallN(d.cmdPipelineBarrier2, uintptr(cmd), uintptr(unsafe.Pointer(info)))
	runtime.KeepAlive(info)
}
