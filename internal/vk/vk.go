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

// Package vk holds the subset of Vulkan handle types, enumerant values and
// struct layouts that nvvk calls through. Values are transcribed from vk.xml;
// struct field order and alignment match the C declarations so instances can
// be passed to the driver by pointer.
package vk

import "unsafe"

// Dispatchable handles are driver pointers, non-dispatchable handles are
// 64-bit opaque values. Both come from the host and are never owned here.
type (
	Instance      uintptr
	Device        uintptr
	Queue         uintptr
	CommandBuffer uintptr

	SwapchainKHR         uint64
	Semaphore            uint64
	Image                uint64
	ImageView            uint64
	Buffer               uint64
	Sampler              uint64
	DeviceMemory         uint64
	ShaderModule         uint64
	Pipeline             uint64
	PipelineLayout       uint64
	PipelineCache        uint64
	DescriptorPool       uint64
	DescriptorSet        uint64
	DescriptorSetLayout  uint64
	OpticalFlowSessionNV uint64
)

type (
	Bool32        = uint32
	DeviceSize    = uint64
	StructureType = uint32
	Result        = int32
)

const (
	FALSE Bool32 = 0
	TRUE  Bool32 = 1
)

const WHOLE_SIZE = ^DeviceSize(0)

// PFN_vkVoidFunction and friends travel as raw pointers.
type Proc = uintptr

const (
	SUCCESS                     Result = 0
	NOT_READY                   Result = 1
	TIMEOUT                     Result = 2
	INCOMPLETE                  Result = 5
	ERROR_OUT_OF_HOST_MEMORY    Result = -1
	ERROR_OUT_OF_DEVICE_MEMORY  Result = -2
	ERROR_INITIALIZATION_FAILED Result = -3
	ERROR_DEVICE_LOST           Result = -4
	ERROR_MEMORY_MAP_FAILED     Result = -5
	ERROR_EXTENSION_NOT_PRESENT Result = -7
	ERROR_FORMAT_NOT_SUPPORTED  Result = -11
	ERROR_FRAGMENTED_POOL       Result = -12
	ERROR_UNKNOWN               Result = -13
	ERROR_SURFACE_LOST_KHR      Result = -1000000000
	ERROR_NATIVE_WINDOW_IN_USE  Result = -1000000001
	ERROR_OUT_OF_DATE_KHR       Result = -1000001004
)

const (
	STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO         StructureType = 16
	STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO StructureType = 18
	STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO      StructureType = 29
	STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO       StructureType = 30
	STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO StructureType = 32
	STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO       StructureType = 33
	STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO      StructureType = 34
	STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET              StructureType = 35

	STRUCTURE_TYPE_MEMORY_BARRIER_2       StructureType = 1000314000
	STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2 StructureType = 1000314002
	STRUCTURE_TYPE_DEPENDENCY_INFO        StructureType = 1000314003

	STRUCTURE_TYPE_CHECKPOINT_DATA_NV                    StructureType = 1000206000
	STRUCTURE_TYPE_DEVICE_DIAGNOSTICS_CONFIG_CREATE_INFO StructureType = 1000300000

	STRUCTURE_TYPE_OPTICAL_FLOW_SESSION_CREATE_INFO_NV StructureType = 1000464004
	STRUCTURE_TYPE_OPTICAL_FLOW_EXECUTE_INFO_NV        StructureType = 1000464005

	STRUCTURE_TYPE_LATENCY_SLEEP_MODE_INFO_NV       StructureType = 1000505000
	STRUCTURE_TYPE_LATENCY_SLEEP_INFO_NV            StructureType = 1000505001
	STRUCTURE_TYPE_SET_LATENCY_MARKER_INFO_NV       StructureType = 1000505002
	STRUCTURE_TYPE_GET_LATENCY_MARKER_INFO_NV       StructureType = 1000505003
	STRUCTURE_TYPE_LATENCY_TIMINGS_FRAME_REPORT_NV  StructureType = 1000505004
	STRUCTURE_TYPE_SWAPCHAIN_LATENCY_CREATE_INFO_NV StructureType = 1000505007
)

type Format = int32

const (
	FORMAT_UNDEFINED       Format = 0
	FORMAT_R8_UINT         Format = 13
	FORMAT_R8G8B8A8_UNORM  Format = 37
	FORMAT_B8G8R8A8_UNORM  Format = 44
	FORMAT_R16_UNORM       Format = 70
	FORMAT_R16G16_UNORM    Format = 77
	FORMAT_R16G16_S10_5_NV Format = 1000464000
)

type ImageLayout = int32

const (
	IMAGE_LAYOUT_UNDEFINED                ImageLayout = 0
	IMAGE_LAYOUT_GENERAL                  ImageLayout = 1
	IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL ImageLayout = 5
)

type (
	PipelineStageFlags  = uint32
	PipelineStageFlags2 = uint64
	AccessFlags2        = uint64
)

const (
	PIPELINE_STAGE_TOP_OF_PIPE_BIT     PipelineStageFlags = 0x00000001
	PIPELINE_STAGE_DRAW_INDIRECT_BIT   PipelineStageFlags = 0x00000002
	PIPELINE_STAGE_VERTEX_INPUT_BIT    PipelineStageFlags = 0x00000004
	PIPELINE_STAGE_VERTEX_SHADER_BIT   PipelineStageFlags = 0x00000008
	PIPELINE_STAGE_FRAGMENT_SHADER_BIT PipelineStageFlags = 0x00000080
	PIPELINE_STAGE_COMPUTE_SHADER_BIT  PipelineStageFlags = 0x00000800
	PIPELINE_STAGE_TRANSFER_BIT        PipelineStageFlags = 0x00001000
	PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT  PipelineStageFlags = 0x00002000
	PIPELINE_STAGE_ALL_GRAPHICS_BIT    PipelineStageFlags = 0x00008000
	PIPELINE_STAGE_ALL_COMMANDS_BIT    PipelineStageFlags = 0x00010000
)

const (
	PIPELINE_STAGE_2_COMPUTE_SHADER_BIT PipelineStageFlags2 = 0x00000800
	PIPELINE_STAGE_2_ALL_COMMANDS_BIT   PipelineStageFlags2 = 0x00010000

	ACCESS_2_SHADER_READ_BIT  AccessFlags2 = 0x00000020
	ACCESS_2_SHADER_WRITE_BIT AccessFlags2 = 0x00000040
)

type PipelineBindPoint = int32

const (
	PIPELINE_BIND_POINT_GRAPHICS PipelineBindPoint = 0
	PIPELINE_BIND_POINT_COMPUTE  PipelineBindPoint = 1
)

type DescriptorType = int32

const (
	DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER DescriptorType = 1
	DESCRIPTOR_TYPE_STORAGE_IMAGE          DescriptorType = 3
)

type ShaderStageFlags = uint32

const SHADER_STAGE_COMPUTE_BIT ShaderStageFlags = 0x00000020

// VK_NV_low_latency2
type LatencyMarkerNV = int32

const (
	LATENCY_MARKER_SIMULATION_START_NV               LatencyMarkerNV = 0
	LATENCY_MARKER_SIMULATION_END_NV                 LatencyMarkerNV = 1
	LATENCY_MARKER_RENDERSUBMIT_START_NV             LatencyMarkerNV = 2
	LATENCY_MARKER_RENDERSUBMIT_END_NV               LatencyMarkerNV = 3
	LATENCY_MARKER_PRESENT_START_NV                  LatencyMarkerNV = 4
	LATENCY_MARKER_PRESENT_END_NV                    LatencyMarkerNV = 5
	LATENCY_MARKER_INPUT_SAMPLE_NV                   LatencyMarkerNV = 6
	LATENCY_MARKER_TRIGGER_FLASH_NV                  LatencyMarkerNV = 7
	LATENCY_MARKER_OUT_OF_BAND_RENDERSUBMIT_START_NV LatencyMarkerNV = 8
	LATENCY_MARKER_OUT_OF_BAND_RENDERSUBMIT_END_NV   LatencyMarkerNV = 9
	LATENCY_MARKER_OUT_OF_BAND_PRESENT_START_NV      LatencyMarkerNV = 10
	LATENCY_MARKER_OUT_OF_BAND_PRESENT_END_NV        LatencyMarkerNV = 11
)

// VK_NV_optical_flow
type (
	OpticalFlowGridSizeFlagsNV       = uint32
	OpticalFlowPerformanceLevelNV    = int32
	OpticalFlowSessionBindingPointNV = int32
	OpticalFlowSessionCreateFlagsNV  = uint32
	OpticalFlowExecuteFlagsNV        = uint32
	OpticalFlowUsageFlagsNV          = uint32
)

const (
	OPTICAL_FLOW_GRID_SIZE_1X1_BIT_NV OpticalFlowGridSizeFlagsNV = 0x00000001
	OPTICAL_FLOW_GRID_SIZE_2X2_BIT_NV OpticalFlowGridSizeFlagsNV = 0x00000002
	OPTICAL_FLOW_GRID_SIZE_4X4_BIT_NV OpticalFlowGridSizeFlagsNV = 0x00000004
	OPTICAL_FLOW_GRID_SIZE_8X8_BIT_NV OpticalFlowGridSizeFlagsNV = 0x00000008

	OPTICAL_FLOW_PERFORMANCE_LEVEL_SLOW_NV   OpticalFlowPerformanceLevelNV = 1
	OPTICAL_FLOW_PERFORMANCE_LEVEL_MEDIUM_NV OpticalFlowPerformanceLevelNV = 2
	OPTICAL_FLOW_PERFORMANCE_LEVEL_FAST_NV   OpticalFlowPerformanceLevelNV = 3

	OPTICAL_FLOW_SESSION_BINDING_POINT_INPUT_NV                OpticalFlowSessionBindingPointNV = 1
	OPTICAL_FLOW_SESSION_BINDING_POINT_REFERENCE_NV            OpticalFlowSessionBindingPointNV = 2
	OPTICAL_FLOW_SESSION_BINDING_POINT_HINT_NV                 OpticalFlowSessionBindingPointNV = 3
	OPTICAL_FLOW_SESSION_BINDING_POINT_FLOW_VECTOR_NV          OpticalFlowSessionBindingPointNV = 4
	OPTICAL_FLOW_SESSION_BINDING_POINT_BACKWARD_FLOW_VECTOR_NV OpticalFlowSessionBindingPointNV = 5
	OPTICAL_FLOW_SESSION_BINDING_POINT_COST_NV                 OpticalFlowSessionBindingPointNV = 6
	OPTICAL_FLOW_SESSION_BINDING_POINT_BACKWARD_COST_NV        OpticalFlowSessionBindingPointNV = 7
	OPTICAL_FLOW_SESSION_BINDING_POINT_GLOBAL_FLOW_NV          OpticalFlowSessionBindingPointNV = 8

	OPTICAL_FLOW_SESSION_CREATE_ENABLE_HINT_BIT_NV        OpticalFlowSessionCreateFlagsNV = 0x00000001
	OPTICAL_FLOW_SESSION_CREATE_ENABLE_COST_BIT_NV        OpticalFlowSessionCreateFlagsNV = 0x00000002
	OPTICAL_FLOW_SESSION_CREATE_ENABLE_GLOBAL_FLOW_BIT_NV OpticalFlowSessionCreateFlagsNV = 0x00000004
	OPTICAL_FLOW_SESSION_CREATE_ALLOW_REGIONS_BIT_NV      OpticalFlowSessionCreateFlagsNV = 0x00000008
	OPTICAL_FLOW_SESSION_CREATE_BOTH_DIRECTIONS_BIT_NV    OpticalFlowSessionCreateFlagsNV = 0x00000010

	OPTICAL_FLOW_EXECUTE_DISABLE_TEMPORAL_HINTS_BIT_NV OpticalFlowExecuteFlagsNV = 0x00000001
)

// VK_NV_device_diagnostics_config
type DeviceDiagnosticsConfigFlagsNV = uint32

const (
	DEVICE_DIAGNOSTICS_CONFIG_ENABLE_SHADER_DEBUG_INFO_BIT_NV      DeviceDiagnosticsConfigFlagsNV = 0x00000001
	DEVICE_DIAGNOSTICS_CONFIG_ENABLE_RESOURCE_TRACKING_BIT_NV      DeviceDiagnosticsConfigFlagsNV = 0x00000002
	DEVICE_DIAGNOSTICS_CONFIG_ENABLE_AUTOMATIC_CHECKPOINTS_BIT_NV  DeviceDiagnosticsConfigFlagsNV = 0x00000004
	DEVICE_DIAGNOSTICS_CONFIG_ENABLE_SHADER_ERROR_REPORTING_BIT_NV DeviceDiagnosticsConfigFlagsNV = 0x00000008
)

type Offset2D struct {
	X int32
	Y int32
}

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type LatencySleepModeInfoNV struct {
	SType             StructureType
	PNext             unsafe.Pointer
	LowLatencyMode    Bool32
	LowLatencyBoost   Bool32
	MinimumIntervalUs uint32
}

type LatencySleepInfoNV struct {
	SType           StructureType
	PNext           unsafe.Pointer
	SignalSemaphore Semaphore
	Value           uint64
}

type SetLatencyMarkerInfoNV struct {
	SType     StructureType
	PNext     unsafe.Pointer
	PresentID uint64
	Marker    LatencyMarkerNV
}

type LatencyTimingsFrameReportNV struct {
	SType                    StructureType
	PNext                    unsafe.Pointer
	PresentID                uint64
	InputSampleTimeUs        uint64
	SimStartTimeUs           uint64
	SimEndTimeUs             uint64
	RenderSubmitStartTimeUs  uint64
	RenderSubmitEndTimeUs    uint64
	PresentStartTimeUs       uint64
	PresentEndTimeUs         uint64
	DriverStartTimeUs        uint64
	DriverEndTimeUs          uint64
	OsRenderQueueStartTimeUs uint64
	OsRenderQueueEndTimeUs   uint64
	GpuRenderStartTimeUs     uint64
	GpuRenderEndTimeUs       uint64
}

type GetLatencyMarkerInfoNV struct {
	SType       StructureType
	PNext       unsafe.Pointer
	TimingCount uint32
	PTimings    *LatencyTimingsFrameReportNV
}

type CheckpointDataNV struct {
	SType             StructureType
	PNext             unsafe.Pointer
	Stage             PipelineStageFlags
	PCheckpointMarker unsafe.Pointer
}

type DeviceDiagnosticsConfigCreateInfoNV struct {
	SType StructureType
	PNext unsafe.Pointer
	Flags DeviceDiagnosticsConfigFlagsNV
}

type OpticalFlowSessionCreateInfoNV struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Width            uint32
	Height           uint32
	ImageFormat      Format
	FlowVectorFormat Format
	CostFormat       Format
	OutputGridSize   OpticalFlowGridSizeFlagsNV
	HintGridSize     OpticalFlowGridSizeFlagsNV
	PerformanceLevel OpticalFlowPerformanceLevelNV
	Flags            OpticalFlowSessionCreateFlagsNV
}

type OpticalFlowExecuteInfoNV struct {
	SType       StructureType
	PNext       unsafe.Pointer
	Flags       OpticalFlowExecuteFlagsNV
	RegionCount uint32
	PRegions    *Rect2D
}

type ShaderModuleCreateInfo struct {
	SType    StructureType
	PNext    unsafe.Pointer
	Flags    uint32
	CodeSize uintptr
	PCode    *uint32
}

type DescriptorSetLayoutBinding struct {
	Binding            uint32
	DescriptorType     DescriptorType
	DescriptorCount    uint32
	StageFlags         ShaderStageFlags
	PImmutableSamplers *Sampler
}

type DescriptorSetLayoutCreateInfo struct {
	SType        StructureType
	PNext        unsafe.Pointer
	Flags        uint32
	BindingCount uint32
	PBindings    *DescriptorSetLayoutBinding
}

type PushConstantRange struct {
	StageFlags ShaderStageFlags
	Offset     uint32
	Size       uint32
}

type PipelineLayoutCreateInfo struct {
	SType                  StructureType
	PNext                  unsafe.Pointer
	Flags                  uint32
	SetLayoutCount         uint32
	PSetLayouts            *DescriptorSetLayout
	PushConstantRangeCount uint32
	PPushConstantRanges    *PushConstantRange
}

type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

type DescriptorPoolCreateInfo struct {
	SType         StructureType
	PNext         unsafe.Pointer
	Flags         uint32
	MaxSets       uint32
	PoolSizeCount uint32
	PPoolSizes    *DescriptorPoolSize
}

type DescriptorSetAllocateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	DescriptorPool     DescriptorPool
	DescriptorSetCount uint32
	PSetLayouts        *DescriptorSetLayout
}

type DescriptorImageInfo struct {
	Sampler     Sampler
	ImageView   ImageView
	ImageLayout ImageLayout
}

type WriteDescriptorSet struct {
	SType            StructureType
	PNext            unsafe.Pointer
	DstSet           DescriptorSet
	DstBinding       uint32
	DstArrayElement  uint32
	DescriptorCount  uint32
	DescriptorType   DescriptorType
	PImageInfo       *DescriptorImageInfo
	PBufferInfo      unsafe.Pointer
	PTexelBufferView unsafe.Pointer
}

type PipelineShaderStageCreateInfo struct {
	SType               StructureType
	PNext               unsafe.Pointer
	Flags               uint32
	Stage               ShaderStageFlags
	Module              ShaderModule
	PName               *byte
	PSpecializationInfo unsafe.Pointer
}

type ComputePipelineCreateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	Flags              uint32
	Stage              PipelineShaderStageCreateInfo
	Layout             PipelineLayout
	BasePipelineHandle Pipeline
	BasePipelineIndex  int32
}

type ImageSubresourceRange struct {
	AspectMask     uint32
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

const IMAGE_ASPECT_COLOR_BIT uint32 = 0x00000001

type ImageMemoryBarrier2 struct {
	SType               StructureType
	PNext               unsafe.Pointer
	SrcStageMask        PipelineStageFlags2
	SrcAccessMask       AccessFlags2
	DstStageMask        PipelineStageFlags2
	DstAccessMask       AccessFlags2
	OldLayout           ImageLayout
	NewLayout           ImageLayout
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               Image
	SubresourceRange    ImageSubresourceRange
}

type DependencyInfo struct {
	SType                    StructureType
	PNext                    unsafe.Pointer
	DependencyFlags          uint32
	MemoryBarrierCount       uint32
	PMemoryBarriers          unsafe.Pointer
	BufferMemoryBarrierCount uint32
	PBufferMemoryBarriers    unsafe.Pointer
	ImageMemoryBarrierCount  uint32
	PImageMemoryBarriers     *ImageMemoryBarrier2
}
