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

// Library version.
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

// Version returns the library version packed as (major<<16)|(minor<<8)|patch.
func Version() uint32 {
	return VersionMajor<<16 | VersionMinor<<8 | VersionPatch
}

// Extension names this library wraps.
const (
	ExtensionLowLatency2           = "VK_NV_low_latency2"
	ExtensionDiagnosticCheckpoints = "VK_NV_device_diagnostic_checkpoints"
	ExtensionDiagnosticsConfig     = "VK_NV_device_diagnostics_config"
	ExtensionOpticalFlow           = "VK_NV_optical_flow"
	ExtensionRayTracingPipeline    = "VK_KHR_ray_tracing_pipeline"
	ExtensionMeshShader            = "VK_EXT_mesh_shader"
	ExtensionDisplacementMicromap  = "VK_NV_displacement_micromap"
	ExtensionCudaKernelLaunch      = "VK_NV_cuda_kernel_launch"
	ExtensionMemoryDecompression   = "VK_NV_memory_decompression"
)
