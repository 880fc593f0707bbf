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
	"encoding/json"
	"fmt"
)

// Names the present interception layer registers under.
const (
	LayerName                    = "VK_LAYER_NVVK_frame_injection"
	LayerLibraryPath             = "libnvvk_layer.so"
	LayerGetInstanceProcAddrName = "nvvk_layer_get_instance_proc_addr"
	LayerGetDeviceProcAddrName   = "nvvk_layer_get_device_proc_addr"
)

// LayerEntryPointNames are the exported symbols the Vulkan loader calls
// into the interception layer through.
func LayerEntryPointNames() (instanceProcAddr, deviceProcAddr string) {
	return LayerGetInstanceProcAddrName, LayerGetDeviceProcAddrName
}

type layerFunctions struct {
	GetInstanceProcAddr string `json:"vkGetInstanceProcAddr"`
	GetDeviceProcAddr   string `json:"vkGetDeviceProcAddr"`
}

type layerDescription struct {
	Name                  string         `json:"name"`
	Type                  string         `json:"type"`
	LibraryPath           string         `json:"library_path"`
	APIVersion            string         `json:"api_version"`
	ImplementationVersion string         `json:"implementation_version"`
	Description           string         `json:"description"`
	Functions             layerFunctions `json:"functions"`
	InstanceExtensions    []string       `json:"instance_extensions"`
	DeviceExtensions      []string       `json:"device_extensions"`
}

// LayerManifest is the JSON document the Vulkan loader discovers the
// interception layer through.
type LayerManifest struct {
	FileFormatVersion string           `json:"file_format_version"`
	Layer             layerDescription `json:"layer"`
}

// NewLayerManifest builds the manifest for the current library version.
func NewLayerManifest() LayerManifest {
	return LayerManifest{
		FileFormatVersion: "1.0.0",
		Layer: layerDescription{
			Name:                  LayerName,
			Type:                  "GLOBAL",
			LibraryPath:           LayerLibraryPath,
			APIVersion:            "1.3.0",
			ImplementationVersion: "1",
			Description: fmt.Sprintf(
				"nvvk %d.%d.%d frame generation present interception",
				VersionMajor, VersionMinor, VersionPatch),
			Functions: layerFunctions{
				GetInstanceProcAddr: LayerGetInstanceProcAddrName,
				GetDeviceProcAddr:   LayerGetDeviceProcAddrName,
			},
			InstanceExtensions: []string{},
			DeviceExtensions:   []string{},
		},
	}
}

// MarshalText renders the manifest as the loader expects it on disk.
func (m LayerManifest) MarshalText() ([]byte, error) {
	type rawManifest LayerManifest
	return json.MarshalIndent(rawManifest(m), "", "    ")
}
