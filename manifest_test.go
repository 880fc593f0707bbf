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
	"testing"
)

func TestLayerManifest_Shape(t *testing.T) {
	text, err := NewLayerManifest().MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(text, &doc); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}

	if got := doc["file_format_version"]; got != "1.0.0" {
		t.Errorf("file_format_version = %v", got)
	}
	layer, ok := doc["layer"].(map[string]any)
	if !ok {
		t.Fatal("manifest has no layer object")
	}
	if got := layer["name"]; got != LayerName {
		t.Errorf("layer name = %v", got)
	}
	if got := layer["type"]; got != "GLOBAL" {
		t.Errorf("layer type = %v", got)
	}
	if got := layer["api_version"]; got != "1.3.0" {
		t.Errorf("api_version = %v", got)
	}

	functions, ok := layer["functions"].(map[string]any)
	if !ok {
		t.Fatal("layer has no functions object")
	}
	if got := functions["vkGetInstanceProcAddr"]; got != LayerGetInstanceProcAddrName {
		t.Errorf("vkGetInstanceProcAddr = %v", got)
	}
	if got := functions["vkGetDeviceProcAddr"]; got != LayerGetDeviceProcAddrName {
		t.Errorf("vkGetDeviceProcAddr = %v", got)
	}

	for _, key := range []string{"instance_extensions", "device_extensions"} {
		if list, ok := layer[key].([]any); !ok || len(list) != 0 {
			t.Errorf("%s = %v, want empty list", key, layer[key])
		}
	}

	instanceName, deviceName := LayerEntryPointNames()
	if instanceName != LayerGetInstanceProcAddrName || deviceName != LayerGetDeviceProcAddrName {
		t.Error("LayerEntryPointNames() disagrees with the manifest constants")
	}
}
