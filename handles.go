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

import "github.com/GhostKellz/nvvk/internal/vk"

// GPU handles are consumed by reference; the host owns their lifetime.
// Dispatchable handles are driver pointers, the rest are 64-bit opaque
// values, exactly as the driver hands them out.
type (
	Instance      = vk.Instance
	Device        = vk.Device
	Queue         = vk.Queue
	CommandBuffer = vk.CommandBuffer

	Swapchain = vk.SwapchainKHR
	Semaphore = vk.Semaphore
	Image     = vk.Image
	ImageView = vk.ImageView
	Buffer    = vk.Buffer

	// Proc is a raw driver entry point, e.g. the host's
	// vkGetDeviceProcAddr.
	Proc = vk.Proc
)

// Rect2D is a region of interest in pixels.
type Rect2D = vk.Rect2D
