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
	"sync"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// SafeLowLatencyContext serializes every LowLatencyContext operation under
// one mutex. Same surface, exclusive lock.
type SafeLowLatencyContext struct {
	mu  sync.Mutex
	ctx *LowLatencyContext
}

func NewSafeLowLatencyContext(dispatch *DeviceDispatch, swapchain vk.SwapchainKHR) *SafeLowLatencyContext {
	ctx := NewLowLatencyContext(dispatch, swapchain)
	if ctx == nil {
		return nil
	}
	return &SafeLowLatencyContext{ctx: ctx}
}

func (s *SafeLowLatencyContext) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.Destroy()
}

func (s *SafeLowLatencyContext) IsSupported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.IsSupported()
}

func (s *SafeLowLatencyContext) SetMode(mode ModeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.SetMode(mode)
}

func (s *SafeLowLatencyContext) Enable(boost bool, minIntervalUs uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Enable(boost, minIntervalUs)
}

func (s *SafeLowLatencyContext) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Disable()
}

func (s *SafeLowLatencyContext) Mode() ModeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Mode()
}

func (s *SafeLowLatencyContext) Sleep(semaphore vk.Semaphore, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Sleep(semaphore, value)
}

func (s *SafeLowLatencyContext) SetMarker(marker Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.SetMarker(marker)
}

func (s *SafeLowLatencyContext) BeginFrame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.BeginFrame()
}

func (s *SafeLowLatencyContext) EndSimulation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.EndSimulation()
}

func (s *SafeLowLatencyContext) BeginRenderSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.BeginRenderSubmit()
}

func (s *SafeLowLatencyContext) EndRenderSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.EndRenderSubmit()
}

func (s *SafeLowLatencyContext) BeginPresent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.BeginPresent()
}

func (s *SafeLowLatencyContext) EndPresent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.EndPresent()
}

func (s *SafeLowLatencyContext) MarkInputSample() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.MarkInputSample()
}

func (s *SafeLowLatencyContext) TriggerFlash() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.TriggerFlash()
}

func (s *SafeLowLatencyContext) CurrentFrameID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.CurrentFrameID()
}

func (s *SafeLowLatencyContext) GetTimings(max uint32) []FrameTimings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.GetTimings(max)
}
