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
	"errors"
	"testing"
)

// A dispatch with no resolver resolves nothing; every extension surface
// must report absent and no wrapper may crash.
func testDispatch() *DeviceDispatch {
	return NewDeviceDispatch(0x1, 0)
}

func TestDeviceDispatch_AbsentExtensions(t *testing.T) {
	d := testDispatch()
	if d.HasLowLatency2() || d.HasDiagnosticCheckpoints() || d.HasOpticalFlow() {
		t.Fatal("unresolved dispatch reports extensions present")
	}
	if d.HasRayTracing() || d.HasMeshShading() || d.HasMicromaps() ||
		d.HasMemoryDecompression() || d.HasCudaKernelLaunch() {
		t.Fatal("unresolved dispatch reports forwarding surfaces present")
	}
}

// Scenario: a 60 FPS low latency loop on a machine without the
// extension. Marker stamping stays silent, enable reports not present,
// present IDs still advance.
func TestLowLatencyContext_FrameLoop(t *testing.T) {
	ctx := NewLowLatencyContext(testDispatch(), 0x1234)
	defer ctx.Destroy()

	if ctx.IsSupported() {
		t.Fatal("IsSupported() = true without driver entry points")
	}
	if err := ctx.Enable(false, 16_666); !errors.Is(err, ErrExtensionNotPresent) {
		t.Fatalf("Enable() = %v, want ErrExtensionNotPresent", err)
	}

	for want := uint64(1); want <= 3; want++ {
		if got := ctx.BeginFrame(); got != want {
			t.Fatalf("BeginFrame() = %d, want %d", got, want)
		}
		ctx.EndSimulation()
		ctx.BeginRenderSubmit()
		ctx.EndRenderSubmit()
		ctx.BeginPresent()
		ctx.EndPresent()
	}
	if got := ctx.CurrentFrameID(); got != 3 {
		t.Errorf("CurrentFrameID() = %d, want 3", got)
	}

	ctx.MarkInputSample()
	ctx.TriggerFlash()
	if got := ctx.GetTimings(64); got != nil {
		t.Errorf("GetTimings() = %v, want nil without extension", got)
	}
}

func TestLowLatencyContext_SleepUnsupported(t *testing.T) {
	ctx := NewLowLatencyContext(testDispatch(), 0x1234)
	defer ctx.Destroy()
	if err := ctx.Sleep(0x42, 7); !errors.Is(err, ErrExtensionNotPresent) {
		t.Errorf("Sleep() = %v, want ErrExtensionNotPresent", err)
	}
}

func TestSafeLowLatencyContext(t *testing.T) {
	ctx := NewSafeLowLatencyContext(testDispatch(), 0x1234)
	defer ctx.Destroy()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			ctx.BeginFrame()
			ctx.EndPresent()
		}
	}()
	for i := 0; i < 100; i++ {
		ctx.MarkInputSample()
		ctx.CurrentFrameID()
	}
	<-done

	if got := ctx.CurrentFrameID(); got != 100 {
		t.Errorf("CurrentFrameID() = %d, want 100", got)
	}
}

func TestFrameTimings_ZeroFieldLaw(t *testing.T) {
	tests := []struct {
		name string
		t    FrameTimings
		want uint64
	}{
		{
			"complete",
			FrameTimings{InputSampleTimeUs: 1000, PresentEndTimeUs: 6000},
			5000,
		},
		{
			"input not reported",
			FrameTimings{PresentEndTimeUs: 6000},
			0,
		},
		{
			"present not reported",
			FrameTimings{InputSampleTimeUs: 1000},
			0,
		},
		{
			"nothing reported",
			FrameTimings{},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.TotalLatencyUs(); got != tt.want {
				t.Errorf("TotalLatencyUs() = %d, want %d", got, tt.want)
			}
		})
	}

	ft := FrameTimings{
		SimStartTimeUs:       100,
		SimEndTimeUs:         400,
		GpuRenderStartTimeUs: 500,
		GpuRenderEndTimeUs:   900,
		DriverStartTimeUs:    0,
		DriverEndTimeUs:      900,
	}
	if got := ft.SimTimeUs(); got != 300 {
		t.Errorf("SimTimeUs() = %d, want 300", got)
	}
	if got := ft.GpuRenderTimeUs(); got != 400 {
		t.Errorf("GpuRenderTimeUs() = %d, want 400", got)
	}
	if got := ft.DriverTimeUs(); got != 0 {
		t.Errorf("DriverTimeUs() = %d, want 0 for unreported start", got)
	}
}
