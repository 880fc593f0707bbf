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
	"math"
	"testing"
	"unsafe"
)

func TestS10_5_RoundTrip(t *testing.T) {
	tests := []float32{0, 1, -1, 0.5, -0.5, 0.03125, 15.96875, -16, 100.7, -300.25}
	for _, x := range tests {
		scaled := float64(x) * 32
		if scaled > math.MaxInt16 || scaled < math.MinInt16 {
			continue
		}
		got := S10_5ToFloat(FloatToS10_5(x))
		want := float32(math.Trunc(scaled)) / 32
		if got != want {
			t.Errorf("round trip of %v = %v, want %v", x, got, want)
		}
	}
}

func TestS10_5_UnitScale(t *testing.T) {
	if got := S10_5ToFloat(32); got != 1.0 {
		t.Errorf("S10_5ToFloat(32) = %v, want 1.0", got)
	}
	if got := S10_5ToFloat(1); got != 0.03125 {
		t.Errorf("S10_5ToFloat(1) = %v, want 1/32", got)
	}
	if got := FloatToS10_5(-2.5); got != -80 {
		t.Errorf("FloatToS10_5(-2.5) = %d, want -80", got)
	}
}

// The push constant records are a 16 byte wire contract with the kernels.
func TestPushConstants_Layout(t *testing.T) {
	if got := unsafe.Sizeof(WarpPushConstants{}); got != 16 {
		t.Errorf("WarpPushConstants is %d bytes, want 16", got)
	}
	if got := unsafe.Sizeof(BlendPushConstants{}); got != 16 {
		t.Errorf("BlendPushConstants is %d bytes, want 16", got)
	}
	if got := unsafe.Sizeof(ConfidenceBlendPushConstants{}); got != 16 {
		t.Errorf("ConfidenceBlendPushConstants is %d bytes, want 16", got)
	}
	if got := unsafe.Sizeof(OcclusionFillPushConstants{}); got != 16 {
		t.Errorf("OcclusionFillPushConstants is %d bytes, want 16", got)
	}
}

// The timing record layout is part of the C ABI: 12 packed uint64s.
func TestFrameTimings_Layout(t *testing.T) {
	if got := unsafe.Sizeof(FrameTimings{}); got != 96 {
		t.Errorf("FrameTimings is %d bytes, want 96", got)
	}
}

func TestModeParams(t *testing.T) {
	tests := []struct {
		mode    FrameGenMode
		perf    OpticalFlowPerformance
		bidir   bool
		cost    bool
		quality SynthesisQuality
	}{
		{FrameGenOff, OpticalFlowFast, false, false, SynthesisPerformance},
		{FrameGenPerformance, OpticalFlowFast, false, false, SynthesisPerformance},
		{FrameGenBalanced, OpticalFlowMedium, true, false, SynthesisBalanced},
		{FrameGenQuality, OpticalFlowSlow, true, true, SynthesisQualityFull},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			perf, bidir, cost, quality := modeParams(tt.mode)
			if perf != tt.perf || bidir != tt.bidir || cost != tt.cost || quality != tt.quality {
				t.Errorf("modeParams(%s) = %s/%t/%t/%s, want %s/%t/%t/%s",
					tt.mode, perf, bidir, cost, quality, tt.perf, tt.bidir, tt.cost, tt.quality)
			}
		})
	}
}
