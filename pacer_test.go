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

import "testing"

func TestTargetFPS(t *testing.T) {
	tests := []struct {
		name string
		fps  uint32
		want uint32
	}{
		{"60fps", 60, 16_666},
		{"120fps", 120, 8_333},
		{"144fps", 144, 6_944},
		{"uncapped", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TargetFPS(tt.fps)
			if !m.Enabled || !m.Boost {
				t.Errorf("TargetFPS(%d) = %+v, want enabled+boost", tt.fps, m)
			}
			if m.MinimumIntervalUs != tt.want {
				t.Errorf("MinimumIntervalUs = %d, want %d", m.MinimumIntervalUs, tt.want)
			}
		})
	}
}

func TestFramePacer(t *testing.T) {
	p := NewFramePacer(60)
	if got := p.TargetFrameTimeUs(); got != 16_666 {
		t.Fatalf("TargetFrameTimeUs() = %d, want 16666", got)
	}

	if got := p.RecordFrame(1_000_000); got != 0 {
		t.Errorf("first RecordFrame() = %d, want 0", got)
	}
	if got := p.RecordFrame(1_016_666); got != 16_666 {
		t.Errorf("second RecordFrame() = %d, want 16666", got)
	}
	if got := p.FrameCount(); got != 2 {
		t.Errorf("FrameCount() = %d, want 2", got)
	}

	if !p.IsAheadOfTarget(10_000) {
		t.Error("IsAheadOfTarget(10000) = false, want true")
	}
	if p.IsAheadOfTarget(20_000) {
		t.Error("IsAheadOfTarget(20000) = true, want false")
	}
}

func TestFramePacer_Uncapped(t *testing.T) {
	p := UncappedFramePacer()
	if got := p.TargetFPS(); got != 0 {
		t.Errorf("TargetFPS() = %d, want 0", got)
	}
	m := p.ModeConfig()
	if !m.Enabled || !m.Boost || m.MinimumIntervalUs != 0 {
		t.Errorf("ModeConfig() = %+v, want enabled+boost, uncapped", m)
	}
	if p.IsAheadOfTarget(1) {
		t.Error("uncapped pacer can never be ahead of target")
	}
}
