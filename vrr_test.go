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
	"os"
	"path/filepath"
	"testing"
)

func gamingDisplay() VrrConfig {
	return VrrConfig{
		MinHz:        48,
		MaxHz:        144,
		LfcSupported: true,
		Source:       VrrSourceManual,
		Enabled:      true,
	}
}

func TestVrrConfig_Derivations(t *testing.T) {
	cfg := gamingDisplay()

	if got := cfg.MinIntervalUs(); got != 6944 {
		t.Errorf("MinIntervalUs() = %d, want 6944", got)
	}
	if got := cfg.MaxIntervalUs(); got != 20833 {
		t.Errorf("MaxIntervalUs() = %d, want 20833", got)
	}
	if got := cfg.EffectiveMinHz(); got != 24 {
		t.Errorf("EffectiveMinHz() = %f, want 24", got)
	}

	cfg.LfcSupported = false
	if got := cfg.EffectiveMinHz(); got != 48 {
		t.Errorf("EffectiveMinHz() without LFC = %f, want 48", got)
	}
}

func TestVrrConfig_Range(t *testing.T) {
	cfg := gamingDisplay()
	tests := []struct {
		fps       float64
		inRange   bool
		lfcActive bool
	}{
		{60, true, false},
		{48, true, false},
		{144, true, false},
		{47.9, false, true},
		{30, false, true},
		{200, false, false},
	}
	for _, tt := range tests {
		if got := cfg.IsInRange(tt.fps); got != tt.inRange {
			t.Errorf("IsInRange(%v) = %t, want %t", tt.fps, got, tt.inRange)
		}
		if got := cfg.IsLfcActive(tt.fps); got != tt.lfcActive {
			t.Errorf("IsLfcActive(%v) = %t, want %t", tt.fps, got, tt.lfcActive)
		}
	}
}

func TestVrrConfig_InjectionInterval(t *testing.T) {
	cfg := gamingDisplay()

	if got := cfg.CalculateInjectionIntervalUs(16_667); got != 8_333 {
		t.Errorf("CalculateInjectionIntervalUs(16667) = %d, want 8333", got)
	}

	lo, hi := cfg.MinIntervalUs()/2, cfg.MaxIntervalUs()/2
	if got := cfg.CalculateInjectionIntervalUs(33_333); got > hi {
		t.Errorf("CalculateInjectionIntervalUs(33333) = %d, want <= %d", got, hi)
	}
	if got := cfg.CalculateInjectionIntervalUs(1_000); got < lo {
		t.Errorf("CalculateInjectionIntervalUs(1000) = %d, want >= %d", got, lo)
	}

	// Monotone non-decreasing, always inside the half-interval envelope.
	prev := uint64(0)
	for avg := uint64(0); avg <= 50_000; avg += 500 {
		got := cfg.CalculateInjectionIntervalUs(avg)
		if got < prev {
			t.Fatalf("interval decreased: f(%d)=%d after %d", avg, got, prev)
		}
		if got < lo || got > hi {
			t.Fatalf("f(%d)=%d outside [%d,%d]", avg, got, lo, hi)
		}
		prev = got
	}
}

func TestLfcState_Transitions(t *testing.T) {
	cfg := gamingDisplay()
	var s LfcState

	s.Update(60, cfg, 0)
	if s.Active {
		t.Fatal("active at 60 fps")
	}
	s.Update(30, cfg, 1)
	if !s.Active || s.TransitionFrame != 1 {
		t.Fatalf("state after 30 fps = %+v, want active from frame 1", s)
	}
	if !s.ShouldPauseInjection() {
		t.Error("ShouldPauseInjection() = false while active")
	}
	s.Update(35, cfg, 2)
	if !s.Active {
		t.Fatal("left LFC while still below min")
	}
	doubled := s.DoubledFrames
	if doubled == 0 {
		t.Error("DoubledFrames not advancing while active")
	}
	s.Update(60, cfg, 3)
	if s.Active || s.TransitionFrame != 3 {
		t.Fatalf("state after recovery = %+v, want inactive from frame 3", s)
	}
	if s.ShouldPauseInjection() {
		t.Error("ShouldPauseInjection() = true while inactive")
	}
	if s.DoubledFrames != doubled {
		t.Error("DoubledFrames advanced while inactive")
	}
}

func TestLfcState_NoLfcSupport(t *testing.T) {
	cfg := gamingDisplay()
	cfg.LfcSupported = false
	var s LfcState
	s.Update(10, cfg, 0)
	if s.Active {
		t.Error("LFC engaged on a display without LFC")
	}
}

func TestVrrConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     VrrConfig
		wantErr bool
	}{
		{"valid", gamingDisplay(), false},
		{"none source, empty", VrrConfig{}, false},
		{"inverted range", VrrConfig{MinHz: 144, MaxHz: 48, Source: VrrSourceManual}, true},
		{"zero min", VrrConfig{MaxHz: 144, Source: VrrSourceDRM}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestDetectVrrDRM(t *testing.T) {
	root := t.TempDir()
	connector := filepath.Join(root, "card0-DP-1")
	if err := os.MkdirAll(connector, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(connector, "vrr_capable"), []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(connector, "status"), []byte("connected\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	old := DrmSysfsRoot
	DrmSysfsRoot = root
	defer func() { DrmSysfsRoot = old }()

	cfg, ok := DetectVrrDRM()
	if !ok {
		t.Fatal("DetectVrrDRM() found nothing")
	}
	if cfg.Source != VrrSourceDRM || !cfg.Enabled || cfg.DisplayName != "card0-DP-1" {
		t.Errorf("DetectVrrDRM() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("detected config invalid: %v", err)
	}
}

func TestDetectVrrDRM_None(t *testing.T) {
	old := DrmSysfsRoot
	DrmSysfsRoot = t.TempDir()
	defer func() { DrmSysfsRoot = old }()

	if _, ok := DetectVrrDRM(); ok {
		t.Error("DetectVrrDRM() reported a display in an empty tree")
	}
}
