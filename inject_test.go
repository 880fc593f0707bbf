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

func testInjection(cfg InjectionConfig) (*InjectionContext, *FrameGenerator) {
	g, _, _ := testGenerator(FrameGenPerformance)
	return NewInjectionContext(cfg, g, nil), g
}

func TestInjectionContext_ShouldInject(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{
		Mode:          InjectionSingle,
		MinConfidence: 0.5,
	})
	defer ctx.Destroy()
	defer g.Destroy()

	g.stats.Confidence = 0.9
	if !ctx.ShouldInject() {
		t.Fatal("ShouldInject() = false with confident generator")
	}

	// Each suppression condition alone must veto injection.
	g.stats.Confidence = 0.4
	if ctx.ShouldInject() {
		t.Error("injected below the confidence threshold")
	}
	g.stats.Confidence = 0.9

	g.stats.SceneChangeDetected = true
	if ctx.ShouldInject() {
		t.Error("injected across a scene change")
	}
	g.stats.SceneChangeDetected = false

	ctx.lfc.Active = true
	if ctx.ShouldInject() {
		t.Error("injected while LFC doubles frames")
	}
	ctx.lfc.Active = false

	ctx.SetEnabled(false)
	if ctx.ShouldInject() {
		t.Error("injected while disabled")
	}
	ctx.SetEnabled(true)
	if !ctx.ShouldInject() {
		t.Error("ShouldInject() = false after clearing all suppressions")
	}
}

func TestInjectionContext_DisabledMode(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{Mode: InjectionDisabled, MinConfidence: 0.5})
	defer ctx.Destroy()
	defer g.Destroy()

	g.stats.Confidence = 1
	if ctx.Enabled() || ctx.ShouldInject() {
		t.Error("disabled mode still injects")
	}
	ctx.SetEnabled(true)
	if ctx.Enabled() {
		t.Error("SetEnabled(true) enabled a disabled-mode context")
	}
}

func TestInjectionContext_Timing(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		ctx, g := testInjection(InjectionConfig{
			Mode: InjectionSingle, Timing: TimingFixed, TargetFPS: 60,
		})
		defer ctx.Destroy()
		defer g.Destroy()
		if got := ctx.CalculateInjectionTimingUs(); got != 8_333 {
			t.Errorf("fixed timing = %d, want 8333", got)
		}
	})

	t.Run("adaptive fallback", func(t *testing.T) {
		ctx, g := testInjection(InjectionConfig{Mode: InjectionSingle, Timing: TimingAdaptive})
		defer ctx.Destroy()
		defer g.Destroy()
		if got := ctx.CalculateInjectionTimingUs(); got != adaptiveFallbackUs {
			t.Errorf("adaptive timing without samples = %d, want %d", got, adaptiveFallbackUs)
		}
	})

	t.Run("adaptive measured", func(t *testing.T) {
		ctx, g := testInjection(InjectionConfig{Mode: InjectionSingle, Timing: TimingAdaptive})
		defer ctx.Destroy()
		defer g.Destroy()

		now := uint64(1_000_000)
		for i := 0; i < 5; i++ {
			ctx.recordPresentAt(now, false)
			now += 20_000
		}
		if got := ctx.CalculateInjectionTimingUs(); got != 10_000 {
			t.Errorf("adaptive timing = %d, want 10000", got)
		}
	})

	t.Run("vrr", func(t *testing.T) {
		ctx, g := testInjection(InjectionConfig{
			Mode: InjectionSingle, Timing: TimingVrr, Vrr: gamingDisplay(),
		})
		defer ctx.Destroy()
		defer g.Destroy()

		now := uint64(1_000_000)
		for i := 0; i < 4; i++ {
			ctx.recordPresentAt(now, false)
			now += 16_666
		}
		got := ctx.CalculateInjectionTimingUs()
		lo, hi := gamingDisplay().MinIntervalUs()/2, gamingDisplay().MaxIntervalUs()/2
		if got < lo || got > hi {
			t.Errorf("vrr timing = %d outside [%d,%d]", got, lo, hi)
		}
	})
}

func TestInjectionContext_VrrAutoSwitch(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{Mode: InjectionSingle, Timing: TimingAdaptive})
	defer ctx.Destroy()
	defer g.Destroy()

	ctx.SetVrrConfig(gamingDisplay())
	if got := ctx.Config().Timing; got != TimingVrr {
		t.Errorf("Timing = %v after installing an enabled VRR config, want TimingVrr", got)
	}

	// A disabled display must not hijack the timing mode.
	ctx2, g2 := testInjection(InjectionConfig{Mode: InjectionSingle, Timing: TimingAdaptive})
	defer ctx2.Destroy()
	defer g2.Destroy()
	vrr := gamingDisplay()
	vrr.Enabled = false
	ctx2.SetVrrConfig(vrr)
	if got := ctx2.Config().Timing; got != TimingAdaptive {
		t.Errorf("Timing = %v, want TimingAdaptive", got)
	}
}

func TestInjectionContext_Counters(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{Mode: InjectionSingle})
	defer ctx.Destroy()
	defer g.Destroy()

	now := uint64(5_000_000)
	ctx.recordPresentAt(now, false)
	ctx.recordPresentAt(now+10_000, true)
	ctx.recordPresentAt(now+20_000, false)
	ctx.RecordSkipped()

	stats := ctx.Stats()
	if stats.RealFrames != 2 || stats.GeneratedFrames != 1 || stats.SkippedFrames != 1 {
		t.Errorf("counters = %+v", stats)
	}
	if stats.AvgPresentIntervalUs != 10_000 {
		t.Errorf("AvgPresentIntervalUs = %d, want 10000", stats.AvgPresentIntervalUs)
	}
	if stats.EffectiveFPS != 100 {
		t.Errorf("EffectiveFPS = %v, want 100", stats.EffectiveFPS)
	}
}

// The interval ring may hold unwritten (zero) slots; the average runs
// over written entries only.
func TestInjectionContext_ZeroHoleAverage(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{Mode: InjectionSingle, Timing: TimingAdaptive})
	defer ctx.Destroy()
	defer g.Destroy()

	ctx.recordPresentAt(1_000_000, false)
	ctx.recordPresentAt(1_008_000, false)

	// One written interval, fifteen dead slots.
	if got := ctx.Stats().AvgPresentIntervalUs; got != 8000 {
		t.Errorf("AvgPresentIntervalUs = %d, want 8000", got)
	}
	if got := ctx.CalculateInjectionTimingUs(); got != 4000 {
		t.Errorf("CalculateInjectionTimingUs() = %d, want 4000", got)
	}
}

func TestInjectionContext_LfcPausesThroughPresents(t *testing.T) {
	ctx, g := testInjection(InjectionConfig{
		Mode:   InjectionSingle,
		Timing: TimingVrr,
		Vrr:    gamingDisplay(),
	})
	defer ctx.Destroy()
	defer g.Destroy()
	g.stats.Confidence = 1

	// ~30 fps presents: below the 48 Hz floor, LFC must engage.
	now := uint64(1_000_000)
	for i := 0; i < 6; i++ {
		ctx.recordPresentAt(now, false)
		now += 33_333
	}
	if !ctx.LfcState().Active {
		t.Fatal("LFC not active at 30 fps")
	}
	if ctx.ShouldInject() {
		t.Error("injecting while LFC is active")
	}

	// Back to ~120 fps; enough presents to pull the windowed average up.
	for i := 0; i < 32; i++ {
		ctx.recordPresentAt(now, false)
		now += 8_333
	}
	if ctx.LfcState().Active {
		t.Fatal("LFC still active at 120 fps")
	}
	if !ctx.ShouldInject() {
		t.Error("not injecting after LFC released")
	}
}
