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
	"testing"

	"github.com/GhostKellz/nvvk/internal/container"
	"github.com/GhostKellz/nvvk/internal/vk"
)

// stubMotionStage drives the orchestrator without a driver.
type stubMotionStage struct {
	pushCount uint64
	current   FrameImage
	previous  FrameImage
	buffers   MotionVectorBuffers
	execErr   error
}

func (s *stubMotionStage) Push(frame FrameImage) bool {
	s.previous = s.current
	s.current = frame
	s.pushCount++
	return s.pushCount >= 2
}

func (s *stubMotionStage) Execute(vk.CommandBuffer, ExecuteFlags) error { return s.execErr }
func (s *stubMotionStage) CurrentFrame() FrameImage                     { return s.current }
func (s *stubMotionStage) PreviousFrame() FrameImage                    { return s.previous }
func (s *stubMotionStage) MotionVectors() *MotionVectorBuffers          { return &s.buffers }
func (s *stubMotionStage) Destroy()                                     {}

type stubSynthesis struct {
	output FrameImage
	calls  int
	err    error
}

func (s *stubSynthesis) Synthesize(vk.CommandBuffer, FrameImage, FrameImage, *MotionVectorBuffers) (vk.ImageView, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.output.View, nil
}

func (s *stubSynthesis) Config() SynthesisConfig { return SynthesisConfig{Output: s.output} }
func (s *stubSynthesis) Destroy()                {}

func testGenerator(mode FrameGenMode) (*FrameGenerator, *stubMotionStage, *stubSynthesis) {
	motion := &stubMotionStage{}
	synth := &stubSynthesis{output: FrameImage{Image: 7, View: 42}}
	g := &FrameGenerator{
		config: FrameGenConfig{
			Width: 1920, Height: 1080, Mode: mode,
			ConfidenceThreshold:  0.5,
			SceneChangeThreshold: 0.8,
			TargetFrameTimeUs:    16_666,
		},
		motion:      motion,
		synth:       synth,
		enabled:     mode != FrameGenOff,
		genTimes:    container.NewRing[uint64](genTimeWindow),
		sceneChange: defaultSceneChangeDetector,
		confidence:  defaultConfidenceEstimator,
	}
	g.noCopy.init()
	return g, motion, synth
}

// Scenario: performance mode, scene cut on the third frame. The first
// push lacks history, the second synthesizes, the third skips.
func TestFrameGenerator_SceneChangeSkip(t *testing.T) {
	g, _, synth := testGenerator(FrameGenPerformance)
	defer g.Destroy()

	pushes := 0
	g.SetSceneChangeDetector(func(*MotionVectorBuffers, float32) bool {
		return pushes == 3
	})

	pushes = 1
	frame, err := g.PushFrame(0x1, frameN(1))
	if err != nil || frame != nil {
		t.Fatalf("push 1 = %+v, %v; want nil (insufficient history)", frame, err)
	}

	pushes = 2
	frame, err = g.PushFrame(0x1, frameN(2))
	if err != nil {
		t.Fatalf("push 2 error: %v", err)
	}
	if frame == nil {
		t.Fatal("push 2 = nil, want a generated frame")
	}
	if frame.FrameID != 1 || !frame.ShouldPresent || frame.View != 42 || frame.Image != 7 {
		t.Errorf("generated frame = %+v", frame)
	}
	if frame.Confidence < 0 || frame.Confidence > 1 {
		t.Errorf("confidence %v outside [0,1]", frame.Confidence)
	}

	pushes = 3
	frame, err = g.PushFrame(0x1, frameN(3))
	if err != nil || frame != nil {
		t.Fatalf("push 3 = %+v, %v; want nil (scene change)", frame, err)
	}

	stats := g.Stats()
	if stats.SkippedFrames != 1 {
		t.Errorf("SkippedFrames = %d, want 1", stats.SkippedFrames)
	}
	if !stats.SceneChangeDetected {
		t.Error("SceneChangeDetected = false after a cut")
	}
	if stats.GeneratedFrames != 1 {
		t.Errorf("GeneratedFrames = %d, want 1", stats.GeneratedFrames)
	}
	if synth.calls != 1 {
		t.Errorf("synthesis ran %d times, want 1", synth.calls)
	}
}

func TestFrameGenerator_DisabledSuppresses(t *testing.T) {
	g, motion, synth := testGenerator(FrameGenPerformance)
	defer g.Destroy()
	g.SetEnabled(false)

	for i := uint64(1); i <= 3; i++ {
		frame, err := g.PushFrame(0x1, frameN(i))
		if err != nil || frame != nil {
			t.Fatalf("push %d = %+v, %v; want nil while disabled", i, frame, err)
		}
	}
	// History still accumulates while disabled.
	if motion.pushCount != 3 {
		t.Errorf("pushCount = %d, want 3", motion.pushCount)
	}
	if synth.calls != 0 {
		t.Errorf("synthesis ran while disabled")
	}

	g.SetEnabled(true)
	frame, err := g.PushFrame(0x1, frameN(4))
	if err != nil || frame == nil {
		t.Fatalf("push after enable = %+v, %v; want a frame", frame, err)
	}
}

func TestFrameGenerator_OffModeStaysDisabled(t *testing.T) {
	g, _, _ := testGenerator(FrameGenOff)
	defer g.Destroy()

	g.SetEnabled(true)
	if g.Enabled() {
		t.Error("SetEnabled(true) enabled generation in Off mode")
	}

	g.SetMode(FrameGenBalanced)
	g.SetEnabled(true)
	if !g.Enabled() {
		t.Error("generation stayed off after leaving Off mode")
	}
	g.SetMode(FrameGenOff)
	if g.Enabled() {
		t.Error("generation stayed on after switching to Off mode")
	}
}

func TestFrameGenerator_LatencyCompensation(t *testing.T) {
	g, _, _ := testGenerator(FrameGenPerformance)
	defer g.Destroy()

	if got := g.LatencyCompensationUs(); got != 0 {
		t.Errorf("LatencyCompensationUs() = %d, want 0 while disabled", got)
	}

	g.config.LatencyCompensation = true
	g.stats.AvgGenTimeUs = 1500
	want := uint64(16_666/2 + 1500)
	if got := g.LatencyCompensationUs(); got != want {
		t.Errorf("LatencyCompensationUs() = %d, want %d", got, want)
	}
}

func TestFrameGenerator_GenTimeRollingAverage(t *testing.T) {
	g, _, _ := testGenerator(FrameGenPerformance)
	defer g.Destroy()

	for _, us := range []uint64{1000, 2000, 3000} {
		g.recordGenTime(us)
	}
	if got := g.Stats().AvgGenTimeUs; got != 2000 {
		t.Errorf("AvgGenTimeUs = %d, want 2000", got)
	}

	// Window is 8 samples; older entries fall out.
	for i := 0; i < genTimeWindow; i++ {
		g.recordGenTime(4000)
	}
	if got := g.Stats().AvgGenTimeUs; got != 4000 {
		t.Errorf("AvgGenTimeUs = %d, want 4000 after window turnover", got)
	}
}
