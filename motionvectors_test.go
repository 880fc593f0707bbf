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

	"github.com/GhostKellz/nvvk/internal/vk"
)

func TestOpticalFlowConfig_OutputSize(t *testing.T) {
	tests := []struct {
		grid  uint32
		wantW uint32
		wantH uint32
	}{
		{4, 480, 270},
		{2, 960, 540},
		{8, 240, 135},
		{1, 1920, 1080},
	}
	for _, tt := range tests {
		cfg := OpticalFlowConfig{Width: 1920, Height: 1080, OutputGrid: tt.grid}
		w, h := cfg.OutputSize()
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("grid %d: OutputSize() = %dx%d, want %dx%d", tt.grid, w, h, tt.wantW, tt.wantH)
		}
	}

	// Partial blocks round up.
	cfg := OpticalFlowConfig{Width: 1919, Height: 1079, OutputGrid: 8}
	if w, h := cfg.OutputSize(); w != 240 || h != 135 {
		t.Errorf("OutputSize() = %dx%d, want 240x135", w, h)
	}
}

func TestOpticalFlowConfig_Validate(t *testing.T) {
	cfg := OpticalFlowConfig{Width: 1920, Height: 1080, OutputGrid: 3}
	if err := cfg.validate(); err == nil {
		t.Error("validate() accepted grid 3")
	}
	cfg.OutputGrid = 4
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v", err)
	}
}

func frameN(n uint64) FrameImage {
	return FrameImage{Image: vk.Image(n), View: vk.ImageView(n)}
}

// Ring convention: cursor points at the next write slot, so right after a
// push the just-written frame is "current" and the survivor is
// "previous". Verified over a three push sequence.
func TestMotionVectorContext_RingConvention(t *testing.T) {
	ctx := NewMotionVectorContext(nil, MotionVectorBuffers{})
	defer ctx.Destroy()

	if ctx.Push(frameN(1)) {
		t.Fatal("Push #1 reported enough history")
	}
	if got := ctx.CurrentFrame(); got != frameN(1) {
		t.Fatalf("current after push 1 = %+v, want frame 1", got)
	}

	if !ctx.Push(frameN(2)) {
		t.Fatal("Push #2 reported insufficient history")
	}
	if got := ctx.CurrentFrame(); got != frameN(2) {
		t.Errorf("current after push 2 = %+v, want frame 2", got)
	}
	if got := ctx.PreviousFrame(); got != frameN(1) {
		t.Errorf("previous after push 2 = %+v, want frame 1", got)
	}

	if !ctx.Push(frameN(3)) {
		t.Fatal("Push #3 reported insufficient history")
	}
	if got := ctx.CurrentFrame(); got != frameN(3) {
		t.Errorf("current after push 3 = %+v, want frame 3", got)
	}
	if got := ctx.PreviousFrame(); got != frameN(2) {
		t.Errorf("previous after push 3 = %+v, want frame 2", got)
	}
	if got := ctx.PushCount(); got != 3 {
		t.Errorf("PushCount() = %d, want 3", got)
	}
}

func TestMotionVectorContext_ExecuteFailures(t *testing.T) {
	ctx := NewMotionVectorContext(nil, MotionVectorBuffers{})
	defer ctx.Destroy()

	if err := ctx.Execute(0x1, 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Execute() without session = %v, want ErrNotInitialized", err)
	}

	ctx2 := &MotionVectorContext{session: stubFlowSession{}, buffers: MotionVectorBuffers{FlowVector: frameN(9)}}
	ctx2.noCopy.init()
	defer ctx2.Destroy()

	ctx2.Push(frameN(1))
	if err := ctx2.Execute(0x1, 0); !errors.Is(err, ErrInsufficientFrames) {
		t.Errorf("Execute() with one frame = %v, want ErrInsufficientFrames", err)
	}
	ctx2.Push(frameN(2))
	if err := ctx2.Execute(0x1, 0); err != nil {
		t.Errorf("Execute() with two frames = %v", err)
	}
}

// stubFlowSession satisfies flowSession without a driver.
type stubFlowSession struct {
	bidirectional bool
	cost          bool
}

func (s stubFlowSession) Config() OpticalFlowConfig {
	return OpticalFlowConfig{
		Width: 1920, Height: 1080, OutputGrid: 4,
		Bidirectional: s.bidirectional, CostEnabled: s.cost,
	}
}

func (stubFlowSession) BindImage(OpticalFlowBindingPoint, vk.ImageView, vk.ImageLayout) error {
	return nil
}

func (stubFlowSession) Execute(vk.CommandBuffer, []Rect2D, ExecuteFlags) error {
	return nil
}
