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
	"goarrg.com/debug"
	"goarrg.com/gmath"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// FrameImage describes one caller-owned rendered frame. The core never
// destroys these handles.
type FrameImage struct {
	Image  vk.Image
	View   vk.ImageView
	Extent gmath.Extent3u32
}

func (f FrameImage) isZero() bool {
	return f.Image == 0 && f.View == 0
}

// MotionVectorBuffers are the caller-owned flow output images bound to the
// session. Backward and cost entries stay zero unless the session was
// created for them.
type MotionVectorBuffers struct {
	FlowVector         FrameImage
	BackwardFlowVector FrameImage
	Cost               FrameImage
	BackwardCost       FrameImage
}

// flowSession is what the motion-vector stage needs from an optical flow
// session.
type flowSession interface {
	Config() OpticalFlowConfig
	BindImage(point OpticalFlowBindingPoint, view vk.ImageView, layout vk.ImageLayout) error
	Execute(cmd vk.CommandBuffer, regions []Rect2D, flags ExecuteFlags) error
}

// MotionVectorContext owns a two-slot frame history ring and drives the
// optical flow session over the two most recent frames.
//
// Ring convention: cursor always points at the next write slot. So right
// after Push, the frame just written ("current") sits at 1-cursor and the
// one before it ("previous") at cursor.
type MotionVectorContext struct {
	noCopy  noCopy
	session flowSession
	buffers MotionVectorBuffers

	history   [2]FrameImage
	cursor    int
	pushCount uint64
}

// NewMotionVectorContext wraps session. buffers supplies the flow output
// images the session writes; they must match the session's OutputSize.
func NewMotionVectorContext(session *OpticalFlowSession, buffers MotionVectorBuffers) *MotionVectorContext {
	ctx := &MotionVectorContext{buffers: buffers}
	if session != nil {
		ctx.session = session
	}
	ctx.noCopy.init()
	return ctx
}

func (c *MotionVectorContext) Destroy() {
	c.noCopy.check()
	c.noCopy.close()
}

// Push rotates frame into the history ring and reports whether enough
// history exists to estimate motion.
func (c *MotionVectorContext) Push(frame FrameImage) bool {
	c.noCopy.check()
	c.history[c.cursor] = frame
	c.cursor = 1 - c.cursor
	c.pushCount++
	return c.pushCount >= 2
}

func (c *MotionVectorContext) PushCount() uint64 {
	c.noCopy.check()
	return c.pushCount
}

// CurrentFrame is the most recently pushed frame, zero before any push.
func (c *MotionVectorContext) CurrentFrame() FrameImage {
	c.noCopy.check()
	return c.history[1-c.cursor]
}

// PreviousFrame is the frame pushed before the current one, zero until
// two pushes happened.
func (c *MotionVectorContext) PreviousFrame() FrameImage {
	c.noCopy.check()
	return c.history[c.cursor]
}

func (c *MotionVectorContext) MotionVectors() *MotionVectorBuffers {
	c.noCopy.check()
	return &c.buffers
}

// Execute binds the two most recent frames and the owned flow outputs to
// the session and records the estimation onto cmd.
func (c *MotionVectorContext) Execute(cmd vk.CommandBuffer, flags ExecuteFlags) error {
	c.noCopy.check()
	if c.session == nil {
		return debug.ErrorWrapf(ErrNotInitialized, "no optical flow session")
	}
	if c.pushCount < 2 {
		return debug.ErrorWrapf(ErrInsufficientFrames, "have %d", c.pushCount)
	}

	cfg := c.session.Config()
	curr, prev := c.CurrentFrame(), c.PreviousFrame()
	if curr.isZero() || prev.isZero() {
		return debug.ErrorWrapf(ErrInsufficientFrames, "zero frame in history")
	}

	type bind struct {
		point OpticalFlowBindingPoint
		view  vk.ImageView
	}
	binds := []bind{
		{BindingInput, curr.View},
		{BindingReference, prev.View},
		{BindingFlowVector, c.buffers.FlowVector.View},
	}
	if cfg.Bidirectional {
		binds = append(binds, bind{BindingBackwardFlowVector, c.buffers.BackwardFlowVector.View})
	}
	if cfg.CostEnabled {
		binds = append(binds, bind{BindingCost, c.buffers.Cost.View})
		if cfg.Bidirectional {
			binds = append(binds, bind{BindingBackwardCost, c.buffers.BackwardCost.View})
		}
	}
	for _, b := range binds {
		if err := c.session.BindImage(b.point, b.view, vk.IMAGE_LAYOUT_GENERAL); err != nil {
			return err
		}
	}

	return c.session.Execute(cmd, nil, flags)
}
