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
	"time"

	"goarrg.com/debug"

	"github.com/GhostKellz/nvvk/internal/container"
	"github.com/GhostKellz/nvvk/internal/vk"
)

// FrameGenMode is the quality mode of the generation pipeline.
type FrameGenMode int32

const (
	FrameGenOff         FrameGenMode = 0
	FrameGenPerformance FrameGenMode = 1
	FrameGenBalanced    FrameGenMode = 2
	FrameGenQuality     FrameGenMode = 3
)

func (m FrameGenMode) String() string {
	switch m {
	case FrameGenOff:
		return "Off"
	case FrameGenPerformance:
		return "Performance"
	case FrameGenBalanced:
		return "Balanced"
	case FrameGenQuality:
		return "Quality"
	default:
		return "Unknown"
	}
}

// modeParams maps a generation mode onto the optical flow and synthesis
// settings it implies.
func modeParams(m FrameGenMode) (perf OpticalFlowPerformance, bidirectional, cost bool, quality SynthesisQuality) {
	switch m {
	case FrameGenBalanced:
		return OpticalFlowMedium, true, false, SynthesisBalanced
	case FrameGenQuality:
		return OpticalFlowSlow, true, true, SynthesisQualityFull
	default: // Off, Performance
		return OpticalFlowFast, false, false, SynthesisPerformance
	}
}

// FrameGenConfig describes the generation target.
type FrameGenConfig struct {
	Width  uint32
	Height uint32
	Mode   FrameGenMode

	// ConfidenceThreshold is the lowest confidence at which PushFrame
	// reports a generated frame; SceneChangeThreshold tunes the scene cut
	// oracle.
	ConfidenceThreshold  float32
	SceneChangeThreshold float32

	// LatencyCompensation reports the extra latency generation adds so
	// the low latency runtime can account for it.
	LatencyCompensation bool
	TargetFrameTimeUs   uint64
}

func (c *FrameGenConfig) validate() error {
	if c.Width == 0 || c.Height == 0 {
		return debug.ErrorWrapf(ErrNotInitialized, "frame generation extent %dx%d", c.Width, c.Height)
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.5
	}
	if c.SceneChangeThreshold <= 0 {
		c.SceneChangeThreshold = 0.8
	}
	return nil
}

// FrameGenStats is a point-in-time snapshot.
type FrameGenStats struct {
	GeneratedFrames     uint64
	SkippedFrames       uint64
	AvgGenTimeUs        uint64
	Confidence          float32
	SceneChangeDetected bool
}

// GeneratedFrame is one synthesized intermediate frame.
type GeneratedFrame struct {
	Image            vk.Image
	View             vk.ImageView
	Confidence       float32
	GenerationTimeUs uint64
	FrameID          uint64
	ShouldPresent    bool
}

// SceneChangeDetector inspects the fresh motion-vector output and reports
// a scene cut, which suppresses synthesis for that frame. threshold is
// FrameGenConfig.SceneChangeThreshold.
type SceneChangeDetector func(mv *MotionVectorBuffers, threshold float32) bool

// ConfidenceEstimator scores the synthesized frame in [0,1] from the
// motion-vector output, non-decreasing in cost map quality.
type ConfidenceEstimator func(mv *MotionVectorBuffers) float32

// The defaults are deliberately simple oracles; hosts that read the cost
// map back can install sharper ones.
func defaultSceneChangeDetector(*MotionVectorBuffers, float32) bool { return false }
func defaultConfidenceEstimator(*MotionVectorBuffers) float32       { return 0.95 }

// Seams between the orchestrator and its stages.
type motionStage interface {
	Push(frame FrameImage) bool
	Execute(cmd vk.CommandBuffer, flags ExecuteFlags) error
	CurrentFrame() FrameImage
	PreviousFrame() FrameImage
	MotionVectors() *MotionVectorBuffers
	Destroy()
}

type synthesisStage interface {
	Synthesize(cmd vk.CommandBuffer, prev, curr FrameImage, mv *MotionVectorBuffers) (vk.ImageView, error)
	Config() SynthesisConfig
	Destroy()
}

// FrameGenResources bundles the caller-owned GPU objects the pipeline
// works with.
type FrameGenResources struct {
	// MotionVectors are the flow output images, sized per the mode's
	// grid (FrameGenGridSize).
	MotionVectors MotionVectorBuffers
	// Output is the storage image synthesized frames land in.
	Output FrameImage
	// Sampler samples the input frames in the synthesis kernels.
	Sampler uint64
	// Shaders carries the synthesis kernels.
	Shaders SynthesisShaders
}

// FrameGenGridSize is the optical flow block edge every mode uses.
const FrameGenGridSize = 4

const genTimeWindow = 8

// FrameGenerator consumes pairs of rendered frames and synthesizes one
// intermediate frame per pair: optical flow over the two most recent
// frames, then motion-compensated warp and blend. It coordinates with the
// low latency runtime for latency accounting.
type FrameGenerator struct {
	noCopy noCopy
	config FrameGenConfig

	session *OpticalFlowSession
	motion  motionStage
	synth   synthesisStage

	// borrowed, may be nil
	lowLatency *LowLatencyContext

	enabled bool
	frameID uint64

	stats       FrameGenStats
	genTimes    *container.Ring[uint64]
	sceneChange SceneChangeDetector
	confidence  ConfidenceEstimator
}

// NewFrameGenerator builds the motion-vector and synthesis stages per the
// configured mode. lowLatency may be nil; when set it is borrowed, never
// destroyed here.
func NewFrameGenerator(dispatch *DeviceDispatch, config FrameGenConfig,
	resources FrameGenResources, lowLatency *LowLatencyContext,
) (*FrameGenerator, error) {
	if dispatch == nil {
		return nil, ErrInvalidHandle
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	perf, bidirectional, cost, quality := modeParams(config.Mode)

	session, err := NewOpticalFlowSession(dispatch, OpticalFlowConfig{
		Width:         config.Width,
		Height:        config.Height,
		OutputGrid:    FrameGenGridSize,
		Performance:   perf,
		Bidirectional: bidirectional,
		CostEnabled:   cost,
	})
	if err != nil {
		return nil, err
	}

	synth, err := NewSynthesisContext(dispatch, SynthesisConfig{
		Width:   config.Width,
		Height:  config.Height,
		Quality: quality,
		Output:  resources.Output,
		Sampler: resources.Sampler,
	}, resources.Shaders)
	if err != nil {
		session.Destroy()
		return nil, err
	}

	g := &FrameGenerator{
		config:      config,
		session:     session,
		motion:      NewMotionVectorContext(session, resources.MotionVectors),
		synth:       synth,
		lowLatency:  lowLatency,
		enabled:     config.Mode != FrameGenOff,
		genTimes:    container.NewRing[uint64](genTimeWindow),
		sceneChange: defaultSceneChangeDetector,
		confidence:  defaultConfidenceEstimator,
	}
	g.noCopy.init()
	logger.IPrintf("frame generation up: %s", jsonString(config))
	return g, nil
}

func (g *FrameGenerator) Destroy() {
	g.noCopy.check()
	g.synth.Destroy()
	g.motion.Destroy()
	if g.session != nil {
		g.session.Destroy()
	}
	g.noCopy.close()
}

// SetEnabled requests generation. Stays off while the mode is Off.
func (g *FrameGenerator) SetEnabled(enabled bool) {
	g.noCopy.check()
	g.enabled = enabled && g.config.Mode != FrameGenOff
}

func (g *FrameGenerator) Enabled() bool {
	g.noCopy.check()
	return g.enabled
}

// SetMode switches the quality mode. The pipelines built at construction
// stay; a mode above the constructed quality level runs with the passes
// that exist.
func (g *FrameGenerator) SetMode(mode FrameGenMode) {
	g.noCopy.check()
	g.config.Mode = mode
	g.enabled = g.enabled && mode != FrameGenOff
}

func (g *FrameGenerator) Mode() FrameGenMode {
	g.noCopy.check()
	return g.config.Mode
}

// SetSceneChangeDetector replaces the scene cut oracle.
func (g *FrameGenerator) SetSceneChangeDetector(d SceneChangeDetector) {
	g.noCopy.check()
	if d == nil {
		d = defaultSceneChangeDetector
	}
	g.sceneChange = d
}

// SetConfidenceEstimator replaces the confidence scorer.
func (g *FrameGenerator) SetConfidenceEstimator(e ConfidenceEstimator) {
	g.noCopy.check()
	if e == nil {
		e = defaultConfidenceEstimator
	}
	g.confidence = e
}

// PushFrame feeds one rendered frame. When generation is enabled, history
// holds two frames and no scene cut is detected, it records the whole
// pipeline onto cmd and reports the synthesized frame if its confidence
// reaches ConfidenceThreshold; otherwise nil.
func (g *FrameGenerator) PushFrame(cmd vk.CommandBuffer, frame FrameImage) (*GeneratedFrame, error) {
	g.noCopy.check()
	start := time.Now()

	ready := g.motion.Push(frame)
	if !ready || !g.enabled {
		return nil, nil
	}

	g.frameID++
	g.stats.SceneChangeDetected = false

	if err := g.motion.Execute(cmd, 0); err != nil {
		return nil, err
	}

	mv := g.motion.MotionVectors()
	if g.sceneChange(mv, g.config.SceneChangeThreshold) {
		g.stats.SceneChangeDetected = true
		g.stats.SkippedFrames++
		logger.VPrintf("scene change at frame %d, skipping synthesis", g.frameID)
		return nil, nil
	}

	view, err := g.synth.Synthesize(cmd, g.motion.PreviousFrame(), g.motion.CurrentFrame(), mv)
	if err != nil {
		return nil, err
	}

	confidence := clamp(g.confidence(mv), 0, 1)
	genTime := uint64(time.Since(start).Microseconds())
	g.recordGenTime(genTime)

	g.stats.Confidence = confidence
	if confidence < g.config.ConfidenceThreshold {
		return nil, nil
	}
	g.stats.GeneratedFrames++

	return &GeneratedFrame{
		Image:            g.synth.Config().Output.Image,
		View:             view,
		Confidence:       confidence,
		GenerationTimeUs: genTime,
		FrameID:          g.frameID,
		ShouldPresent:    true,
	}, nil
}

func (g *FrameGenerator) recordGenTime(us uint64) {
	g.genTimes.Push(us)
	var sum uint64
	for _, t := range g.genTimes.Data() {
		sum += t
	}
	g.stats.AvgGenTimeUs = sum / uint64(g.genTimes.Len())
}

// LatencyCompensationUs is the extra input latency generation adds: half
// a frame of queueing plus the generation cost. 0 when compensation is
// disabled.
func (g *FrameGenerator) LatencyCompensationUs() uint64 {
	g.noCopy.check()
	if !g.config.LatencyCompensation {
		return 0
	}
	return g.config.TargetFrameTimeUs/2 + g.stats.AvgGenTimeUs
}

func (g *FrameGenerator) Stats() FrameGenStats {
	g.noCopy.check()
	return g.stats
}

func (g *FrameGenerator) CurrentFrameID() uint64 {
	g.noCopy.check()
	return g.frameID
}

func (g *FrameGenerator) Config() FrameGenConfig {
	g.noCopy.check()
	return g.config
}
