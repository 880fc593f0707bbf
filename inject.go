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

	"github.com/GhostKellz/nvvk/internal/container"
)

// InjectionMode selects how many generated frames go between real ones.
type InjectionMode int32

const (
	InjectionDisabled InjectionMode = iota
	InjectionSingle
	InjectionDouble
)

// InjectionTiming selects how the injection instant is computed.
type InjectionTiming int32

const (
	// TimingFixed divides the target frame time.
	TimingFixed InjectionTiming = iota
	// TimingAdaptive divides the measured present interval.
	TimingAdaptive
	// TimingVrr delegates to the display's VRR envelope.
	TimingVrr
)

// InjectionConfig configures the present interception layer.
type InjectionConfig struct {
	Mode              InjectionMode
	Timing            InjectionTiming
	TargetFPS         uint32
	MinConfidence     float32
	ReflexIntegration bool
	Vrr               VrrConfig
}

// InjectionStats is a point-in-time snapshot.
type InjectionStats struct {
	RealFrames           uint64
	GeneratedFrames      uint64
	SkippedFrames        uint64
	AvgPresentIntervalUs uint64
	EffectiveFPS         float64
}

const presentIntervalWindow = 16

// adaptiveFallbackUs is the injection midpoint assumed before any present
// interval was measured, half of a 60 Hz frame.
const adaptiveFallbackUs = 8333

// InjectionContext decides when a synthesized frame goes into the present
// sequence. It borrows the frame generator and the low latency context;
// neither is owned or destroyed here.
type InjectionContext struct {
	noCopy noCopy
	config InjectionConfig

	frameGen   *FrameGenerator
	lowLatency *LowLatencyContext

	enabled bool

	intervals         *container.Ring[uint64]
	lastPresentTimeUs uint64
	frameNumber       uint64

	realFrames      uint64
	generatedFrames uint64
	skippedFrames   uint64

	avgPresentIntervalUs uint64
	effectiveFPS         float64

	lfc LfcState
}

// NewInjectionContext borrows frameGen (required) and lowLatency
// (optional).
func NewInjectionContext(config InjectionConfig, frameGen *FrameGenerator, lowLatency *LowLatencyContext) *InjectionContext {
	if frameGen == nil {
		return nil
	}
	c := &InjectionContext{
		config:     config,
		frameGen:   frameGen,
		lowLatency: lowLatency,
		enabled:    config.Mode != InjectionDisabled,
		intervals:  container.NewRing[uint64](presentIntervalWindow),
	}
	if config.Timing == TimingAdaptive && config.Vrr.Enabled {
		c.config.Timing = TimingVrr
	}
	c.noCopy.init()
	return c
}

func (c *InjectionContext) Destroy() {
	c.noCopy.check()
	c.noCopy.close()
}

func (c *InjectionContext) SetEnabled(enabled bool) {
	c.noCopy.check()
	c.enabled = enabled && c.config.Mode != InjectionDisabled
}

func (c *InjectionContext) Enabled() bool {
	c.noCopy.check()
	return c.enabled
}

func (c *InjectionContext) SetMode(mode InjectionMode) {
	c.noCopy.check()
	c.config.Mode = mode
	c.enabled = c.enabled && mode != InjectionDisabled
}

// SetVrrConfig installs the display descriptor. An adaptive context
// auto-switches to VRR timing when the display supports it.
func (c *InjectionContext) SetVrrConfig(vrr VrrConfig) {
	c.noCopy.check()
	c.config.Vrr = vrr
	if c.config.Timing == TimingAdaptive && vrr.Enabled {
		c.config.Timing = TimingVrr
	}
}

func (c *InjectionContext) Config() InjectionConfig {
	c.noCopy.check()
	return c.config
}

// ShouldInject reports whether the next synthesized frame goes out:
// injection is on, the display driver is not already doubling frames, the
// generator is confident, and the last pair was not a scene cut.
func (c *InjectionContext) ShouldInject() bool {
	c.noCopy.check()
	if !c.enabled || c.lfc.ShouldPauseInjection() {
		return false
	}
	stats := c.frameGen.Stats()
	return stats.Confidence >= c.config.MinConfidence && !stats.SceneChangeDetected
}

// CalculateInjectionTimingUs is the delay from the real present to the
// injected one.
func (c *InjectionContext) CalculateInjectionTimingUs() uint64 {
	c.noCopy.check()
	switch c.config.Timing {
	case TimingFixed:
		if c.config.TargetFPS == 0 {
			return adaptiveFallbackUs
		}
		return 1_000_000 / uint64(c.config.TargetFPS) / 2
	case TimingVrr:
		avg := c.avgPresentIntervalUs
		if avg == 0 {
			avg = 2 * adaptiveFallbackUs
		}
		return c.config.Vrr.CalculateInjectionIntervalUs(avg)
	default: // TimingAdaptive
		if c.avgPresentIntervalUs == 0 {
			return adaptiveFallbackUs
		}
		return c.avgPresentIntervalUs / 2
	}
}

// RecordPresent notes a present at the current monotonic instant.
func (c *InjectionContext) RecordPresent(isGenerated bool) {
	c.recordPresentAt(uint64(time.Now().UnixNano()/1_000), isGenerated)
}

func (c *InjectionContext) recordPresentAt(nowUs uint64, isGenerated bool) {
	c.noCopy.check()

	if c.lastPresentTimeUs != 0 && nowUs > c.lastPresentTimeUs {
		c.intervals.Push(nowUs - c.lastPresentTimeUs)
		c.recomputeAverages()
	}
	c.lastPresentTimeUs = nowUs

	if isGenerated {
		c.generatedFrames++
		return
	}

	c.realFrames++
	c.frameNumber++
	if c.config.Vrr.Enabled {
		c.lfc.Update(c.effectiveFPS, c.config.Vrr, c.frameNumber)
	}
}

// The interval ring legitimately holds zero slots before it fills; the
// average runs over written, non-zero entries only.
func (c *InjectionContext) recomputeAverages() {
	var sum uint64
	var n uint64
	for _, interval := range c.intervals.Raw() {
		if interval == 0 {
			continue
		}
		sum += interval
		n++
	}
	if n == 0 {
		c.avgPresentIntervalUs = 0
		c.effectiveFPS = 0
		return
	}
	c.avgPresentIntervalUs = sum / n
	c.effectiveFPS = 1_000_000 / float64(c.avgPresentIntervalUs)
}

// RecordSkipped counts a frame the generator declined.
func (c *InjectionContext) RecordSkipped() {
	c.noCopy.check()
	c.skippedFrames++
}

func (c *InjectionContext) Stats() InjectionStats {
	c.noCopy.check()
	return InjectionStats{
		RealFrames:           c.realFrames,
		GeneratedFrames:      c.generatedFrames,
		SkippedFrames:        c.skippedFrames,
		AvgPresentIntervalUs: c.avgPresentIntervalUs,
		EffectiveFPS:         c.effectiveFPS,
	}
}

func (c *InjectionContext) LfcState() LfcState {
	c.noCopy.check()
	return c.lfc
}
