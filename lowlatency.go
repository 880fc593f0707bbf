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
	"github.com/GhostKellz/nvvk/internal/vk"
)

// Marker is a frame-phase tag stamped against the current present ID.
type Marker int32

const (
	MarkerSimulationStart            Marker = Marker(vk.LATENCY_MARKER_SIMULATION_START_NV)
	MarkerSimulationEnd              Marker = Marker(vk.LATENCY_MARKER_SIMULATION_END_NV)
	MarkerRenderSubmitStart          Marker = Marker(vk.LATENCY_MARKER_RENDERSUBMIT_START_NV)
	MarkerRenderSubmitEnd            Marker = Marker(vk.LATENCY_MARKER_RENDERSUBMIT_END_NV)
	MarkerPresentStart               Marker = Marker(vk.LATENCY_MARKER_PRESENT_START_NV)
	MarkerPresentEnd                 Marker = Marker(vk.LATENCY_MARKER_PRESENT_END_NV)
	MarkerInputSample                Marker = Marker(vk.LATENCY_MARKER_INPUT_SAMPLE_NV)
	MarkerTriggerFlash               Marker = Marker(vk.LATENCY_MARKER_TRIGGER_FLASH_NV)
	MarkerOutOfBandRenderSubmitStart Marker = Marker(vk.LATENCY_MARKER_OUT_OF_BAND_RENDERSUBMIT_START_NV)
	MarkerOutOfBandRenderSubmitEnd   Marker = Marker(vk.LATENCY_MARKER_OUT_OF_BAND_RENDERSUBMIT_END_NV)
	MarkerOutOfBandPresentStart      Marker = Marker(vk.LATENCY_MARKER_OUT_OF_BAND_PRESENT_START_NV)
	MarkerOutOfBandPresentEnd        Marker = Marker(vk.LATENCY_MARKER_OUT_OF_BAND_PRESENT_END_NV)
)

func (m Marker) String() string {
	switch m {
	case MarkerSimulationStart:
		return "SimulationStart"
	case MarkerSimulationEnd:
		return "SimulationEnd"
	case MarkerRenderSubmitStart:
		return "RenderSubmitStart"
	case MarkerRenderSubmitEnd:
		return "RenderSubmitEnd"
	case MarkerPresentStart:
		return "PresentStart"
	case MarkerPresentEnd:
		return "PresentEnd"
	case MarkerInputSample:
		return "InputSample"
	case MarkerTriggerFlash:
		return "TriggerFlash"
	case MarkerOutOfBandRenderSubmitStart:
		return "OutOfBandRenderSubmitStart"
	case MarkerOutOfBandRenderSubmitEnd:
		return "OutOfBandRenderSubmitEnd"
	case MarkerOutOfBandPresentStart:
		return "OutOfBandPresentStart"
	case MarkerOutOfBandPresentEnd:
		return "OutOfBandPresentEnd"
	default:
		return "Unknown"
	}
}

// ModeConfig is the low latency sleep mode submitted to the driver.
// MinimumIntervalUs of 0 means uncapped.
type ModeConfig struct {
	Enabled           bool
	Boost             bool
	MinimumIntervalUs uint32
}

// TargetFPS caps the frame rate at fps. 0 leaves the interval uncapped.
func TargetFPS(fps uint32) ModeConfig {
	m := ModeConfig{Enabled: true, Boost: true}
	if fps > 0 {
		m.MinimumIntervalUs = 1_000_000 / fps
	}
	return m
}

// FrameTimings is the driver-reported per-frame timing record. Field order
// is the wire layout: the present ID followed by 11 microsecond timestamps,
// no padding. A zero field means "not reported" and derived quantities over
// such fields are 0.
type FrameTimings struct {
	PresentID               uint64
	InputSampleTimeUs       uint64
	SimStartTimeUs          uint64
	SimEndTimeUs            uint64
	RenderSubmitStartTimeUs uint64
	RenderSubmitEndTimeUs   uint64
	PresentStartTimeUs      uint64
	PresentEndTimeUs        uint64
	DriverStartTimeUs       uint64
	DriverEndTimeUs         uint64
	GpuRenderStartTimeUs    uint64
	GpuRenderEndTimeUs      uint64
}

func span(start, end uint64) uint64 {
	if start == 0 || end == 0 || end < start {
		return 0
	}
	return end - start
}

// TotalLatencyUs is input sample to present end.
func (t *FrameTimings) TotalLatencyUs() uint64 {
	return span(t.InputSampleTimeUs, t.PresentEndTimeUs)
}

func (t *FrameTimings) SimTimeUs() uint64 {
	return span(t.SimStartTimeUs, t.SimEndTimeUs)
}

func (t *FrameTimings) GpuRenderTimeUs() uint64 {
	return span(t.GpuRenderStartTimeUs, t.GpuRenderEndTimeUs)
}

func (t *FrameTimings) DriverTimeUs() uint64 {
	return span(t.DriverStartTimeUs, t.DriverEndTimeUs)
}

// LowLatencyContext drives VK_NV_low_latency2 for one swapchain: mode
// configuration, the monotonic present-ID counter, marker stamping, the
// optimal-sleep request and timings retrieval. Single producer; wrap in
// SafeLowLatencyContext for shared use.
type LowLatencyContext struct {
	noCopy    noCopy
	dispatch  *DeviceDispatch
	swapchain vk.SwapchainKHR

	mode      ModeConfig
	presentID uint64
	stats     LatencyStats
}

// NewLowLatencyContext wraps swapchain. The context is always constructed;
// IsSupported reports whether the extension surface resolved.
func NewLowLatencyContext(dispatch *DeviceDispatch, swapchain vk.SwapchainKHR) *LowLatencyContext {
	if dispatch == nil {
		return nil
	}
	ctx := &LowLatencyContext{dispatch: dispatch, swapchain: swapchain}
	ctx.noCopy.init()
	logger.VPrintf("low latency context for swapchain %s, supported=%t",
		toHex(uint64(swapchain)), ctx.IsSupported())
	return ctx
}

func (c *LowLatencyContext) Destroy() {
	c.noCopy.check()
	c.noCopy.close()
}

func (c *LowLatencyContext) IsSupported() bool {
	c.noCopy.check()
	return c.dispatch.HasLowLatency2()
}

// SetMode submits mode to the driver and stores it on success.
func (c *LowLatencyContext) SetMode(mode ModeConfig) error {
	c.noCopy.check()
	info := vk.LatencySleepModeInfoNV{
		SType:             vk.STRUCTURE_TYPE_LATENCY_SLEEP_MODE_INFO_NV,
		MinimumIntervalUs: mode.MinimumIntervalUs,
	}
	if mode.Enabled {
		info.LowLatencyMode = vk.TRUE
	}
	if mode.Boost {
		info.LowLatencyBoost = vk.TRUE
	}
	if err := c.dispatch.SetLatencySleepMode(c.swapchain, &info); err != nil {
		return err
	}
	c.mode = mode
	return nil
}

// Enable turns on low latency mode. minIntervalUs of 0 is uncapped.
func (c *LowLatencyContext) Enable(boost bool, minIntervalUs uint32) error {
	return c.SetMode(ModeConfig{Enabled: true, Boost: boost, MinimumIntervalUs: minIntervalUs})
}

func (c *LowLatencyContext) Disable() error {
	return c.SetMode(ModeConfig{})
}

func (c *LowLatencyContext) Mode() ModeConfig {
	c.noCopy.check()
	return c.mode
}

// Sleep asks the driver to signal semaphore at value at the optimal
// frame-start instant. The CPU thread is not blocked here; the caller
// waits on the timeline semaphore.
func (c *LowLatencyContext) Sleep(semaphore vk.Semaphore, value uint64) error {
	c.noCopy.check()
	info := vk.LatencySleepInfoNV{
		SType:           vk.STRUCTURE_TYPE_LATENCY_SLEEP_INFO_NV,
		SignalSemaphore: semaphore,
		Value:           value,
	}
	return c.dispatch.LatencySleep(c.swapchain, &info)
}

// SetMarker stamps marker at the current present ID. Silent no-op when the
// extension is absent. Phase ordering is the caller's responsibility.
func (c *LowLatencyContext) SetMarker(marker Marker) {
	c.noCopy.check()
	info := vk.SetLatencyMarkerInfoNV{
		SType:     vk.STRUCTURE_TYPE_SET_LATENCY_MARKER_INFO_NV,
		PresentID: c.presentID,
		Marker:    vk.LatencyMarkerNV(marker),
	}
	c.dispatch.SetLatencyMarker(c.swapchain, &info)
}

// BeginFrame advances the present ID and stamps the simulation start
// marker. Returns the new present ID; the counter starts at 1.
func (c *LowLatencyContext) BeginFrame() uint64 {
	c.noCopy.check()
	c.presentID++
	c.SetMarker(MarkerSimulationStart)
	return c.presentID
}

func (c *LowLatencyContext) EndSimulation()     { c.SetMarker(MarkerSimulationEnd) }
func (c *LowLatencyContext) BeginRenderSubmit() { c.SetMarker(MarkerRenderSubmitStart) }
func (c *LowLatencyContext) EndRenderSubmit()   { c.SetMarker(MarkerRenderSubmitEnd) }
func (c *LowLatencyContext) BeginPresent()      { c.SetMarker(MarkerPresentStart) }
func (c *LowLatencyContext) EndPresent()        { c.SetMarker(MarkerPresentEnd) }
func (c *LowLatencyContext) MarkInputSample()   { c.SetMarker(MarkerInputSample) }
func (c *LowLatencyContext) TriggerFlash()      { c.SetMarker(MarkerTriggerFlash) }

// CurrentFrameID is the present ID of the frame in flight, 0 before the
// first BeginFrame.
func (c *LowLatencyContext) CurrentFrameID() uint64 {
	c.noCopy.check()
	return c.presentID
}

// GetTimings retrieves driver-reported frame timings, two-call pattern.
// Records with unreported fields come back verbatim. Total latencies of
// complete records feed the rolling statistics.
func (c *LowLatencyContext) GetTimings(max uint32) []FrameTimings {
	c.noCopy.check()
	if !c.dispatch.HasLowLatency2() || max == 0 {
		return nil
	}

	info := vk.GetLatencyMarkerInfoNV{SType: vk.STRUCTURE_TYPE_GET_LATENCY_MARKER_INFO_NV}
	c.dispatch.GetLatencyTimings(c.swapchain, &info)
	count := min(info.TimingCount, max)
	if count == 0 {
		return nil
	}

	reports := make([]vk.LatencyTimingsFrameReportNV, count)
	for i := range reports {
		reports[i].SType = vk.STRUCTURE_TYPE_LATENCY_TIMINGS_FRAME_REPORT_NV
	}
	info.TimingCount = count
	info.PTimings = &reports[0]
	c.dispatch.GetLatencyTimings(c.swapchain, &info)

	out := make([]FrameTimings, 0, count)
	for i := range reports[:info.TimingCount] {
		r := &reports[i]
		t := FrameTimings{
			PresentID:               r.PresentID,
			InputSampleTimeUs:       r.InputSampleTimeUs,
			SimStartTimeUs:          r.SimStartTimeUs,
			SimEndTimeUs:            r.SimEndTimeUs,
			RenderSubmitStartTimeUs: r.RenderSubmitStartTimeUs,
			RenderSubmitEndTimeUs:   r.RenderSubmitEndTimeUs,
			PresentStartTimeUs:      r.PresentStartTimeUs,
			PresentEndTimeUs:        r.PresentEndTimeUs,
			DriverStartTimeUs:       r.DriverStartTimeUs,
			DriverEndTimeUs:         r.DriverEndTimeUs,
			GpuRenderStartTimeUs:    r.GpuRenderStartTimeUs,
			GpuRenderEndTimeUs:      r.GpuRenderEndTimeUs,
		}
		if l := t.TotalLatencyUs(); l > 0 {
			c.stats.Insert(l)
		}
		out = append(out, t)
	}
	return out
}

// Stats exposes the rolling latency statistics fed by GetTimings.
func (c *LowLatencyContext) Stats() *LatencyStats {
	c.noCopy.check()
	return &c.stats
}
