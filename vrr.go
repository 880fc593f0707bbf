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
	"strings"

	"goarrg.com/debug"
)

// VrrSource records where a VRR descriptor came from.
type VrrSource int32

const (
	VrrSourceNone VrrSource = iota
	VrrSourceDRM
	VrrSourceNvidia
	VrrSourceWayland
	VrrSourceManual
)

func (s VrrSource) String() string {
	switch s {
	case VrrSourceDRM:
		return "drm"
	case VrrSourceNvidia:
		return "nvidia"
	case VrrSourceWayland:
		return "wayland"
	case VrrSourceManual:
		return "manual"
	default:
		return "none"
	}
}

// VrrConfig is the immutable per-display variable refresh descriptor. The
// core consumes the value; how it was discovered is the host's concern.
type VrrConfig struct {
	MinHz        uint32
	MaxHz        uint32
	LfcSupported bool
	Source       VrrSource
	Enabled      bool
	DisplayName  string
}

func (c VrrConfig) Validate() error {
	if c.Source == VrrSourceNone {
		return nil
	}
	if c.MinHz == 0 || c.MaxHz == 0 || c.MinHz > c.MaxHz {
		return debug.ErrorWrapf(ErrParse, "vrr range %d-%d Hz", c.MinHz, c.MaxHz)
	}
	return nil
}

// MinIntervalUs is the shortest present-to-present interval the display
// accepts.
func (c VrrConfig) MinIntervalUs() uint64 {
	if c.MaxHz == 0 {
		return 0
	}
	return 1_000_000 / uint64(c.MaxHz)
}

// MaxIntervalUs is the longest interval before the display falls out of
// range.
func (c VrrConfig) MaxIntervalUs() uint64 {
	if c.MinHz == 0 {
		return 0
	}
	return 1_000_000 / uint64(c.MinHz)
}

func (c VrrConfig) IsInRange(fps float64) bool {
	return fps >= float64(c.MinHz) && fps <= float64(c.MaxHz)
}

// EffectiveMinHz is the lowest source rate the display can track: with
// LFC the driver re-presents, halving the floor.
func (c VrrConfig) EffectiveMinHz() float64 {
	if c.LfcSupported {
		return float64(c.MinHz) / 2
	}
	return float64(c.MinHz)
}

// IsLfcActive reports whether the driver is doubling frames at fps.
func (c VrrConfig) IsLfcActive(fps float64) bool {
	return c.LfcSupported && fps < float64(c.MinHz)
}

// CalculateInjectionIntervalUs places a generated frame halfway into the
// real frame interval, clamped to the display's half-interval range.
func (c VrrConfig) CalculateInjectionIntervalUs(avgFrameTimeUs uint64) uint64 {
	return clamp(avgFrameTimeUs/2, c.MinIntervalUs()/2, c.MaxIntervalUs()/2)
}

// LfcState tracks the display driver's low framerate compensation across
// real frames.
type LfcState struct {
	Active          bool
	TransitionFrame uint64
	DoubledFrames   uint64
}

// Update steps the state with the source rate observed at frameNumber.
func (s *LfcState) Update(fps float64, cfg VrrConfig, frameNumber uint64) {
	active := cfg.IsLfcActive(fps)
	if active != s.Active {
		s.Active = active
		s.TransitionFrame = frameNumber
		if active {
			logger.VPrintf("LFC engaged at %.1f fps (frame %d)", fps, frameNumber)
		} else {
			logger.VPrintf("LFC released at %.1f fps (frame %d)", fps, frameNumber)
		}
	}
	if s.Active {
		s.DoubledFrames++
	}
}

// ShouldPauseInjection: generation stops while the driver itself doubles
// frames.
func (s *LfcState) ShouldPauseInjection() bool {
	return s.Active
}

// DrmSysfsRoot is where connector VRR capability is probed. Overridable
// for tests and containers.
var DrmSysfsRoot = "/sys/class/drm"

// Display ranges are not exposed through sysfs, so discovery falls back
// to the common gaming-display envelope and marks the source so hosts can
// refine it from EDID or the compositor.
const (
	drmFallbackMinHz = 48
	drmFallbackMaxHz = 144
)

// DetectVrrDRM scans DRM connectors for one with VRR capability and
// returns its descriptor. ok is false when none advertises it.
func DetectVrrDRM() (VrrConfig, bool) {
	matches, err := filepath.Glob(filepath.Join(DrmSysfsRoot, "card*-*"))
	if err != nil || len(matches) == 0 {
		return VrrConfig{}, false
	}

	for _, connector := range matches {
		data, err := os.ReadFile(filepath.Join(connector, "vrr_capable"))
		if err != nil || strings.TrimSpace(string(data)) != "1" {
			continue
		}
		status, err := os.ReadFile(filepath.Join(connector, "status"))
		if err == nil && strings.TrimSpace(string(status)) != "connected" {
			continue
		}

		cfg := VrrConfig{
			MinHz:        drmFallbackMinHz,
			MaxHz:        drmFallbackMaxHz,
			LfcSupported: true,
			Source:       VrrSourceDRM,
			Enabled:      true,
			DisplayName:  filepath.Base(connector),
		}
		logger.IPrintf("VRR capable connector %s, assuming %d-%d Hz",
			cfg.DisplayName, cfg.MinHz, cfg.MaxHz)
		return cfg, true
	}
	return VrrConfig{}, false
}
