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

	"github.com/GhostKellz/nvvk/internal/vk"
)

// OpticalFlowPerformance selects the driver's speed/quality trade-off.
type OpticalFlowPerformance int32

const (
	OpticalFlowSlow   OpticalFlowPerformance = OpticalFlowPerformance(vk.OPTICAL_FLOW_PERFORMANCE_LEVEL_SLOW_NV)
	OpticalFlowMedium OpticalFlowPerformance = OpticalFlowPerformance(vk.OPTICAL_FLOW_PERFORMANCE_LEVEL_MEDIUM_NV)
	OpticalFlowFast   OpticalFlowPerformance = OpticalFlowPerformance(vk.OPTICAL_FLOW_PERFORMANCE_LEVEL_FAST_NV)
)

func (p OpticalFlowPerformance) String() string {
	switch p {
	case OpticalFlowSlow:
		return "Slow"
	case OpticalFlowMedium:
		return "Medium"
	case OpticalFlowFast:
		return "Fast"
	default:
		return "Unknown"
	}
}

// OpticalFlowBindingPoint names a session image slot.
type OpticalFlowBindingPoint int32

const (
	BindingInput              OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_INPUT_NV)
	BindingReference          OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_REFERENCE_NV)
	BindingHint               OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_HINT_NV)
	BindingFlowVector         OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_FLOW_VECTOR_NV)
	BindingBackwardFlowVector OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_BACKWARD_FLOW_VECTOR_NV)
	BindingCost               OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_COST_NV)
	BindingBackwardCost       OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_BACKWARD_COST_NV)
	BindingGlobalFlow         OpticalFlowBindingPoint = OpticalFlowBindingPoint(vk.OPTICAL_FLOW_SESSION_BINDING_POINT_GLOBAL_FLOW_NV)
)

// OpticalFlowConfig describes a hardware optical flow session. OutputGrid
// is the block edge in pixels, one of 1, 2, 4, 8.
type OpticalFlowConfig struct {
	Width         uint32
	Height        uint32
	OutputGrid    uint32
	Performance   OpticalFlowPerformance
	Bidirectional bool
	CostEnabled   bool
}

func (c *OpticalFlowConfig) validate() error {
	if c.Width == 0 || c.Height == 0 {
		return debug.ErrorWrapf(ErrNotInitialized, "optical flow extent %dx%d", c.Width, c.Height)
	}
	switch c.OutputGrid {
	case 1, 2, 4, 8:
	default:
		return debug.ErrorWrapf(ErrNotInitialized, "optical flow grid %d not in {1,2,4,8}", c.OutputGrid)
	}
	return nil
}

func (c *OpticalFlowConfig) gridBit() vk.OpticalFlowGridSizeFlagsNV {
	switch c.OutputGrid {
	case 1:
		return vk.OPTICAL_FLOW_GRID_SIZE_1X1_BIT_NV
	case 2:
		return vk.OPTICAL_FLOW_GRID_SIZE_2X2_BIT_NV
	case 4:
		return vk.OPTICAL_FLOW_GRID_SIZE_4X4_BIT_NV
	case 8:
		return vk.OPTICAL_FLOW_GRID_SIZE_8X8_BIT_NV
	}
	return 0
}

// OutputSize is the motion-vector field extent: one entry per OutputGrid
// block, partial blocks rounded up.
func (c *OpticalFlowConfig) OutputSize() (uint32, uint32) {
	return ceilDiv(c.Width, c.OutputGrid), ceilDiv(c.Height, c.OutputGrid)
}

// ExecuteFlags for OpticalFlowSession.Execute.
type ExecuteFlags uint32

// ExecuteDisableTemporalHints drops the previous frame's field as the
// search seed. Set it on scene cuts.
const ExecuteDisableTemporalHints ExecuteFlags = ExecuteFlags(vk.OPTICAL_FLOW_EXECUTE_DISABLE_TEMPORAL_HINTS_BIT_NV)

// OpticalFlowSession wraps one VK_NV_optical_flow session object.
type OpticalFlowSession struct {
	noCopy   noCopy
	dispatch *DeviceDispatch
	config   OpticalFlowConfig
	session  vk.OpticalFlowSessionNV
	bound    map[OpticalFlowBindingPoint]bool
}

// NewOpticalFlowSession creates the driver session.
func NewOpticalFlowSession(dispatch *DeviceDispatch, config OpticalFlowConfig) (*OpticalFlowSession, error) {
	if dispatch == nil {
		return nil, ErrInvalidHandle
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	info := vk.OpticalFlowSessionCreateInfoNV{
		SType:            vk.STRUCTURE_TYPE_OPTICAL_FLOW_SESSION_CREATE_INFO_NV,
		Width:            config.Width,
		Height:           config.Height,
		ImageFormat:      vk.FORMAT_R8G8B8A8_UNORM,
		FlowVectorFormat: vk.FORMAT_R16G16_S10_5_NV,
		OutputGridSize:   config.gridBit(),
		PerformanceLevel: vk.OpticalFlowPerformanceLevelNV(config.Performance),
	}
	if config.Bidirectional {
		info.Flags |= vk.OPTICAL_FLOW_SESSION_CREATE_BOTH_DIRECTIONS_BIT_NV
	}
	if config.CostEnabled {
		info.Flags |= vk.OPTICAL_FLOW_SESSION_CREATE_ENABLE_COST_BIT_NV
		info.CostFormat = vk.FORMAT_R8_UINT
	}

	s := &OpticalFlowSession{
		dispatch: dispatch,
		config:   config,
		bound:    map[OpticalFlowBindingPoint]bool{},
	}
	if err := dispatch.CreateOpticalFlowSession(&info, &s.session); err != nil {
		return nil, debug.ErrorWrapf(err, "creating optical flow session %dx%d/%d",
			config.Width, config.Height, config.OutputGrid)
	}
	s.noCopy.init()
	logger.VPrintf("optical flow session %s: %dx%d grid=%d perf=%s bidir=%t cost=%t",
		toHex(uint64(s.session)), config.Width, config.Height, config.OutputGrid,
		config.Performance, config.Bidirectional, config.CostEnabled)
	return s, nil
}

func (s *OpticalFlowSession) Destroy() {
	s.noCopy.check()
	s.dispatch.DestroyOpticalFlowSession(s.session)
	s.session = 0
	s.noCopy.close()
}

func (s *OpticalFlowSession) Config() OpticalFlowConfig {
	s.noCopy.check()
	return s.config
}

// BindImage associates view with one of the session's binding points.
func (s *OpticalFlowSession) BindImage(point OpticalFlowBindingPoint, view vk.ImageView, layout vk.ImageLayout) error {
	s.noCopy.check()
	err := s.dispatch.BindOpticalFlowSessionImage(s.session,
		vk.OpticalFlowSessionBindingPointNV(point), view, layout)
	if err != nil {
		return err
	}
	s.bound[point] = true
	return nil
}

func (s *OpticalFlowSession) requiredBindings() []OpticalFlowBindingPoint {
	req := []OpticalFlowBindingPoint{BindingInput, BindingReference, BindingFlowVector}
	if s.config.Bidirectional {
		req = append(req, BindingBackwardFlowVector)
	}
	if s.config.CostEnabled {
		req = append(req, BindingCost)
		if s.config.Bidirectional {
			req = append(req, BindingBackwardCost)
		}
	}
	return req
}

// Execute records the flow estimation onto cmd. regions of nil estimates
// the whole frame. Every required binding must be bound.
func (s *OpticalFlowSession) Execute(cmd vk.CommandBuffer, regions []Rect2D, flags ExecuteFlags) error {
	s.noCopy.check()
	for _, point := range s.requiredBindings() {
		if !s.bound[point] {
			return debug.ErrorWrapf(ErrNotInitialized, "binding point %d unbound", point)
		}
	}

	info := vk.OpticalFlowExecuteInfoNV{
		SType: vk.STRUCTURE_TYPE_OPTICAL_FLOW_EXECUTE_INFO_NV,
		Flags: vk.OpticalFlowExecuteFlagsNV(flags),
	}
	if len(regions) > 0 {
		info.RegionCount = uint32(len(regions))
		info.PRegions = &regions[0]
	}
	return s.dispatch.CmdOpticalFlowExecute(cmd, s.session, &info)
}
