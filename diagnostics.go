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
	"fmt"
	"os"
	"strings"
	"time"

	"goarrg.com/debug"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// CheckpointTag is a predefined checkpoint value for common command-buffer
// operations. Tags ride the checkpoint marker pointer as a machine-word
// integer; the value ranges are part of the wire contract.
type CheckpointTag uint16

const (
	CheckpointFrameStart CheckpointTag = 0x1000
	CheckpointFrameEnd   CheckpointTag = 0x1001

	CheckpointDrawStart CheckpointTag = 0x2000
	CheckpointDrawEnd   CheckpointTag = 0x2001

	CheckpointComputeStart CheckpointTag = 0x3000
	CheckpointComputeEnd   CheckpointTag = 0x3001

	CheckpointTransferStart CheckpointTag = 0x4000
	CheckpointTransferEnd   CheckpointTag = 0x4001

	CheckpointRenderPassBegin CheckpointTag = 0x5000
	CheckpointRenderPassEnd   CheckpointTag = 0x5001

	CheckpointBindPipeline      CheckpointTag = 0x6000
	CheckpointBindDescriptorSet CheckpointTag = 0x6001
	CheckpointBindVertexBuffer  CheckpointTag = 0x6002
	CheckpointBindIndexBuffer   CheckpointTag = 0x6003
	CheckpointPushConstants     CheckpointTag = 0x6004

	CheckpointBarrier CheckpointTag = 0x7000
	CheckpointClear   CheckpointTag = 0x7001
	CheckpointCopy    CheckpointTag = 0x7002
	CheckpointBlit    CheckpointTag = 0x7003
	CheckpointResolve CheckpointTag = 0x7004

	CheckpointQueryBegin CheckpointTag = 0x8000
	CheckpointQueryEnd   CheckpointTag = 0x8001
	CheckpointTimestamp  CheckpointTag = 0x8002

	CheckpointDebugMarkerBegin CheckpointTag = 0x9000
	CheckpointDebugMarkerEnd   CheckpointTag = 0x9001
)

var checkpointTagNames = map[CheckpointTag]string{
	CheckpointFrameStart:        "FrameStart",
	CheckpointFrameEnd:          "FrameEnd",
	CheckpointDrawStart:         "DrawStart",
	CheckpointDrawEnd:           "DrawEnd",
	CheckpointComputeStart:      "ComputeStart",
	CheckpointComputeEnd:        "ComputeEnd",
	CheckpointTransferStart:     "TransferStart",
	CheckpointTransferEnd:       "TransferEnd",
	CheckpointRenderPassBegin:   "RenderPassBegin",
	CheckpointRenderPassEnd:     "RenderPassEnd",
	CheckpointBindPipeline:      "BindPipeline",
	CheckpointBindDescriptorSet: "BindDescriptorSet",
	CheckpointBindVertexBuffer:  "BindVertexBuffer",
	CheckpointBindIndexBuffer:   "BindIndexBuffer",
	CheckpointPushConstants:     "PushConstants",
	CheckpointBarrier:           "Barrier",
	CheckpointClear:             "Clear",
	CheckpointCopy:              "Copy",
	CheckpointBlit:              "Blit",
	CheckpointResolve:           "Resolve",
	CheckpointQueryBegin:        "QueryBegin",
	CheckpointQueryEnd:          "QueryEnd",
	CheckpointTimestamp:         "Timestamp",
	CheckpointDebugMarkerBegin:  "DebugMarkerBegin",
	CheckpointDebugMarkerEnd:    "DebugMarkerEnd",
}

func (t CheckpointTag) String() string {
	if name, ok := checkpointTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CheckpointTag(%s)", toHex(uint16(t)))
}

// tagPointer is a checkpoint marker pointer carrying an encoded tag. The
// driver stores it as an opaque machine word; the core never mixes it up
// with a real pointer.
type tagPointer uintptr

func newTagPointer(t CheckpointTag) tagPointer {
	return tagPointer(t)
}

// tag recovers the encoded tag, reporting false for values outside the
// defined range.
func (p tagPointer) tag() (CheckpointTag, bool) {
	if p > tagPointer(^uint16(0)) {
		return 0, false
	}
	t := CheckpointTag(p)
	_, ok := checkpointTagNames[t]
	return t, ok
}

// CheckpointTagFromPointer decodes an opaque checkpoint marker back into a
// tag, if it is one.
func CheckpointTagFromPointer(marker uintptr) (CheckpointTag, bool) {
	return tagPointer(marker).tag()
}

// PipelineStage is the coarse pipeline position a checkpoint was observed
// at.
type PipelineStage int32

const (
	PipelineStageUnknown PipelineStage = iota
	PipelineStageTopOfPipe
	PipelineStageDrawIndirect
	PipelineStageVertexInput
	PipelineStageVertexShader
	PipelineStageFragmentShader
	PipelineStageComputeShader
	PipelineStageTransfer
	PipelineStageBottomOfPipe
	PipelineStageAllGraphics
	PipelineStageAllCommands
)

func (s PipelineStage) String() string {
	switch s {
	case PipelineStageTopOfPipe:
		return "TopOfPipe"
	case PipelineStageDrawIndirect:
		return "DrawIndirect"
	case PipelineStageVertexInput:
		return "VertexInput"
	case PipelineStageVertexShader:
		return "VertexShader"
	case PipelineStageFragmentShader:
		return "FragmentShader"
	case PipelineStageComputeShader:
		return "ComputeShader"
	case PipelineStageTransfer:
		return "Transfer"
	case PipelineStageBottomOfPipe:
		return "BottomOfPipe"
	case PipelineStageAllGraphics:
		return "AllGraphics"
	case PipelineStageAllCommands:
		return "AllCommands"
	default:
		return "Unknown"
	}
}

// pipelineStageFromFlags maps a stage bitmask to the highest-priority
// stage that is set. Priority runs compute, fragment, vertex,
// vertex-input, draw-indirect, top-of-pipe, transfer, bottom-of-pipe,
// all-graphics, all-commands.
func pipelineStageFromFlags(flags vk.PipelineStageFlags) PipelineStage {
	switch {
	case hasBits(flags, vk.PIPELINE_STAGE_COMPUTE_SHADER_BIT):
		return PipelineStageComputeShader
	case hasBits(flags, vk.PIPELINE_STAGE_FRAGMENT_SHADER_BIT):
		return PipelineStageFragmentShader
	case hasBits(flags, vk.PIPELINE_STAGE_VERTEX_SHADER_BIT):
		return PipelineStageVertexShader
	case hasBits(flags, vk.PIPELINE_STAGE_VERTEX_INPUT_BIT):
		return PipelineStageVertexInput
	case hasBits(flags, vk.PIPELINE_STAGE_DRAW_INDIRECT_BIT):
		return PipelineStageDrawIndirect
	case hasBits(flags, vk.PIPELINE_STAGE_TOP_OF_PIPE_BIT):
		return PipelineStageTopOfPipe
	case hasBits(flags, vk.PIPELINE_STAGE_TRANSFER_BIT):
		return PipelineStageTransfer
	case hasBits(flags, vk.PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT):
		return PipelineStageBottomOfPipe
	case hasBits(flags, vk.PIPELINE_STAGE_ALL_GRAPHICS_BIT):
		return PipelineStageAllGraphics
	case hasBits(flags, vk.PIPELINE_STAGE_ALL_COMMANDS_BIT):
		return PipelineStageAllCommands
	default:
		return PipelineStageUnknown
	}
}

// CheckpointData is one checkpoint recovered after device loss.
type CheckpointData struct {
	Stage  PipelineStage
	Marker uintptr
}

// Tag decodes the marker, reporting false when it is not a known tag.
func (c CheckpointData) Tag() (CheckpointTag, bool) {
	return CheckpointTagFromPointer(c.Marker)
}

// DiagnosticsConfig composes the VK_NV_device_diagnostics_config flags
// chained into device creation.
type DiagnosticsConfig struct {
	ShaderDebugInfo      bool
	ResourceTracking     bool
	AutomaticCheckpoints bool
	ShaderErrorReporting bool
}

func (c DiagnosticsConfig) Flags() vk.DeviceDiagnosticsConfigFlagsNV {
	var flags vk.DeviceDiagnosticsConfigFlagsNV
	if c.ShaderDebugInfo {
		flags |= vk.DEVICE_DIAGNOSTICS_CONFIG_ENABLE_SHADER_DEBUG_INFO_BIT_NV
	}
	if c.ResourceTracking {
		flags |= vk.DEVICE_DIAGNOSTICS_CONFIG_ENABLE_RESOURCE_TRACKING_BIT_NV
	}
	if c.AutomaticCheckpoints {
		flags |= vk.DEVICE_DIAGNOSTICS_CONFIG_ENABLE_AUTOMATIC_CHECKPOINTS_BIT_NV
	}
	if c.ShaderErrorReporting {
		flags |= vk.DEVICE_DIAGNOSTICS_CONFIG_ENABLE_SHADER_ERROR_REPORTING_BIT_NV
	}
	return flags
}

// FullDiagnosticsConfig enables every diagnostics feature.
func FullDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		ShaderDebugInfo:      true,
		ResourceTracking:     true,
		AutomaticCheckpoints: true,
		ShaderErrorReporting: true,
	}
}

// MinimalDiagnosticsConfig enables automatic checkpoints only.
func MinimalDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{AutomaticCheckpoints: true}
}

// DiagnosticsContext inserts command-buffer checkpoints and recovers the
// last-reached ones per queue after device loss.
type DiagnosticsContext struct {
	noCopy   noCopy
	dispatch *DeviceDispatch
}

func NewDiagnosticsContext(dispatch *DeviceDispatch) *DiagnosticsContext {
	if dispatch == nil {
		return nil
	}
	ctx := &DiagnosticsContext{dispatch: dispatch}
	ctx.noCopy.init()
	return ctx
}

func (c *DiagnosticsContext) Destroy() {
	c.noCopy.check()
	c.noCopy.close()
}

func (c *DiagnosticsContext) IsSupported() bool {
	c.noCopy.check()
	return c.dispatch.HasDiagnosticCheckpoints()
}

// SetCheckpoint stamps an opaque marker. Silent no-op without the
// extension.
func (c *DiagnosticsContext) SetCheckpoint(cmd vk.CommandBuffer, marker uintptr) {
	c.noCopy.check()
	c.dispatch.CmdSetCheckpoint(cmd, marker)
}

// SetTaggedCheckpoint stamps a predefined tag.
func (c *DiagnosticsContext) SetTaggedCheckpoint(cmd vk.CommandBuffer, tag CheckpointTag) {
	c.noCopy.check()
	c.SetCheckpoint(cmd, uintptr(newTagPointer(tag)))
}

// GetCheckpoints retrieves the checkpoints last reached on queue,
// two-call pattern. Meaningful only after device loss.
func (c *DiagnosticsContext) GetCheckpoints(queue vk.Queue) []CheckpointData {
	c.noCopy.check()
	if !c.dispatch.HasDiagnosticCheckpoints() {
		return nil
	}

	var count uint32
	c.dispatch.GetQueueCheckpointData(queue, &count, nil)
	if count == 0 {
		return nil
	}

	raw := make([]vk.CheckpointDataNV, count)
	for i := range raw {
		raw[i].SType = vk.STRUCTURE_TYPE_CHECKPOINT_DATA_NV
	}
	c.dispatch.GetQueueCheckpointData(queue, &count, &raw[0])

	out := make([]CheckpointData, 0, count)
	for i := range raw[:count] {
		out = append(out, CheckpointData{
			Stage:  pipelineStageFromFlags(raw[i].Stage),
			Marker: uintptr(raw[i].PCheckpointMarker),
		})
	}
	return out
}

// CrashDump is the post-device-lost checkpoint capture.
type CrashDump struct {
	Timestamp   time.Time
	Checkpoints []CheckpointData
}

// GenerateCrashDump captures queue's checkpoint list. Call after the
// driver reported device loss.
func GenerateCrashDump(ctx *DiagnosticsContext, queue vk.Queue) *CrashDump {
	return &CrashDump{
		Timestamp:   time.Now(),
		Checkpoints: ctx.GetCheckpoints(queue),
	}
}

// LastStage is the stage of the chronologically last checkpoint, Unknown
// when the capture is empty.
func (d *CrashDump) LastStage() PipelineStage {
	if len(d.Checkpoints) == 0 {
		return PipelineStageUnknown
	}
	return d.Checkpoints[len(d.Checkpoints)-1].Stage
}

// LastTag is the tag of the chronologically last checkpoint, if it had
// one.
func (d *CrashDump) LastTag() (CheckpointTag, bool) {
	if len(d.Checkpoints) == 0 {
		return 0, false
	}
	return d.Checkpoints[len(d.Checkpoints)-1].Tag()
}

// Format renders a human-readable report.
func (d *CrashDump) Format() string {
	sb := strings.Builder{}
	sb.WriteString("=== nvvk GPU crash dump ===\n")
	sb.WriteString(fmt.Sprintf("time: %s\n", d.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("checkpoints: %d\n", len(d.Checkpoints)))

	for i, cp := range d.Checkpoints {
		if tag, ok := cp.Tag(); ok {
			sb.WriteString(fmt.Sprintf("  [%d] stage=%s tag=%s\n", i, cp.Stage, tag))
		} else {
			sb.WriteString(fmt.Sprintf("  [%d] stage=%s marker=%s\n", i, cp.Stage, toHex(cp.Marker)))
		}
	}

	if tag, ok := d.LastTag(); ok {
		sb.WriteString(fmt.Sprintf("last reached: %s at %s\n", tag, d.LastStage()))
	} else {
		sb.WriteString(fmt.Sprintf("last reached: %s\n", d.LastStage()))
	}
	return sb.String()
}

// WriteToFile writes the formatted report.
func (d *CrashDump) WriteToFile(path string) error {
	if err := os.WriteFile(path, []byte(d.Format()), 0o644); err != nil {
		return debug.ErrorWrapf(err, "writing crash dump")
	}
	logger.IPrintf("crash dump written to %s", path)
	return nil
}
