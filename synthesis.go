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
	"unsafe"

	"goarrg.com/debug"

	"github.com/GhostKellz/nvvk/internal/vk"
)

// Motion vectors are signed 16-bit fixed point, S10.5: 1/32 pixel per
// integer unit.

func S10_5ToFloat(v int16) float32 {
	return float32(v) / 32.0
}

func FloatToS10_5(v float32) int16 {
	return int16(v * 32.0)
}

// SynthesisQuality selects the interpolation pipeline.
type SynthesisQuality int32

const (
	// SynthesisPerformance forward-warps the previous frame and blends
	// linearly with the current one.
	SynthesisPerformance SynthesisQuality = iota
	// SynthesisBalanced adds a second warp at 1-t that reads the forward
	// flow field with its direction reversed, then blends. The backward
	// flow output is not bound to the synthesis kernels.
	SynthesisBalanced
	// SynthesisQualityFull adds cost-weighted confidence blending and a
	// disocclusion fill pass.
	SynthesisQualityFull
)

func (q SynthesisQuality) String() string {
	switch q {
	case SynthesisPerformance:
		return "Performance"
	case SynthesisBalanced:
		return "Balanced"
	case SynthesisQualityFull:
		return "Quality"
	default:
		return "Unknown"
	}
}

// Push constant layouts, 16 bytes each. These are the caller-visible wire
// contract with the compute kernels.
type WarpPushConstants struct {
	MVScaleX      float32
	MVScaleY      float32
	Interpolation float32
	Direction     float32
}

type BlendPushConstants struct {
	Weight float32
	_      [3]float32
}

type ConfidenceBlendPushConstants struct {
	Interpolation float32
	CostScale     float32
	MinConfidence float32
	_             float32
}

type OcclusionFillPushConstants struct {
	OcclusionThreshold float32
	FillRadius         float32
	Interpolation      float32
	_                  float32
}

// Descriptor bindings. 0..3 are combined image samplers, 4 is a storage
// image; all compute-visible.
const (
	synthBindingInputPrev     = 0
	synthBindingInputCurr     = 1
	synthBindingMotionVectors = 2
	synthBindingCostMap       = 3
	synthBindingOutput        = 4
)

const synthLocalSize = 16

// SynthesisShaders carries the SPIR-V for the interpolation kernels. The
// words are opaque here; only the binding and push-constant contracts
// above are assumed. Kernels a quality level does not use may be empty.
type SynthesisShaders struct {
	ForwardWarp     []uint32
	BackwardWarp    []uint32
	Blend           []uint32
	ConfidenceBlend []uint32
	OcclusionFill   []uint32
}

// SynthesisConfig describes the interpolation target. Output is the
// caller-owned storage image synthesized frames land in; Sampler is the
// caller-owned sampler for the input bindings.
type SynthesisConfig struct {
	Width   uint32
	Height  uint32
	Quality SynthesisQuality

	Interpolation float32 // blend point between the two frames, default 0.5

	Output  FrameImage
	Sampler uint64
}

// Per-quality blend tuning.
type synthTuning struct {
	costScale          float32
	minConfidence      float32
	occlusionThreshold float32
	fillRadius         float32
}

func tuningFor(q SynthesisQuality) synthTuning {
	switch q {
	case SynthesisQualityFull:
		return synthTuning{costScale: 1.0 / 64.0, minConfidence: 0.1, occlusionThreshold: 0.75, fillRadius: 4}
	default:
		return synthTuning{costScale: 1.0 / 64.0, minConfidence: 0.1, occlusionThreshold: 1, fillRadius: 0}
	}
}

// SynthesisContext owns the warp/blend/fill pipelines and the descriptor
// set they share. Pipelines and pool are destroyed with the context;
// images and sampler stay with the caller.
type SynthesisContext struct {
	noCopy   noCopy
	dispatch *DeviceDispatch
	config   SynthesisConfig
	tuning   synthTuning

	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	pool           vk.DescriptorPool
	set            vk.DescriptorSet

	forwardWarp     vk.Pipeline
	backwardWarp    vk.Pipeline
	blend           vk.Pipeline
	confidenceBlend vk.Pipeline
	occlusionFill   vk.Pipeline
}

// NewSynthesisContext builds the pipelines the configured quality level
// needs.
func NewSynthesisContext(dispatch *DeviceDispatch, config SynthesisConfig, shaders SynthesisShaders) (*SynthesisContext, error) {
	if dispatch == nil {
		return nil, ErrInvalidHandle
	}
	if !dispatch.hasCompute() {
		return nil, ErrExtensionNotPresent
	}
	if config.Width == 0 || config.Height == 0 {
		return nil, debug.ErrorWrapf(ErrNotInitialized, "synthesis extent %dx%d", config.Width, config.Height)
	}
	if config.Interpolation <= 0 || config.Interpolation >= 1 {
		config.Interpolation = 0.5
	}

	c := &SynthesisContext{dispatch: dispatch, config: config, tuning: tuningFor(config.Quality)}
	if err := c.createLayouts(); err != nil {
		return nil, err
	}
	if err := c.createPipelines(shaders); err != nil {
		c.destroyObjects()
		return nil, err
	}
	c.writeStaticDescriptors()
	c.noCopy.init()
	return c, nil
}

func (c *SynthesisContext) createLayouts() error {
	bindings := [5]vk.DescriptorSetLayoutBinding{}
	for i := synthBindingInputPrev; i <= synthBindingCostMap; i++ {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
			DescriptorCount: 1,
			StageFlags:      vk.SHADER_STAGE_COMPUTE_BIT,
		}
	}
	bindings[synthBindingOutput] = vk.DescriptorSetLayoutBinding{
		Binding:         synthBindingOutput,
		DescriptorType:  vk.DESCRIPTOR_TYPE_STORAGE_IMAGE,
		DescriptorCount: 1,
		StageFlags:      vk.SHADER_STAGE_COMPUTE_BIT,
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO,
		BindingCount: uint32(len(bindings)),
		PBindings:    &bindings[0],
	}
	if err := c.dispatch.CreateDescriptorSetLayout(&layoutInfo, &c.setLayout); err != nil {
		return debug.ErrorWrapf(err, "creating synthesis descriptor layout")
	}

	pushRange := vk.PushConstantRange{StageFlags: vk.SHADER_STAGE_COMPUTE_BIT, Size: 16}
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO,
		SetLayoutCount:         1,
		PSetLayouts:            &c.setLayout,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    &pushRange,
	}
	if err := c.dispatch.CreatePipelineLayout(&pipelineLayoutInfo, &c.pipelineLayout); err != nil {
		return debug.ErrorWrapf(err, "creating synthesis pipeline layout")
	}

	poolSizes := [2]vk.DescriptorPoolSize{
		{Type: vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER, DescriptorCount: 4},
		{Type: vk.DESCRIPTOR_TYPE_STORAGE_IMAGE, DescriptorCount: 1},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO,
		MaxSets:       1,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    &poolSizes[0],
	}
	if err := c.dispatch.CreateDescriptorPool(&poolInfo, &c.pool); err != nil {
		return debug.ErrorWrapf(err, "creating synthesis descriptor pool")
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO,
		DescriptorPool:     c.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        &c.setLayout,
	}
	if err := c.dispatch.AllocateDescriptorSets(&allocInfo, &c.set); err != nil {
		return debug.ErrorWrapf(err, "allocating synthesis descriptor set")
	}
	return nil
}

var synthEntryPoint = [5]byte{'m', 'a', 'i', 'n', 0}

func (c *SynthesisContext) buildPipeline(spirv []uint32, out *vk.Pipeline) error {
	var module vk.ShaderModule
	moduleInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO,
		CodeSize: uintptr(len(spirv)) * 4,
		PCode:    &spirv[0],
	}
	if err := c.dispatch.CreateShaderModule(&moduleInfo, &module); err != nil {
		return debug.ErrorWrapf(err, "creating synthesis shader module")
	}
	defer c.dispatch.DestroyShaderModule(module)

	info := vk.ComputePipelineCreateInfo{
		SType: vk.STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			Stage:  vk.SHADER_STAGE_COMPUTE_BIT,
			Module: module,
			PName:  &synthEntryPoint[0],
		},
		Layout: c.pipelineLayout,
	}
	if err := c.dispatch.CreateComputePipeline(&info, out); err != nil {
		return debug.ErrorWrapf(err, "creating synthesis pipeline")
	}
	return nil
}

func (c *SynthesisContext) createPipelines(shaders SynthesisShaders) error {
	type kernel struct {
		spirv    []uint32
		out      *vk.Pipeline
		required bool
	}
	quality := c.config.Quality
	kernels := []kernel{
		{shaders.ForwardWarp, &c.forwardWarp, true},
		{shaders.BackwardWarp, &c.backwardWarp, quality >= SynthesisBalanced},
		{shaders.Blend, &c.blend, quality <= SynthesisBalanced},
		{shaders.ConfidenceBlend, &c.confidenceBlend, quality == SynthesisQualityFull},
		{shaders.OcclusionFill, &c.occlusionFill, quality == SynthesisQualityFull},
	}
	for _, k := range kernels {
		if len(k.spirv) == 0 {
			if k.required {
				return debug.ErrorWrapf(ErrNotInitialized, "missing kernel for %s synthesis", quality)
			}
			continue
		}
		if err := c.buildPipeline(k.spirv, k.out); err != nil {
			return err
		}
	}
	return nil
}

// writeStaticDescriptors seeds the slots that never change: the output
// storage image. Input slots are rewritten per synthesize call.
func (c *SynthesisContext) writeStaticDescriptors() {
	imageInfo := vk.DescriptorImageInfo{
		ImageView:   c.config.Output.View,
		ImageLayout: vk.IMAGE_LAYOUT_GENERAL,
	}
	writes := []vk.WriteDescriptorSet{{
		SType:           vk.STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET,
		DstSet:          c.set,
		DstBinding:      synthBindingOutput,
		DescriptorCount: 1,
		DescriptorType:  vk.DESCRIPTOR_TYPE_STORAGE_IMAGE,
		PImageInfo:      &imageInfo,
	}}
	c.dispatch.UpdateDescriptorSets(writes)
}

func (c *SynthesisContext) Destroy() {
	c.noCopy.check()
	c.destroyObjects()
	c.noCopy.close()
}

func (c *SynthesisContext) destroyObjects() {
	c.dispatch.DestroyPipeline(c.forwardWarp)
	c.dispatch.DestroyPipeline(c.backwardWarp)
	c.dispatch.DestroyPipeline(c.blend)
	c.dispatch.DestroyPipeline(c.confidenceBlend)
	c.dispatch.DestroyPipeline(c.occlusionFill)
	c.dispatch.DestroyDescriptorPool(c.pool)
	c.dispatch.DestroyPipelineLayout(c.pipelineLayout)
	c.dispatch.DestroyDescriptorSetLayout(c.setLayout)
}

func (c *SynthesisContext) Config() SynthesisConfig {
	c.noCopy.check()
	return c.config
}

func (c *SynthesisContext) writeInputDescriptors(prev, curr vk.ImageView, motionVectors, costMap vk.ImageView) {
	sampler := vk.Sampler(c.config.Sampler)
	infos := [4]vk.DescriptorImageInfo{
		{Sampler: sampler, ImageView: prev, ImageLayout: vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL},
		{Sampler: sampler, ImageView: curr, ImageLayout: vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL},
		{Sampler: sampler, ImageView: motionVectors, ImageLayout: vk.IMAGE_LAYOUT_GENERAL},
		{Sampler: sampler, ImageView: costMap, ImageLayout: vk.IMAGE_LAYOUT_GENERAL},
	}
	writes := make([]vk.WriteDescriptorSet, 0, 4)
	for i := range infos {
		if infos[i].ImageView == 0 {
			continue
		}
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET,
			DstSet:          c.set,
			DstBinding:      uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
			PImageInfo:      &infos[i],
		})
	}
	c.dispatch.UpdateDescriptorSets(writes)
}

// outputBarrier orders one compute pass against the next on the output
// image.
func (c *SynthesisContext) outputBarrier(cmd vk.CommandBuffer) {
	barrier := vk.ImageMemoryBarrier2{
		SType:         vk.STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2,
		SrcStageMask:  vk.PIPELINE_STAGE_2_COMPUTE_SHADER_BIT,
		SrcAccessMask: vk.ACCESS_2_SHADER_WRITE_BIT,
		DstStageMask:  vk.PIPELINE_STAGE_2_COMPUTE_SHADER_BIT,
		DstAccessMask: vk.ACCESS_2_SHADER_READ_BIT | vk.ACCESS_2_SHADER_WRITE_BIT,
		OldLayout:     vk.IMAGE_LAYOUT_GENERAL,
		NewLayout:     vk.IMAGE_LAYOUT_GENERAL,
		Image:         c.config.Output.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.IMAGE_ASPECT_COLOR_BIT,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	info := vk.DependencyInfo{
		SType:                   vk.STRUCTURE_TYPE_DEPENDENCY_INFO,
		ImageMemoryBarrierCount: 1,
		PImageMemoryBarriers:    &barrier,
	}
	c.dispatch.CmdPipelineBarrier2(cmd, &info)
}

func (c *SynthesisContext) runPass(cmd vk.CommandBuffer, pipeline vk.Pipeline, constants unsafe.Pointer) {
	c.dispatch.CmdBindPipeline(cmd, vk.PIPELINE_BIND_POINT_COMPUTE, pipeline)
	c.dispatch.CmdBindDescriptorSets(cmd, vk.PIPELINE_BIND_POINT_COMPUTE, c.pipelineLayout, c.set)
	c.dispatch.CmdPushConstants(cmd, c.pipelineLayout, vk.SHADER_STAGE_COMPUTE_BIT, constants, 16)
	c.dispatch.CmdDispatch(cmd,
		ceilDiv(c.config.Width, synthLocalSize), ceilDiv(c.config.Height, synthLocalSize), 1)
}

// Synthesize records the interpolation of prev and curr at the configured
// blend point onto cmd and returns the output view. Inputs must match the
// configured extent.
func (c *SynthesisContext) Synthesize(cmd vk.CommandBuffer, prev, curr FrameImage, motionVectors *MotionVectorBuffers) (vk.ImageView, error) {
	c.noCopy.check()
	if prev.isZero() || curr.isZero() || motionVectors == nil {
		return 0, debug.ErrorWrapf(ErrNotInitialized, "missing synthesis input")
	}
	for _, f := range [2]FrameImage{prev, curr} {
		if f.Extent.X != c.config.Width || f.Extent.Y != c.config.Height {
			return 0, debug.ErrorWrapf(ErrFormatNotSupported,
				"frame %dx%d does not match synthesis target %dx%d",
				f.Extent.X, f.Extent.Y, c.config.Width, c.config.Height)
		}
	}

	costView := motionVectors.Cost.View
	c.writeInputDescriptors(prev.View, curr.View, motionVectors.FlowVector.View, costView)

	t := c.config.Interpolation

	// S10.5 units to pixels.
	warp := WarpPushConstants{MVScaleX: 1.0 / 32.0, MVScaleY: 1.0 / 32.0, Interpolation: t, Direction: 1}
	c.runPass(cmd, c.forwardWarp, unsafe.Pointer(&warp))
	c.outputBarrier(cmd)

	if c.config.Quality >= SynthesisBalanced && c.backwardWarp != 0 {
		back := WarpPushConstants{MVScaleX: 1.0 / 32.0, MVScaleY: 1.0 / 32.0, Interpolation: 1 - t, Direction: -1}
		c.runPass(cmd, c.backwardWarp, unsafe.Pointer(&back))
		c.outputBarrier(cmd)
	}

	if c.config.Quality == SynthesisQualityFull {
		blend := ConfidenceBlendPushConstants{
			Interpolation: t,
			CostScale:     c.tuning.costScale,
			MinConfidence: c.tuning.minConfidence,
		}
		c.runPass(cmd, c.confidenceBlend, unsafe.Pointer(&blend))
		c.outputBarrier(cmd)

		fill := OcclusionFillPushConstants{
			OcclusionThreshold: c.tuning.occlusionThreshold,
			FillRadius:         c.tuning.fillRadius,
			Interpolation:      t,
		}
		c.runPass(cmd, c.occlusionFill, unsafe.Pointer(&fill))
	} else {
		blend := BlendPushConstants{Weight: t}
		c.runPass(cmd, c.blend, unsafe.Pointer(&blend))
	}

	return c.config.Output.View, nil
}
