package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformBuffer(stages ShaderStages) *DescriptorDesc {
	return &DescriptorDesc{Ty: DescriptorUniformBuffer, ArrayCount: 1, Stages: stages, Readonly: true}
}

func mustRuntimeDesc(t *testing.T, sets [][]*DescriptorDesc, ranges []PushConstantsRange) *RuntimePipelineDesc {
	t.Helper()
	desc, err := NewRuntimePipelineDesc(sets, ranges, nil)
	require.NoError(t, err)
	return desc
}

func TestNewPipelineLayoutEmpty(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)

	pl, err := NewPipelineLayout(device, EmptyPipelineDesc{})
	require.NoError(t, err)
	require.NotNil(t, pl.Sys().InternalObject())

	require.Equal(t, 1, len(cmds.pipelineLayoutInfos))
	info := cmds.pipelineLayoutInfos[0]
	assert.Equal(t, vk.StructureTypePipelineLayoutCreateInfo, info.SType)
	assert.Zero(t, info.SetLayoutCount)
	assert.Zero(t, info.PushConstantRangeCount)
	assert.Empty(t, info.PPushConstantRanges)
	assert.Zero(t, len(cmds.setLayoutInfos))

	_, ok := pl.DescriptorSetLayout(0)
	assert.False(t, ok)
	assert.Empty(t, pl.PushConstantRanges())
	assert.Equal(t, int32(2), device.ReferenceCount())

	require.NoError(t, pl.Destroy())
	assert.Equal(t, int32(1), device.ReferenceCount())
}

func TestNewPipelineLayoutTooManySets(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 2, 128)
	desc := mustRuntimeDesc(t, [][]*DescriptorDesc{
		{uniformBuffer(ShaderStageVertex)},
		{uniformBuffer(ShaderStageVertex)},
		{uniformBuffer(ShaderStageVertex)},
	}, nil)

	pl, err := NewPipelineLayout(device, desc)
	require.ErrorIs(t, err, ErrMaxDescriptorSetsLimitExceeded)
	assert.Nil(t, pl)

	assert.Zero(t, len(cmds.pipelineLayoutInfos))
	assert.Equal(t, 3, len(cmds.setLayoutInfos))
	assert.Equal(t, 3, len(cmds.destroyedSetLayouts))
	assert.Zero(t, len(cmds.liveSetLayouts))
	assert.Equal(t, int32(1), device.ReferenceCount())
	assert.Zero(t, len(device.LiveObjects()))
}

func TestNewPipelineLayoutInvalidPushConstants(t *testing.T) {
	tests := []struct {
		name  string
		rng   PushConstantsRange
		isErr error
	}{
		{name: "no stages", rng: PushConstantsRange{Offset: 0, Size: 16}, isErr: ErrInvalidPushConstant},
		{name: "zero size", rng: PushConstantsRange{Offset: 0, Size: 0, Stages: ShaderStageVertex}, isErr: ErrInvalidPushConstant},
		{name: "unaligned size", rng: PushConstantsRange{Offset: 0, Size: 6, Stages: ShaderStageVertex}, isErr: ErrInvalidPushConstant},
		{name: "past the limit", rng: PushConstantsRange{Offset: 120, Size: 16, Stages: ShaderStageVertex}, isErr: ErrMaxPushConstantsSizeExceeded},
		{name: "offset overflow", rng: PushConstantsRange{Offset: ^uint32(0) - 3, Size: 8, Stages: ShaderStageVertex}, isErr: ErrMaxPushConstantsSizeExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := newFakeCommands()
			device := newFakeDevice(cmds, 4, 128)
			desc := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}}, []PushConstantsRange{tt.rng})

			_, err := NewPipelineLayout(device, desc)
			require.ErrorIs(t, err, tt.isErr)
			assert.Zero(t, len(cmds.pipelineLayoutInfos))
			assert.Zero(t, len(cmds.liveSetLayouts))
			assert.Equal(t, int32(1), device.ReferenceCount())
		})
	}
}

func TestNewPipelineLayoutShapeCheckedBeforeLimit(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, nil, []PushConstantsRange{{Offset: 256, Size: 6, Stages: ShaderStageVertex}})

	_, err := NewPipelineLayout(device, desc)
	assert.ErrorIs(t, err, ErrInvalidPushConstant)
}

func TestNewPipelineLayoutSingleRangeReachesDriver(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, nil, []PushConstantsRange{{Offset: 0, Size: 8, Stages: ShaderStageVertex}})

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()

	want := []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       8,
	}}
	require.Equal(t, 1, len(cmds.pipelineLayoutInfos))
	assert.Equal(t, uint32(1), cmds.pipelineLayoutInfos[0].PushConstantRangeCount)
	assert.Equal(t, want, cmds.pipelineLayoutInfos[0].PPushConstantRanges)
	assert.Equal(t, want, pl.PushConstantRanges())
}

func TestNewPipelineLayoutRangeEndingOnLimit(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, nil, []PushConstantsRange{
		{Offset: 0, Size: 64, Stages: ShaderStageVertex},
		{Offset: 64, Size: 64, Stages: ShaderStageFragment},
	})

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()
	assert.Len(t, pl.PushConstantRanges(), 2)
}

func TestNewPipelineLayoutBindingsOfSet(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	sampler := &DescriptorDesc{Ty: DescriptorCombinedImageSampler, ArrayCount: 1, Stages: ShaderStageFragment, Readonly: true}
	storage := &DescriptorDesc{Ty: DescriptorStorageBuffer, ArrayCount: 2, Stages: ShaderStageCompute}
	desc := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex), sampler, storage}}, nil)

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()

	require.Equal(t, 1, len(cmds.setLayoutInfos))
	bindings := cmds.setLayoutInfos[0].PBindings
	require.Len(t, bindings, 3)
	assert.Equal(t, uint32(0), bindings[0].Binding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, bindings[0].DescriptorType)
	assert.Equal(t, uint32(1), bindings[1].Binding)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, bindings[1].DescriptorType)
	assert.Equal(t, uint32(2), bindings[2].Binding)
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, bindings[2].DescriptorType)
	assert.Equal(t, uint32(2), bindings[2].DescriptorCount)

	require.Equal(t, 1, len(cmds.pipelineLayoutInfos))
	assert.Equal(t, uint32(1), cmds.pipelineLayoutInfos[0].SetLayoutCount)

	layout, ok := pl.DescriptorSetLayout(0)
	require.True(t, ok)
	assert.Equal(t, cmds.pipelineLayoutInfos[0].PSetLayouts[0], layout.InternalObject())
	assert.Equal(t, 3, layout.NumBindings())

	_, ok = pl.DescriptorSetLayout(1)
	assert.False(t, ok)
}

func TestNewPipelineLayoutSkipsEmptySlots(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, [][]*DescriptorDesc{{nil, uniformBuffer(ShaderStageVertex)}, {}}, nil)

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()

	require.Equal(t, 2, len(cmds.setLayoutInfos))
	require.Equal(t, 1, len(cmds.setLayoutInfos[0].PBindings))
	assert.Equal(t, uint32(1), cmds.setLayoutInfos[0].PBindings[0].Binding)
	assert.Zero(t, cmds.setLayoutInfos[1].BindingCount)
	assert.Equal(t, uint32(2), cmds.pipelineLayoutInfos[0].SetLayoutCount)
}

func TestNewPipelineLayoutOverlappingStagesPanics(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := &overlappingDesc{ranges: []PushConstantsRange{
		{Offset: 0, Size: 16, Stages: ShaderStageVertex},
		{Offset: 16, Size: 16, Stages: ShaderStageVertex | ShaderStageFragment},
	}}

	assert.Panics(t, func() {
		_, _ = NewPipelineLayout(device, desc)
	})
	assert.Zero(t, len(cmds.pipelineLayoutInfos))
}

func TestNewPipelineLayoutOverlappingUnionReleasesSetLayouts(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	a := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}},
		[]PushConstantsRange{{Offset: 0, Size: 16, Stages: ShaderStageVertex}})
	b := mustRuntimeDesc(t, nil,
		[]PushConstantsRange{{Offset: 16, Size: 16, Stages: ShaderStageVertex}})

	assert.Panics(t, func() {
		_, _ = NewPipelineLayout(device, NewPipelineLayoutDescUnion(a, b))
	})
	assert.Equal(t, 1, len(cmds.setLayoutInfos))
	assert.Zero(t, len(cmds.liveSetLayouts))
	assert.Zero(t, len(cmds.pipelineLayoutInfos))
	assert.Equal(t, int32(1), device.ReferenceCount())
	assert.Zero(t, len(device.LiveObjects()))
}

func TestNewPipelineLayoutSparsePushConstants(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := &sparseRangesDesc{
		count: 4,
		ranges: map[int]PushConstantsRange{
			1: {Offset: 0, Size: 16, Stages: ShaderStageVertex},
			3: {Offset: 16, Size: 8, Stages: ShaderStageFragment},
		},
	}

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()

	want := []vk.PushConstantRange{
		{StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: 0, Size: 16},
		{StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit), Offset: 16, Size: 8},
	}
	require.Equal(t, 1, len(cmds.pipelineLayoutInfos))
	assert.Equal(t, uint32(2), cmds.pipelineLayoutInfos[0].PushConstantRangeCount)
	assert.Equal(t, want, cmds.pipelineLayoutInfos[0].PPushConstantRanges)
	assert.Equal(t, want, pl.PushConstantRanges())
	assert.Equal(t, uint32(24), pl.PushConstantsSize())
}

func TestNewPipelineLayoutForeignSetLayoutPanics(t *testing.T) {
	cmdsA := newFakeCommands()
	deviceA := newFakeDevice(cmdsA, 4, 128)
	cmdsB := newFakeCommands()
	deviceB := newFakeDevice(cmdsB, 4, 128)

	foreign, err := NewDescriptorSetLayout(deviceB, []*DescriptorDesc{uniformBuffer(ShaderStageVertex)})
	require.NoError(t, err)

	inner := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}}, nil)
	desc := NewProvidedSetLayouts(inner, map[int]*DescriptorSetLayout{1: foreign})

	assert.Panics(t, func() {
		_, _ = NewPipelineLayout(deviceA, desc)
	})
	assert.Zero(t, len(cmdsA.pipelineLayoutInfos))
	assert.Zero(t, len(cmdsA.liveSetLayouts))
	assert.Equal(t, int32(1), foreign.ReferenceCount())

	foreign.Release()
	assert.Zero(t, len(cmdsB.liveSetLayouts))
}

func TestNewPipelineLayoutProvidedSetLayout(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)

	shared, err := NewDescriptorSetLayout(device, []*DescriptorDesc{uniformBuffer(ShaderStageVertex)})
	require.NoError(t, err)
	desc := NewProvidedSetLayouts(EmptyPipelineDesc{}, map[int]*DescriptorSetLayout{0: shared})

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	assert.Equal(t, 1, len(cmds.setLayoutInfos))
	assert.Equal(t, int32(2), shared.ReferenceCount())

	layout, ok := pl.DescriptorSetLayout(0)
	require.True(t, ok)
	assert.Same(t, shared, layout)

	require.NoError(t, pl.Destroy())
	assert.Equal(t, int32(1), shared.ReferenceCount())
	assert.Equal(t, 1, len(cmds.liveSetLayouts))

	shared.Release()
	assert.Zero(t, len(cmds.liveSetLayouts))
}

func TestNewPipelineLayoutOutOfMemory(t *testing.T) {
	for _, result := range []vk.Result{vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory} {
		cmds := newFakeCommands()
		cmds.pipelineLayoutResult = result
		device := newFakeDevice(cmds, 4, 128)
		desc := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}}, nil)

		_, err := NewPipelineLayout(device, desc)
		require.ErrorIs(t, err, ErrOutOfMemory)

		var oom *OomError
		require.True(t, errors.As(err, &oom))
		assert.Equal(t, result, oom.Result)
		assert.Equal(t, result == vk.ErrorOutOfHostMemory, oom.Host())

		assert.Zero(t, len(cmds.liveSetLayouts))
		assert.Equal(t, int32(1), device.ReferenceCount())
	}
}

func TestNewPipelineLayoutSetLayoutFailureReleasesEarlierSets(t *testing.T) {
	cmds := newFakeCommands()
	cmds.setLayoutResult = vk.ErrorOutOfDeviceMemory
	cmds.failSetLayoutAt = 2
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, [][]*DescriptorDesc{
		{uniformBuffer(ShaderStageVertex)},
		{uniformBuffer(ShaderStageVertex)},
	}, nil)

	_, err := NewPipelineLayout(device, desc)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 1, len(cmds.destroyedSetLayouts))
	assert.Zero(t, len(cmds.liveSetLayouts))
	assert.Zero(t, len(cmds.pipelineLayoutInfos))
}

func TestNewPipelineLayoutUnexpectedResult(t *testing.T) {
	cmds := newFakeCommands()
	cmds.pipelineLayoutResult = vk.ErrorDeviceLost
	device := newFakeDevice(cmds, 4, 128)

	_, err := NewPipelineLayout(device, EmptyPipelineDesc{})
	require.ErrorIs(t, err, ErrUnexpectedResult)
	assert.NotErrorIs(t, err, ErrOutOfMemory)

	var unexpected *UnexpectedResultError
	require.True(t, errors.As(err, &unexpected))
	assert.Equal(t, vk.ErrorDeviceLost, unexpected.Result)
}

func TestPipelineLayoutDestroy(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, [][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}}, nil)

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	handle := pl.Sys().InternalObject()
	assert.Equal(t, 2, len(device.LiveObjects()))

	require.NoError(t, pl.Destroy())
	require.NoError(t, pl.Destroy())

	require.Equal(t, 1, len(cmds.destroyedPipelines))
	assert.True(t, cmds.destroyedPipelines[0] == handle)
	assert.Zero(t, len(cmds.livePipelineLayouts))
	assert.Zero(t, len(cmds.liveSetLayouts))
	assert.Zero(t, len(device.LiveObjects()))
	assert.Equal(t, int32(1), device.ReferenceCount())
}

func TestPipelineLayoutKeepsDeviceAlive(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)

	pl, err := NewPipelineLayout(device, EmptyPipelineDesc{})
	require.NoError(t, err)

	device.Release()
	assert.Zero(t, cmds.destroyedDeviceCount)

	require.NoError(t, pl.Destroy())
	assert.Equal(t, 1, cmds.destroyedDeviceCount)
}

func TestPipelineLayoutDescriptorByName(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc, err := NewRuntimePipelineDesc(
		[][]*DescriptorDesc{{uniformBuffer(ShaderStageVertex)}},
		nil,
		map[string]DescriptorLocation{"camera": {Set: 0, Binding: 0}},
	)
	require.NoError(t, err)

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()

	loc, ok := pl.DescriptorByName("camera")
	require.True(t, ok)
	assert.Equal(t, DescriptorLocation{Set: 0, Binding: 0}, loc)

	_, ok = pl.DescriptorByName("missing")
	assert.False(t, ok)

	d, ok := pl.Descriptor(0, 0)
	require.True(t, ok)
	assert.Equal(t, DescriptorUniformBuffer, d.Ty)
	assert.Equal(t, 1, pl.NumSets())
}

// overlappingDesc declares push constant ranges without the conflict check
// RuntimePipelineDesc performs.
type overlappingDesc struct {
	EmptyPipelineDesc
	ranges []PushConstantsRange
}

func (d *overlappingDesc) NumPushConstantsRanges() int {
	return len(d.ranges)
}

func (d *overlappingDesc) PushConstantsRange(index int) (PushConstantsRange, bool) {
	if index < 0 || index >= len(d.ranges) {
		return PushConstantsRange{}, false
	}
	return d.ranges[index], true
}

// sparseRangesDesc reports count push constant indices but only holds some
// of them.
type sparseRangesDesc struct {
	EmptyPipelineDesc
	count  int
	ranges map[int]PushConstantsRange
}

func (d *sparseRangesDesc) NumPushConstantsRanges() int {
	return d.count
}

func (d *sparseRangesDesc) PushConstantsRange(index int) (PushConstantsRange, bool) {
	r, ok := d.ranges[index]
	return r, ok
}

func TestPipelineLayoutPushConstantsSize(t *testing.T) {
	cmds := newFakeCommands()
	device := newFakeDevice(cmds, 4, 128)
	desc := mustRuntimeDesc(t, nil, []PushConstantsRange{
		{Offset: 64, Size: 16, Stages: ShaderStageFragment},
		{Offset: 4, Size: 32, Stages: ShaderStageVertex},
	})

	pl, err := NewPipelineLayout(device, desc)
	require.NoError(t, err)
	defer pl.Destroy()
	assert.Equal(t, uint32(80), pl.PushConstantsSize())

	empty, err := NewPipelineLayout(device, EmptyPipelineDesc{})
	require.NoError(t, err)
	defer empty.Destroy()
	assert.Zero(t, empty.PushConstantsSize())
}
