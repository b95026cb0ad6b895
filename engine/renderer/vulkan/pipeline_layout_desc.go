package vulkan

// PushConstantsRange is one push constant block declared by a description.
// Offset and Size are in bytes.
type PushConstantsRange struct {
	Offset uint32
	Size   uint32
	Stages ShaderStages
}

// DescriptorLocation addresses a binding inside a pipeline layout.
type DescriptorLocation struct {
	Set     int
	Binding int
}

// PipelineLayoutDesc describes the descriptor sets and push constants of a
// pipeline layout.
//
// Implementations must not declare two push constant ranges that share a
// shader stage.
type PipelineLayoutDesc interface {
	// NumSets returns the number of descriptor sets, including empty ones.
	NumSets() int
	// NumBindingsInSet returns the number of binding slots of a set, or false
	// when the set is unknown.
	NumBindingsInSet(set int) (int, bool)
	// Descriptor returns the binding at the given location, or false when the
	// slot is empty.
	Descriptor(set, binding int) (DescriptorDesc, bool)
	// ProvidedSetLayout returns an already built layout for the set. When
	// false is returned one is built from Descriptor.
	ProvidedSetLayout(set int) (*DescriptorSetLayout, bool)
	NumPushConstantsRanges() int
	PushConstantsRange(index int) (PushConstantsRange, bool)
}

// PipelineLayoutDescNames is a description that can also look descriptors up
// by the name they have in shader source.
type PipelineLayoutDescNames interface {
	PipelineLayoutDesc
	DescriptorByName(name string) (DescriptorLocation, bool)
}

// EmptyPipelineDesc describes a layout with no descriptor sets and no push
// constants.
type EmptyPipelineDesc struct{}

func (EmptyPipelineDesc) NumSets() int { return 0 }
func (EmptyPipelineDesc) NumBindingsInSet(int) (int, bool) { return 0, false }
func (EmptyPipelineDesc) Descriptor(int, int) (DescriptorDesc, bool) { return DescriptorDesc{}, false }
func (EmptyPipelineDesc) ProvidedSetLayout(int) (*DescriptorSetLayout, bool) { return nil, false }
func (EmptyPipelineDesc) NumPushConstantsRanges() int { return 0 }
func (EmptyPipelineDesc) PushConstantsRange(int) (PushConstantsRange, bool) { return PushConstantsRange{}, false }
func (EmptyPipelineDesc) DescriptorByName(string) (DescriptorLocation, bool) { return DescriptorLocation{}, false }
