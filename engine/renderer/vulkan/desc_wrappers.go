package vulkan

// PipelineLayoutDescTweaks wraps a description and turns the listed uniform
// and storage buffer bindings into their dynamic variant.
type PipelineLayoutDescTweaks struct {
	PipelineLayoutDesc
	dynamic map[DescriptorLocation]struct{}
}

func NewPipelineLayoutDescTweaks(desc PipelineLayoutDesc, dynamic ...DescriptorLocation) *PipelineLayoutDescTweaks {
	t := &PipelineLayoutDescTweaks{
		PipelineLayoutDesc: desc,
		dynamic:            make(map[DescriptorLocation]struct{}, len(dynamic)),
	}
	for _, loc := range dynamic {
		t.dynamic[loc] = struct{}{}
	}
	return t
}

func (t *PipelineLayoutDescTweaks) Descriptor(set, binding int) (DescriptorDesc, bool) {
	d, ok := t.PipelineLayoutDesc.Descriptor(set, binding)
	if !ok {
		return d, false
	}
	if _, tweak := t.dynamic[DescriptorLocation{Set: set, Binding: binding}]; tweak && d.Ty.IsBuffer() {
		d.Dynamic = true
	}
	return d, true
}

func (t *PipelineLayoutDescTweaks) DescriptorByName(name string) (DescriptorLocation, bool) {
	if named, ok := t.PipelineLayoutDesc.(PipelineLayoutDescNames); ok {
		return named.DescriptorByName(name)
	}
	return DescriptorLocation{}, false
}

// ProvidedSetLayouts wraps a description and hands out already built
// descriptor set layouts for some of its sets. The wrapper does not hold a
// reference on the layouts; callers keep them alive until the pipeline
// layouts built from it exist.
type ProvidedSetLayouts struct {
	PipelineLayoutDesc
	layouts map[int]*DescriptorSetLayout
}

func NewProvidedSetLayouts(desc PipelineLayoutDesc, layouts map[int]*DescriptorSetLayout) *ProvidedSetLayouts {
	p := &ProvidedSetLayouts{
		PipelineLayoutDesc: desc,
		layouts:            make(map[int]*DescriptorSetLayout, len(layouts)),
	}
	for set, l := range layouts {
		if l != nil {
			p.layouts[set] = l
		}
	}
	return p
}

// NumSets covers both the wrapped sets and the highest provided one.
func (p *ProvidedSetLayouts) NumSets() int {
	n := p.PipelineLayoutDesc.NumSets()
	for set := range p.layouts {
		n = max(n, set+1)
	}
	return n
}

func (p *ProvidedSetLayouts) NumBindingsInSet(set int) (int, bool) {
	if l, ok := p.layouts[set]; ok {
		return l.NumBindings(), true
	}
	return p.PipelineLayoutDesc.NumBindingsInSet(set)
}

func (p *ProvidedSetLayouts) Descriptor(set, binding int) (DescriptorDesc, bool) {
	if l, ok := p.layouts[set]; ok {
		return l.Descriptor(binding)
	}
	return p.PipelineLayoutDesc.Descriptor(set, binding)
}

func (p *ProvidedSetLayouts) ProvidedSetLayout(set int) (*DescriptorSetLayout, bool) {
	if l, ok := p.layouts[set]; ok {
		return l, true
	}
	return p.PipelineLayoutDesc.ProvidedSetLayout(set)
}

func (p *ProvidedSetLayouts) DescriptorByName(name string) (DescriptorLocation, bool) {
	if named, ok := p.PipelineLayoutDesc.(PipelineLayoutDescNames); ok {
		return named.DescriptorByName(name)
	}
	return DescriptorLocation{}, false
}
