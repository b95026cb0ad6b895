package vulkan

import (
	"fmt"
	"sort"
)

// RuntimePipelineDesc is a description assembled at runtime, for example
// from a layout file or from shader reflection.
type RuntimePipelineDesc struct {
	descriptors   [][]*DescriptorDesc
	pushConstants []PushConstantsRange
	names         map[string]DescriptorLocation
}

// NewRuntimePipelineDesc builds a description from per-set binding slots
// (nil marks an empty slot), push constant ranges and optional binding names.
// Push constant ranges that share a shader stage are rejected with a
// *PushConstantsConflictError.
func NewRuntimePipelineDesc(descriptors [][]*DescriptorDesc, pushConstants []PushConstantsRange, names map[string]DescriptorLocation) (*RuntimePipelineDesc, error) {
	for i := 0; i < len(pushConstants); i++ {
		for j := i + 1; j < len(pushConstants); j++ {
			if pushConstants[i].Stages.Intersects(pushConstants[j].Stages) {
				return nil, &PushConstantsConflictError{First: i, Second: j}
			}
		}
	}

	desc := &RuntimePipelineDesc{
		descriptors:   make([][]*DescriptorDesc, len(descriptors)),
		pushConstants: append([]PushConstantsRange(nil), pushConstants...),
		names:         make(map[string]DescriptorLocation, len(names)),
	}
	for set, bindings := range descriptors {
		desc.descriptors[set] = make([]*DescriptorDesc, len(bindings))
		for binding, d := range bindings {
			if d != nil {
				c := *d
				desc.descriptors[set][binding] = &c
			}
		}
	}
	for name, loc := range names {
		if _, ok := desc.Descriptor(loc.Set, loc.Binding); !ok {
			return nil, fmt.Errorf("name %q points to set %d binding %d: %w", name, loc.Set, loc.Binding, ErrDescriptorNotFound)
		}
		desc.names[name] = loc
	}
	return desc, nil
}

func (d *RuntimePipelineDesc) NumSets() int {
	return len(d.descriptors)
}

func (d *RuntimePipelineDesc) NumBindingsInSet(set int) (int, bool) {
	if set < 0 || set >= len(d.descriptors) {
		return 0, false
	}
	return len(d.descriptors[set]), true
}

func (d *RuntimePipelineDesc) Descriptor(set, binding int) (DescriptorDesc, bool) {
	if set < 0 || set >= len(d.descriptors) {
		return DescriptorDesc{}, false
	}
	bindings := d.descriptors[set]
	if binding < 0 || binding >= len(bindings) || bindings[binding] == nil {
		return DescriptorDesc{}, false
	}
	return *bindings[binding], true
}

func (d *RuntimePipelineDesc) ProvidedSetLayout(int) (*DescriptorSetLayout, bool) {
	return nil, false
}

func (d *RuntimePipelineDesc) NumPushConstantsRanges() int {
	return len(d.pushConstants)
}

func (d *RuntimePipelineDesc) PushConstantsRange(index int) (PushConstantsRange, bool) {
	if index < 0 || index >= len(d.pushConstants) {
		return PushConstantsRange{}, false
	}
	return d.pushConstants[index], true
}

func (d *RuntimePipelineDesc) DescriptorByName(name string) (DescriptorLocation, bool) {
	loc, ok := d.names[name]
	return loc, ok
}

// Names returns the declared binding names in sorted order.
func (d *RuntimePipelineDesc) Names() []string {
	names := make([]string, 0, len(d.names))
	for name := range d.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
