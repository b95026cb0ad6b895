package vulkan

import "fmt"

// PipelineLayoutDescUnion merges two descriptions. A binding declared by both
// must be compatible; the result then covers the stages of both. Push
// constant ranges of a are followed by those of b.
type PipelineLayoutDescUnion struct {
	a PipelineLayoutDesc
	b PipelineLayoutDesc
}

func NewPipelineLayoutDescUnion(a, b PipelineLayoutDesc) *PipelineLayoutDescUnion {
	return &PipelineLayoutDescUnion{a: a, b: b}
}

func (u *PipelineLayoutDescUnion) NumSets() int {
	return max(u.a.NumSets(), u.b.NumSets())
}

func (u *PipelineLayoutDescUnion) NumBindingsInSet(set int) (int, bool) {
	na, okA := u.a.NumBindingsInSet(set)
	nb, okB := u.b.NumBindingsInSet(set)
	switch {
	case okA && okB:
		return max(na, nb), true
	case okA:
		return na, true
	case okB:
		return nb, true
	}
	return 0, false
}

// Descriptor panics when a and b declare incompatible bindings at the same
// location.
func (u *PipelineLayoutDescUnion) Descriptor(set, binding int) (DescriptorDesc, bool) {
	da, okA := u.a.Descriptor(set, binding)
	db, okB := u.b.Descriptor(set, binding)
	switch {
	case okA && okB:
		merged, ok := da.Union(db)
		if !ok {
			panic(fmt.Sprintf("incompatible descriptors at set %d binding %d: %s and %s", set, binding, da, db))
		}
		return merged, true
	case okA:
		return da, true
	case okB:
		return db, true
	}
	return DescriptorDesc{}, false
}

// ProvidedSetLayout only forwards a provided layout when the other side has
// nothing to say about the set.
func (u *PipelineLayoutDescUnion) ProvidedSetLayout(set int) (*DescriptorSetLayout, bool) {
	if l, ok := u.a.ProvidedSetLayout(set); ok && !declaresSet(u.b, set) {
		return l, true
	}
	if l, ok := u.b.ProvidedSetLayout(set); ok && !declaresSet(u.a, set) {
		return l, true
	}
	return nil, false
}

func (u *PipelineLayoutDescUnion) NumPushConstantsRanges() int {
	return u.a.NumPushConstantsRanges() + u.b.NumPushConstantsRanges()
}

func (u *PipelineLayoutDescUnion) PushConstantsRange(index int) (PushConstantsRange, bool) {
	n := u.a.NumPushConstantsRanges()
	if index < n {
		return u.a.PushConstantsRange(index)
	}
	return u.b.PushConstantsRange(index - n)
}

// DescriptorByName looks the name up in a first, then b.
func (u *PipelineLayoutDescUnion) DescriptorByName(name string) (DescriptorLocation, bool) {
	for _, d := range []PipelineLayoutDesc{u.a, u.b} {
		if named, ok := d.(PipelineLayoutDescNames); ok {
			if loc, ok := named.DescriptorByName(name); ok {
				return loc, true
			}
		}
	}
	return DescriptorLocation{}, false
}

func declaresSet(d PipelineLayoutDesc, set int) bool {
	n, ok := d.NumBindingsInSet(set)
	return ok && n > 0
}
