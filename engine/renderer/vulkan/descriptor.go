package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// DescriptorDescTy is the kind of resource a binding exposes to shaders.
type DescriptorDescTy int

const (
	DescriptorSampler DescriptorDescTy = iota
	DescriptorCombinedImageSampler
	DescriptorSampledImage
	DescriptorStorageImage
	DescriptorUniformTexelBuffer
	DescriptorStorageTexelBuffer
	DescriptorUniformBuffer
	DescriptorStorageBuffer
	DescriptorInputAttachment
)

var descriptorTyNames = map[DescriptorDescTy]string{
	DescriptorSampler:              "sampler",
	DescriptorCombinedImageSampler: "combined_image_sampler",
	DescriptorSampledImage:         "sampled_image",
	DescriptorStorageImage:         "storage_image",
	DescriptorUniformTexelBuffer:   "uniform_texel_buffer",
	DescriptorStorageTexelBuffer:   "storage_texel_buffer",
	DescriptorUniformBuffer:        "uniform_buffer",
	DescriptorStorageBuffer:        "storage_buffer",
	DescriptorInputAttachment:      "input_attachment",
}

func (ty DescriptorDescTy) String() string {
	if name, ok := descriptorTyNames[ty]; ok {
		return name
	}
	return fmt.Sprintf("DescriptorDescTy(%d)", int(ty))
}

// IsBuffer reports whether the descriptor kind has a dynamic-offset variant.
func (ty DescriptorDescTy) IsBuffer() bool {
	return ty == DescriptorUniformBuffer || ty == DescriptorStorageBuffer
}

func ParseDescriptorDescTy(name string) (DescriptorDescTy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for ty, tyName := range descriptorTyNames {
		if tyName == n {
			return ty, nil
		}
	}
	return 0, fmt.Errorf("unknown descriptor type %q", name)
}

// DescriptorDesc describes a single binding of a descriptor set.
type DescriptorDesc struct {
	Ty DescriptorDescTy
	// Dynamic selects the dynamic-offset variant of uniform and storage
	// buffers. It is ignored for other kinds.
	Dynamic bool
	// ArrayCount is the number of array elements; 1 for a plain binding.
	ArrayCount uint32
	Stages     ShaderStages
	Readonly   bool
}

func (d DescriptorDesc) DescriptorType() vk.DescriptorType {
	switch d.Ty {
	case DescriptorSampler:
		return vk.DescriptorTypeSampler
	case DescriptorCombinedImageSampler:
		return vk.DescriptorTypeCombinedImageSampler
	case DescriptorSampledImage:
		return vk.DescriptorTypeSampledImage
	case DescriptorStorageImage:
		return vk.DescriptorTypeStorageImage
	case DescriptorUniformTexelBuffer:
		return vk.DescriptorTypeUniformTexelBuffer
	case DescriptorStorageTexelBuffer:
		return vk.DescriptorTypeStorageTexelBuffer
	case DescriptorUniformBuffer:
		if d.Dynamic {
			return vk.DescriptorTypeUniformBufferDynamic
		}
		return vk.DescriptorTypeUniformBuffer
	case DescriptorStorageBuffer:
		if d.Dynamic {
			return vk.DescriptorTypeStorageBufferDynamic
		}
		return vk.DescriptorTypeStorageBuffer
	case DescriptorInputAttachment:
		return vk.DescriptorTypeInputAttachment
	}
	panic(fmt.Sprintf("unknown descriptor type %d", int(d.Ty)))
}

// Union merges two descriptions of the same binding, as seen from two
// shaders. It fails when the kinds or array sizes differ.
func (d DescriptorDesc) Union(other DescriptorDesc) (DescriptorDesc, bool) {
	if d.Ty != other.Ty || d.ArrayCount != other.ArrayCount || (d.Ty.IsBuffer() && d.Dynamic != other.Dynamic) {
		return DescriptorDesc{}, false
	}
	d.Stages = d.Stages.Union(other.Stages)
	d.Readonly = d.Readonly && other.Readonly
	return d, true
}

func (d DescriptorDesc) String() string {
	ty := d.Ty.String()
	if d.Dynamic && d.Ty.IsBuffer() {
		ty += "(dynamic)"
	}
	return fmt.Sprintf("%s[%d] stages=%s readonly=%t", ty, d.ArrayCount, d.Stages, d.Readonly)
}
