package assets

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vklayout/engine/renderer/vulkan"
)

// LayoutFile is the on-disk form of a pipeline layout description. Sets are
// numbered by their position in the file.
type LayoutFile struct {
	Sets          []SetEntry          `toml:"sets"`
	PushConstants []PushConstantEntry `toml:"push_constants"`
}

type SetEntry struct {
	Bindings []BindingEntry `toml:"bindings"`
}

type BindingEntry struct {
	Binding  int      `toml:"binding"`
	Name     string   `toml:"name"`
	Type     string   `toml:"type"`
	Count    *uint32  `toml:"count"` // defaults to 1
	Stages   []string `toml:"stages"`
	Readonly bool     `toml:"readonly"`
	Dynamic  bool     `toml:"dynamic"`
}

// maxBindingNumber bounds binding numbers in layout files. Bindings are stored
// densely, so the number sizes the per-set slice.
const maxBindingNumber = 4096

type PushConstantEntry struct {
	Offset uint32   `toml:"offset"`
	Size   uint32   `toml:"size"`
	Stages []string `toml:"stages"`
}

func LoadLayoutDesc(path string) (*vulkan.RuntimePipelineDesc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := ParseLayoutDesc(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// ParseLayoutDesc decodes a TOML layout description. Push constant ranges are
// not checked against device limits here; that happens when the pipeline
// layout is created.
func ParseLayoutDesc(data []byte) (*vulkan.RuntimePipelineDesc, error) {
	var file LayoutFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}

	sets := make([][]*vulkan.DescriptorDesc, len(file.Sets))
	names := make(map[string]vulkan.DescriptorLocation)

	for set, entry := range file.Sets {
		for _, b := range entry.Bindings {
			if b.Binding < 0 {
				return nil, fmt.Errorf("set %d: negative binding %d", set, b.Binding)
			}
			if b.Binding >= maxBindingNumber {
				return nil, fmt.Errorf("set %d: binding %d exceeds the maximum of %d", set, b.Binding, maxBindingNumber-1)
			}
			desc, err := b.descriptor()
			if err != nil {
				return nil, fmt.Errorf("set %d binding %d: %w", set, b.Binding, err)
			}

			if b.Binding >= len(sets[set]) {
				grown := make([]*vulkan.DescriptorDesc, b.Binding+1)
				copy(grown, sets[set])
				sets[set] = grown
			}
			if sets[set][b.Binding] != nil {
				return nil, fmt.Errorf("set %d: binding %d declared more than once", set, b.Binding)
			}
			sets[set][b.Binding] = desc

			if b.Name == "" {
				continue
			}
			if _, ok := names[b.Name]; ok {
				return nil, fmt.Errorf("%q: %w", b.Name, vulkan.ErrDuplicateDescriptorName)
			}
			names[b.Name] = vulkan.DescriptorLocation{Set: set, Binding: b.Binding}
		}
	}

	ranges := make([]vulkan.PushConstantsRange, len(file.PushConstants))
	for i, pc := range file.PushConstants {
		stages, err := vulkan.ParseShaderStages(pc.Stages)
		if err != nil {
			return nil, fmt.Errorf("push constants %d: %w", i, err)
		}
		ranges[i] = vulkan.PushConstantsRange{Offset: pc.Offset, Size: pc.Size, Stages: stages}
	}

	return vulkan.NewRuntimePipelineDesc(sets, ranges, names)
}

func (b BindingEntry) descriptor() (*vulkan.DescriptorDesc, error) {
	ty, err := vulkan.ParseDescriptorDescTy(b.Type)
	if err != nil {
		return nil, err
	}
	stages, err := vulkan.ParseShaderStages(b.Stages)
	if err != nil {
		return nil, err
	}
	count := uint32(1)
	if b.Count != nil {
		count = *b.Count
	}
	return &vulkan.DescriptorDesc{
		Ty:         ty,
		Dynamic:    b.Dynamic,
		ArrayCount: count,
		Stages:     stages,
		Readonly:   b.Readonly,
	}, nil
}
