package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// ShaderStages is a set of shader stages, stored in the layout of
// VkShaderStageFlags.
type ShaderStages vk.ShaderStageFlags

const (
	ShaderStagesNone                  ShaderStages = 0
	ShaderStageVertex                 ShaderStages = ShaderStages(vk.ShaderStageVertexBit)
	ShaderStageTessellationControl    ShaderStages = ShaderStages(vk.ShaderStageTessellationControlBit)
	ShaderStageTessellationEvaluation ShaderStages = ShaderStages(vk.ShaderStageTessellationEvaluationBit)
	ShaderStageGeometry               ShaderStages = ShaderStages(vk.ShaderStageGeometryBit)
	ShaderStageFragment               ShaderStages = ShaderStages(vk.ShaderStageFragmentBit)
	ShaderStageCompute                ShaderStages = ShaderStages(vk.ShaderStageComputeBit)

	ShaderStagesAllGraphics = ShaderStageVertex | ShaderStageTessellationControl |
		ShaderStageTessellationEvaluation | ShaderStageGeometry | ShaderStageFragment
	ShaderStagesAll = ShaderStagesAllGraphics | ShaderStageCompute
)

var shaderStageNames = []struct {
	stage ShaderStages
	name  string
}{
	{ShaderStageVertex, "vertex"},
	{ShaderStageTessellationControl, "tessellation_control"},
	{ShaderStageTessellationEvaluation, "tessellation_evaluation"},
	{ShaderStageGeometry, "geometry"},
	{ShaderStageFragment, "fragment"},
	{ShaderStageCompute, "compute"},
}

func (s ShaderStages) IsNone() bool {
	return s == ShaderStagesNone
}

// Intersects reports whether s and other have at least one stage in common.
func (s ShaderStages) Intersects(other ShaderStages) bool {
	return s&other != 0
}

func (s ShaderStages) Union(other ShaderStages) ShaderStages {
	return s | other
}

func (s ShaderStages) Flags() vk.ShaderStageFlags {
	return vk.ShaderStageFlags(s)
}

func (s ShaderStages) String() string {
	if s.IsNone() {
		return "none"
	}
	names := make([]string, 0, len(shaderStageNames))
	rest := s
	for _, sn := range shaderStageNames {
		if s&sn.stage != 0 {
			names = append(names, sn.name)
			rest &^= sn.stage
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// ParseShaderStages builds a stage set from names such as "vertex" or
// "fragment". "all" and "all_graphics" are accepted as shorthands.
func ParseShaderStages(names []string) (ShaderStages, error) {
	stages := ShaderStagesNone
	for _, name := range names {
		switch n := strings.ToLower(strings.TrimSpace(name)); n {
		case "all":
			stages |= ShaderStagesAll
		case "all_graphics":
			stages |= ShaderStagesAllGraphics
		default:
			found := false
			for _, sn := range shaderStageNames {
				if sn.name == n {
					stages |= sn.stage
					found = true
					break
				}
			}
			if !found {
				return ShaderStagesNone, fmt.Errorf("unknown shader stage %q", name)
			}
		}
	}
	return stages, nil
}
