package vulkan

import (
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// fakeCommands records native calls and hands out unique fake handles.
type fakeCommands struct {
	mu sync.Mutex

	setLayoutResult      vk.Result
	pipelineLayoutResult vk.Result
	// failSetLayoutAt makes the n-th descriptor set layout creation (1-based)
	// return setLayoutResult; 0 applies it to every call.
	failSetLayoutAt int

	setLayoutInfos      []vk.DescriptorSetLayoutCreateInfo
	pipelineLayoutInfos []vk.PipelineLayoutCreateInfo

	liveSetLayouts       map[vk.DescriptorSetLayout]bool
	destroyedSetLayouts  []vk.DescriptorSetLayout
	livePipelineLayouts  map[vk.PipelineLayout]bool
	destroyedPipelines   []vk.PipelineLayout
	destroyedDeviceCount int
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		setLayoutResult:      vk.Success,
		pipelineLayoutResult: vk.Success,
		liveSetLayouts:       map[vk.DescriptorSetLayout]bool{},
		livePipelineLayouts:  map[vk.PipelineLayout]bool{},
	}
}

func fakeHandle() unsafe.Pointer {
	return unsafe.Pointer(new(uint64))
}

func (f *fakeCommands) CreateDescriptorSetLayout(_ vk.Device, createInfo *vk.DescriptorSetLayoutCreateInfo, _ *vk.AllocationCallbacks, out *vk.DescriptorSetLayout) vk.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	info := *createInfo
	info.PBindings = append([]vk.DescriptorSetLayoutBinding(nil), createInfo.PBindings...)
	f.setLayoutInfos = append(f.setLayoutInfos, info)

	if f.setLayoutResult != vk.Success && (f.failSetLayoutAt == 0 || f.failSetLayoutAt == len(f.setLayoutInfos)) {
		return f.setLayoutResult
	}
	*out = vk.DescriptorSetLayout(fakeHandle())
	f.liveSetLayouts[*out] = true
	return vk.Success
}

func (f *fakeCommands) DestroyDescriptorSetLayout(_ vk.Device, layout vk.DescriptorSetLayout, _ *vk.AllocationCallbacks) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.liveSetLayouts, layout)
	f.destroyedSetLayouts = append(f.destroyedSetLayouts, layout)
}

func (f *fakeCommands) CreatePipelineLayout(_ vk.Device, createInfo *vk.PipelineLayoutCreateInfo, _ *vk.AllocationCallbacks, out *vk.PipelineLayout) vk.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	info := *createInfo
	info.PSetLayouts = append([]vk.DescriptorSetLayout(nil), createInfo.PSetLayouts...)
	info.PPushConstantRanges = append([]vk.PushConstantRange(nil), createInfo.PPushConstantRanges...)
	f.pipelineLayoutInfos = append(f.pipelineLayoutInfos, info)

	if f.pipelineLayoutResult != vk.Success {
		return f.pipelineLayoutResult
	}
	*out = vk.PipelineLayout(fakeHandle())
	f.livePipelineLayouts[*out] = true
	return vk.Success
}

func (f *fakeCommands) DestroyPipelineLayout(_ vk.Device, layout vk.PipelineLayout, _ *vk.AllocationCallbacks) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.livePipelineLayouts, layout)
	f.destroyedPipelines = append(f.destroyedPipelines, layout)
}

func (f *fakeCommands) DestroyDevice(vk.Device, *vk.AllocationCallbacks) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.destroyedDeviceCount++
}

func newFakeDevice(cmds *fakeCommands, maxSets, maxPushConstants uint32) *VulkanDevice {
	physical := &PhysicalDevice{}
	physical.Properties.Limits.MaxBoundDescriptorSets = maxSets
	physical.Properties.Limits.MaxPushConstantsSize = maxPushConstants
	return NewVulkanDevice(vk.Device(fakeHandle()), physical, cmds, nil)
}
