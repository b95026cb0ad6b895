package vulkan

import vk "github.com/goki/vulkan"

// Commands is the table of native entry points a device dispatches through.
// DefaultCommands forwards to the loaded Vulkan driver; tests substitute a
// recording implementation.
type Commands interface {
	CreateDescriptorSetLayout(device vk.Device, createInfo *vk.DescriptorSetLayoutCreateInfo, allocator *vk.AllocationCallbacks, out *vk.DescriptorSetLayout) vk.Result
	DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout, allocator *vk.AllocationCallbacks)
	CreatePipelineLayout(device vk.Device, createInfo *vk.PipelineLayoutCreateInfo, allocator *vk.AllocationCallbacks, out *vk.PipelineLayout) vk.Result
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout, allocator *vk.AllocationCallbacks)
	DestroyDevice(device vk.Device, allocator *vk.AllocationCallbacks)
}

type driverCommands struct{}

func DefaultCommands() Commands {
	return driverCommands{}
}

func (driverCommands) CreateDescriptorSetLayout(device vk.Device, createInfo *vk.DescriptorSetLayoutCreateInfo, allocator *vk.AllocationCallbacks, out *vk.DescriptorSetLayout) vk.Result {
	return vk.CreateDescriptorSetLayout(device, createInfo, allocator, out)
}

func (driverCommands) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout, allocator *vk.AllocationCallbacks) {
	vk.DestroyDescriptorSetLayout(device, layout, allocator)
}

func (driverCommands) CreatePipelineLayout(device vk.Device, createInfo *vk.PipelineLayoutCreateInfo, allocator *vk.AllocationCallbacks, out *vk.PipelineLayout) vk.Result {
	return vk.CreatePipelineLayout(device, createInfo, allocator, out)
}

func (driverCommands) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout, allocator *vk.AllocationCallbacks) {
	vk.DestroyPipelineLayout(device, layout, allocator)
}

func (driverCommands) DestroyDevice(device vk.Device, allocator *vk.AllocationCallbacks) {
	vk.DestroyDevice(device, allocator)
}
