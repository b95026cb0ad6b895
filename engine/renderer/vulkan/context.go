package vulkan

import (
	"errors"
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vklayout/engine/core"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// VulkanContext owns the instance and the logical device the command line
// tool builds pipeline layouts against. No surface or swapchain is created.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks

	Device        *VulkanDevice
	GraphicsQueue vk.Queue
}

// NewVulkanContext creates an instance, picks a physical device with a
// graphics queue (discrete GPUs first) and creates a logical device on it.
// The instance proc address must have been set by the platform layer.
func NewVulkanContext(appName string, validation bool) (*VulkanContext, error) {
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize vk: %w", err)
	}

	vc := &VulkanContext{}
	if err := vc.createInstance(appName, validation); err != nil {
		return nil, err
	}

	physical, queueIndex, err := vc.selectPhysicalDevice()
	if err != nil {
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		return nil, err
	}

	if err := vc.createDevice(physical, queueIndex); err != nil {
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		return nil, err
	}
	return vc, nil
}

func (vc *VulkanContext) createInstance(appName string, validation bool) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("vklayout"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var extensions []string
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)

	var layers []string
	if validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		found, err := hasInstanceLayer(validationLayerName)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("required validation layer is missing: %s", validationLayerName)
		}
		layers = append(layers, validationLayerName)
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, vc.Allocator, &vc.Instance); res != vk.Success {
		return fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
	}
	if err := vk.InitInstance(vc.Instance); err != nil {
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		return err
	}
	core.LogInfo("Vulkan instance created.")
	return nil
}

func hasInstanceLayer(name string) (bool, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false, fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false, fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
	}
	for i := range layers {
		layers[i].Deref()
		end := FindFirstZeroInByteArray(layers[i].LayerName[:])
		if string(layers[i].LayerName[:end]) == name {
			return true, nil
		}
	}
	return false, nil
}

func (vc *VulkanContext) selectPhysicalDevice() (*PhysicalDevice, uint32, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &count, nil); res != vk.Success {
		return nil, 0, fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
	}
	if count == 0 {
		return nil, 0, errors.New("no devices which support Vulkan were found")
	}
	handles := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &count, handles); res != vk.Success {
		return nil, 0, fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
	}

	var (
		selected   *PhysicalDevice
		queueIndex uint32
	)
	for _, handle := range handles {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(handle, &properties)
		properties.Deref()
		properties.Limits.Deref()

		index, ok := graphicsQueueFamily(handle)
		if !ok {
			continue
		}
		candidate := &PhysicalDevice{Handle: handle, Properties: properties}
		if selected == nil || properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			selected, queueIndex = candidate, index
		}
		if properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			break
		}
	}
	if selected == nil {
		return nil, 0, errors.New("no device with a graphics queue was found")
	}

	limits := selected.Limits()
	core.LogInfo("Selected device: '%s'.", selected.Name())
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(selected.Properties.ApiVersion)),
		vk.Version.Minor(vk.Version(selected.Properties.ApiVersion)),
		vk.Version.Patch(vk.Version(selected.Properties.ApiVersion)),
	)
	core.LogInfo("maxBoundDescriptorSets=%d maxPushConstantsSize=%d", limits.MaxBoundDescriptorSets(), limits.MaxPushConstantsSize())
	return selected, queueIndex, nil
}

func graphicsQueueFamily(handle vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, families)

	for i := range families {
		families[i].Deref()
		if vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (vc *VulkanContext) createDevice(physical *PhysicalDevice, queueIndex uint32) error {
	core.LogInfo("Creating logical device...")

	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),
		PQueueCreateInfos:    queueCreateInfos,
	}

	var logical vk.Device
	if res := vk.CreateDevice(physical.Handle, &deviceCreateInfo, vc.Allocator, &logical); res != vk.Success {
		return fmt.Errorf("failed to create logical device: %s", VulkanResultString(res, true))
	}
	vk.GetDeviceQueue(logical, queueIndex, 0, &vc.GraphicsQueue)

	vc.Device = NewVulkanDevice(logical, physical, DefaultCommands(), vc.Allocator)
	core.LogInfo("Logical device created.")
	return nil
}

// Destroy gives up the context's reference on the device and destroys the
// instance. Objects still alive on the device are reported, since they keep
// the native device alive past this call.
func (vc *VulkanContext) Destroy() {
	if vc.Device != nil {
		for _, obj := range vc.Device.LiveObjects() {
			core.LogWarn("Object still alive at shutdown: %v", obj)
		}
		vc.Device.Release()
		vc.Device = nil
	}
	if vc.Instance != nil {
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		vc.Instance = nil
	}
	core.LogInfo("Vulkan context destroyed.")
}
