package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vklayout/engine/core"
)

// Limits exposes the physical device limits the layout code validates against.
type Limits struct {
	limits vk.PhysicalDeviceLimits
}

func (l Limits) MaxBoundDescriptorSets() uint32 {
	return l.limits.MaxBoundDescriptorSets
}

func (l Limits) MaxPushConstantsSize() uint32 {
	return l.limits.MaxPushConstantsSize
}

type PhysicalDevice struct {
	Handle     vk.PhysicalDevice
	Properties vk.PhysicalDeviceProperties
}

func (pd *PhysicalDevice) Limits() Limits {
	return Limits{limits: pd.Properties.Limits}
}

func (pd *PhysicalDevice) Name() string {
	name := pd.Properties.DeviceName[:]
	return string(name[:FindFirstZeroInByteArray(name)])
}

// VulkanDevice is a logical device shared by every object created from it.
// The creator holds the first reference; each descriptor set layout and
// pipeline layout retains one more and gives it back when destroyed. The
// native device is destroyed when the last reference goes away.
type VulkanDevice struct {
	LogicalDevice vk.Device
	Allocator     *vk.AllocationCallbacks

	physicalDevice *PhysicalDevice
	commands       Commands
	locks          *VulkanLockPool
	refs           *core.RefCount
	objects        *core.IdentifierPool
}

func NewVulkanDevice(logical vk.Device, physical *PhysicalDevice, commands Commands, allocator *vk.AllocationCallbacks) *VulkanDevice {
	d := &VulkanDevice{
		LogicalDevice:  logical,
		Allocator:      allocator,
		physicalDevice: physical,
		commands:       commands,
		locks:          NewVulkanLockPool(),
		objects:        core.NewIdentifierPool(),
	}
	d.refs = core.NewRefCount(d.destroy)
	return d
}

func (d *VulkanDevice) PhysicalDevice() *PhysicalDevice {
	return d.physicalDevice
}

// Pointers returns the native command table of the device.
func (d *VulkanDevice) Pointers() Commands {
	return d.commands
}

func (d *VulkanDevice) InternalObject() vk.Device {
	return d.LogicalDevice
}

// Is reports whether d and other wrap the same native device.
func (d *VulkanDevice) Is(other *VulkanDevice) bool {
	return other != nil && d.InternalObject() == other.InternalObject()
}

func (d *VulkanDevice) SafeCall(group LockGroup, fn func() error) error {
	return d.locks.SafeCall(group, fn)
}

func (d *VulkanDevice) Retain() *VulkanDevice {
	d.refs.Retain()
	return d
}

// Release drops a reference to the device.
func (d *VulkanDevice) Release() {
	d.refs.Release()
}

func (d *VulkanDevice) ReferenceCount() int32 {
	return d.refs.Count()
}

// LiveObjects lists the objects created from this device that have not been
// destroyed yet.
func (d *VulkanDevice) LiveObjects() []interface{} {
	return d.objects.Live()
}

func (d *VulkanDevice) trackObject(owner interface{}) uint32 {
	return d.objects.Acquire(owner)
}

func (d *VulkanDevice) untrackObject(id uint32) {
	if err := d.objects.Release(id); err != nil {
		core.LogWarn("device %p: %s", d.LogicalDevice, err)
	}
}

func (d *VulkanDevice) destroy() {
	if d.LogicalDevice == nil {
		return
	}
	_ = d.SafeCall(DeviceManagement, func() error {
		d.commands.DestroyDevice(d.LogicalDevice, d.Allocator)
		d.LogicalDevice = nil
		return nil
	})
	core.LogDebug("Logical device destroyed.")
}

func (d *VulkanDevice) String() string {
	return fmt.Sprintf("VulkanDevice{raw: %p, physical: %q, refs: %d}", d.LogicalDevice, d.physicalDevice.Name(), d.ReferenceCount())
}
