package platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vklayout/engine/core"
)

func init() {
	// GLFW calls must run on the main OS thread
	runtime.LockOSThread()
}

// GLFW entry points, replaced in tests.
var (
	glfwInit            = glfw.Init
	glfwTerminate       = glfw.Terminate
	glfwVulkanSupported = glfw.VulkanSupported
)

// Platform loads the Vulkan loader through GLFW. No window is created.
type Platform struct {
	started bool
}

func New() *Platform {
	return &Platform{}
}

// Startup initializes GLFW and points vk at the instance proc address of the
// system loader. When GLFW cannot provide one the default loader lookup is
// used instead.
func (p *Platform) Startup() error {
	if err := glfwInit(); err != nil {
		core.LogWarn("failed to initialize glfw: %s", err)
		return p.useDefaultLoader()
	}
	p.started = true

	if !glfwVulkanSupported() {
		glfwTerminate()
		p.started = false
		return errors.New("vulkan loader not found")
	}
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		core.LogWarn("GetInstanceProcAddress is nil, falling back to the default loader")
		return p.useDefaultLoader()
	}
	vk.SetGetInstanceProcAddr(procAddr)
	return nil
}

func (p *Platform) useDefaultLoader() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("failed to load vulkan: %w", err)
	}
	return nil
}

func (p *Platform) Shutdown() error {
	if p.started {
		glfwTerminate()
		p.started = false
	}
	return nil
}
