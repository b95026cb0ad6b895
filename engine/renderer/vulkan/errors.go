package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
)

var (
	// ErrMaxDescriptorSetsLimitExceeded is returned when a layout needs more
	// descriptor sets than the device can bind at once.
	ErrMaxDescriptorSetsLimitExceeded = errors.New("the maximum number of descriptor sets has been exceeded")
	// ErrMaxPushConstantsSizeExceeded is returned when a push constant range
	// ends past maxPushConstantsSize.
	ErrMaxPushConstantsSizeExceeded = errors.New("the maximum size of push constants has been exceeded")
	// ErrInvalidPushConstant is returned for a push constant range with no
	// stages, a zero size, or a size that is not a multiple of 4.
	ErrInvalidPushConstant = errors.New("one of the push constants range didn't obey the rules")

	ErrOutOfMemory      = errors.New("not enough memory available")
	ErrUnexpectedResult = errors.New("unexpected vulkan result")

	ErrDuplicateDescriptorName = errors.New("descriptor name declared more than once")
	ErrDescriptorNotFound      = errors.New("descriptor not found")
)

// OomError reports a host or device memory exhaustion returned by the driver.
type OomError struct {
	Result vk.Result
}

func (e *OomError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrOutOfMemory, VulkanResultString(e.Result, false))
}

func (e *OomError) Is(target error) bool {
	return target == ErrOutOfMemory
}

// Host reports whether host memory, rather than device memory, ran out.
func (e *OomError) Host() bool {
	return e.Result == vk.ErrorOutOfHostMemory
}

// UnexpectedResultError wraps a driver result that creation calls are not
// expected to produce once their inputs have been validated.
type UnexpectedResultError struct {
	Op     string
	Result vk.Result
}

func (e *UnexpectedResultError) Error() string {
	return fmt.Sprintf("%s failed with %s", e.Op, VulkanResultString(e.Result, true))
}

func (e *UnexpectedResultError) Unwrap() error {
	return ErrUnexpectedResult
}

// PushConstantsConflictError is returned when two push constant ranges of a
// description share a shader stage.
type PushConstantsConflictError struct {
	First  int
	Second int
}

func (e *PushConstantsConflictError) Error() string {
	return fmt.Sprintf("push constants ranges %d and %d share shader stages", e.First, e.Second)
}

// checkCreateResult translates the result of a vkCreate* call.
func checkCreateResult(op string, result vk.Result) error {
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory:
		return &OomError{Result: result}
	default:
		return &UnexpectedResultError{Op: op, Result: result}
	}
}
