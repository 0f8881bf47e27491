package common

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceUnavailable is returned when the platform cannot create a presentable surface for a window.
	ErrSurfaceUnavailable = errors.New("surface unavailable")

	// ErrAdapterUnavailable is returned when no GPU adapter compatible with the surface can be selected.
	ErrAdapterUnavailable = errors.New("adapter unavailable")

	// ErrDeviceRequestFailed is returned when the adapter refuses to create a logical device and queue.
	ErrDeviceRequestFailed = errors.New("device request failed")

	// ErrPipelineBuildFailed is returned by attach when the render pipeline could not be built.
	// It wraps the underlying ShaderLoadError or ErrPipelineCompileFailed.
	ErrPipelineBuildFailed = errors.New("pipeline build failed")

	// ErrPipelineCompileFailed is returned when shader validation or the backend rejects the pipeline.
	ErrPipelineCompileFailed = errors.New("pipeline compile failed")

	// ErrSurfaceAcquireTransient marks a surface acquisition failure that is fixed by reconfiguring
	// the surface (outdated or lost swapchain).
	ErrSurfaceAcquireTransient = errors.New("surface acquire failed (transient)")

	// ErrSurfaceAcquireFatal marks any other surface acquisition failure. The frame is skipped.
	ErrSurfaceAcquireFatal = errors.New("surface acquire failed")

	// ErrAlreadyAttached is returned when attaching a surface lifecycle that already owns a surface.
	ErrAlreadyAttached = errors.New("surface already attached")

	// ErrEmptyMesh is returned when uploading a mesh without vertices or indices.
	ErrEmptyMesh = errors.New("mesh has no vertices or indices")
)

// ShaderLoadError reports a shader source file that could not be read.
type ShaderLoadError struct {
	// Path is the shader file path as given by the caller.
	Path string
	// Err is the underlying read error.
	Err error
}

func (e *ShaderLoadError) Error() string {
	return fmt.Sprintf("shader load failed: %s: %v", e.Path, e.Err)
}

func (e *ShaderLoadError) Unwrap() error {
	return e.Err
}
