package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/cogentcore/webgpu/wgpu"
)

// FrameStatus reports what RenderFrame did with a frame.
type FrameStatus int

const (
	// FrameIdle means the lifecycle was not attached; nothing was recorded.
	FrameIdle FrameStatus = iota

	// FramePresented means the frame was submitted and presented.
	FramePresented

	// FrameRecovered means the surface was outdated or lost and has been reconfigured; nothing was drawn.
	FrameRecovered

	// FrameDropped means the frame was skipped because of a non-recoverable error.
	FrameDropped
)

func (s FrameStatus) String() string {
	switch s {
	case FrameIdle:
		return "Idle"
	case FramePresented:
		return "Presented"
	case FrameRecovered:
		return "Recovered"
	case FrameDropped:
		return "Dropped"
	default:
		return fmt.Sprintf("FrameStatus(%d)", int(s))
	}
}

// DefaultClearColor is the background every frame is cleared to.
var DefaultClearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// frameRenderer is the implementation of the FrameRenderer interface.
type frameRenderer struct {
	clearColor wgpu.Color
}

// FrameRenderer records and presents one frame per call: a single pass that clears the surface
// and draws every instance of one mesh with one indexed draw.
type FrameRenderer interface {
	// RenderFrame acquires the next surface texture, records the pass, submits and presents.
	// An outdated or lost surface is reconfigured and the frame is skipped; other failures
	// are logged and the frame is dropped. Mesh and instance data are never modified.
	//
	// Parameters:
	//   - l: the lifecycle providing the device, queue, surface and pipeline
	//   - asset: the mesh to draw; nil clears only
	//   - instances: one record per copy of the mesh; empty clears only
	//
	// Returns:
	//   - FrameStatus: what happened to the frame
	RenderFrame(l SurfaceLifecycle, asset *geometry.Asset, instances []geometry.InstanceRecord) FrameStatus

	// ClearColor returns the background color of every frame.
	//
	// Returns:
	//   - wgpu.Color: the clear color
	ClearColor() wgpu.Color
}

var _ FrameRenderer = &frameRenderer{}

// NewFrameRenderer creates a FrameRenderer clearing to clearColor.
//
// Parameters:
//   - clearColor: the background color
//
// Returns:
//   - FrameRenderer: the frame renderer
func NewFrameRenderer(clearColor wgpu.Color) FrameRenderer {
	return &frameRenderer{clearColor: clearColor}
}

func (f *frameRenderer) ClearColor() wgpu.Color {
	return f.clearColor
}

func (f *frameRenderer) RenderFrame(l SurfaceLifecycle, asset *geometry.Asset, instances []geometry.InstanceRecord) FrameStatus {
	st := l.attached()
	if st == nil {
		return FrameIdle
	}

	draw := asset != nil && len(instances) > 0
	var (
		mesh          *geometry.MeshBuffers
		instanceBuf   geometry.Buffer
		instanceCount = uint32(len(instances))
		err           error
	)
	if draw {
		mesh, err = st.meshBuffers(asset)
		if err != nil {
			common.Logger().Warn("frame dropped: mesh upload failed", "asset", asset.Label(), "error", err)
			return FrameDropped
		}
		instanceBuf, err = geometry.UploadInstances(st.device, instances)
		if err != nil {
			common.Logger().Warn("frame dropped: instance upload failed", "instances", instanceCount, "error", err)
			return FrameDropped
		}
		defer instanceBuf.Release()
	}

	surface := st.surface.Surface
	target, err := surface.AcquireTexture()
	if err != nil {
		if errors.Is(err, common.ErrSurfaceAcquireTransient) {
			common.Logger().Warn("surface outdated, reconfiguring", "error", err)
			if rerr := l.Reconfigure(); rerr != nil {
				common.Logger().Warn("surface reconfigure failed", "error", rerr)
			}
			return FrameRecovered
		}
		common.Logger().Warn("frame dropped: surface texture unavailable", "error", err)
		return FrameDropped
	}
	defer target.Release()

	// An acquired texture must be presented before the next acquire, even when the frame is dropped.
	drop := func(reason string, err error) FrameStatus {
		common.Logger().Warn("frame dropped: "+reason, "error", err)
		surface.Present()
		return FrameDropped
	}

	encoder, err := st.device.CreateCommandEncoder("Frame Encoder")
	if err != nil {
		return drop("command encoder unavailable", err)
	}
	defer encoder.Release()

	pass, err := encoder.BeginRenderPass(target, f.clearColor)
	if err != nil {
		return drop("render pass failed", err)
	}
	if draw {
		pass.SetPipeline(st.pipeline.Handle())
		pass.SetVertexBuffer(0, mesh.Vertex)
		pass.SetIndexBuffer(mesh.Index)
		pass.SetVertexBuffer(1, instanceBuf)
		pass.DrawIndexed(mesh.IndexCount, instanceCount)
	}
	pass.End()

	commands, err := encoder.Finish()
	if err != nil {
		return drop("command recording failed", err)
	}
	st.queue.Submit(commands)
	commands.Release()
	surface.Present()
	return FramePresented
}
