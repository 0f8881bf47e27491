package pipeline

import (
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderPipelineDescriptor translates p into the wgpu descriptor for a single-sample,
// depthless pass with one color target in p's format.
//
// Parameters:
//   - p: the pipeline description
//   - vs: the compiled vertex shader module
//   - fs: the compiled fragment shader module
//   - layout: the pipeline layout (no bind groups)
//
// Returns:
//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for Device.CreateRenderPipeline
func RenderPipelineDescriptor(p Pipeline, vs, fs *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  p.Label(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.Shader(shader.ShaderTypeVertex).EntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.Shader(shader.ShaderTypeFragment).EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.Format(),
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}
