package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeBackend records every call made through the backend interfaces, in order.
type fakeBackend struct {
	calls []string

	surfaceErr error
	adapterErr error
	deviceErr  error
	bufferErr  error
	encoderErr error
	passErr    error
	finishErr  error

	caps SurfaceCapabilities

	// acquireErrs are returned by successive AcquireTexture calls; nil entries succeed.
	acquireErrs []error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		caps: SurfaceCapabilities{
			Formats:      []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb},
			PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox, wgpu.PresentModeImmediate},
		},
	}
}

func (b *fakeBackend) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

// count returns how many recorded calls start with prefix.
func (b *fakeBackend) count(prefix string) int {
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// releases returns the recorded release calls in order.
func (b *fakeBackend) releases() []string {
	var out []string
	for _, c := range b.calls {
		if strings.HasSuffix(c, ".release") || strings.HasPrefix(c, "buffer.release") {
			out = append(out, c)
		}
	}
	return out
}

// since returns the calls recorded after the first n.
func (b *fakeBackend) since(n int) []string {
	return append([]string(nil), b.calls[n:]...)
}

func (b *fakeBackend) CreateSurface(handle WindowHandle) (Surface, error) {
	if b.surfaceErr != nil {
		return nil, b.surfaceErr
	}
	b.record("backend.createSurface")
	return &fakeSurface{b: b}, nil
}

func (b *fakeBackend) RequestAdapter(surface Surface, opts AdapterOptions) (Adapter, error) {
	if b.adapterErr != nil {
		return nil, b.adapterErr
	}
	b.record("backend.requestAdapter fallback=%t", opts.ForceFallbackAdapter)
	return &fakeAdapter{b: b}, nil
}

type fakeAdapter struct{ b *fakeBackend }

func (a *fakeAdapter) RequestDevice(label string) (Device, Queue, error) {
	if a.b.deviceErr != nil {
		return nil, nil, a.b.deviceErr
	}
	a.b.record("adapter.requestDevice")
	return &fakeDevice{b: a.b}, &fakeQueue{b: a.b}, nil
}

func (a *fakeAdapter) Release() { a.b.record("adapter.release") }

type fakeSurface struct {
	b       *fakeBackend
	configs []SurfaceConfig
}

func (s *fakeSurface) Capabilities(adapter Adapter) SurfaceCapabilities { return s.b.caps }

func (s *fakeSurface) Configure(adapter Adapter, device Device, config SurfaceConfig) {
	s.configs = append(s.configs, config)
	s.b.record("surface.configure %dx%d", config.Width, config.Height)
}

func (s *fakeSurface) AcquireTexture() (SurfaceTexture, error) {
	if len(s.b.acquireErrs) > 0 {
		err := s.b.acquireErrs[0]
		s.b.acquireErrs = s.b.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s.b.record("surface.acquire")
	return &fakeTexture{b: s.b}, nil
}

func (s *fakeSurface) Present() { s.b.record("surface.present") }
func (s *fakeSurface) Release() { s.b.record("surface.release") }

type fakeTexture struct{ b *fakeBackend }

func (t *fakeTexture) Release() { t.b.record("texture.release") }

type fakeDevice struct{ b *fakeBackend }

func (d *fakeDevice) CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (geometry.Buffer, error) {
	if d.b.bufferErr != nil {
		return nil, d.b.bufferErr
	}
	d.b.record("device.createBuffer %s", label)
	return &fakeBuffer{b: d.b, label: label, size: uint64(len(contents))}, nil
}

func (d *fakeDevice) CreateRenderPipeline(p pipeline.Pipeline) (pipeline.Handle, error) {
	d.b.record("device.createRenderPipeline %v", p.Format())
	return &fakePipelineHandle{b: d.b}, nil
}

func (d *fakeDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	if d.b.encoderErr != nil {
		return nil, d.b.encoderErr
	}
	d.b.record("device.createCommandEncoder")
	return &fakeEncoder{b: d.b}, nil
}

func (d *fakeDevice) Release() { d.b.record("device.release") }

type fakeQueue struct{ b *fakeBackend }

func (q *fakeQueue) Submit(commands ...CommandBuffer) { q.b.record("queue.submit %d", len(commands)) }
func (q *fakeQueue) Release()                         { q.b.record("queue.release") }

type fakeBuffer struct {
	b     *fakeBackend
	label string
	size  uint64
}

func (f *fakeBuffer) Size() uint64 { return f.size }
func (f *fakeBuffer) Release()     { f.b.record("buffer.release %s", f.label) }

type fakePipelineHandle struct{ b *fakeBackend }

func (h *fakePipelineHandle) Release() { h.b.record("pipeline.release") }

type fakeEncoder struct{ b *fakeBackend }

func (e *fakeEncoder) BeginRenderPass(target SurfaceTexture, clear wgpu.Color) (RenderPass, error) {
	if e.b.passErr != nil {
		return nil, e.b.passErr
	}
	e.b.record("encoder.beginRenderPass clear=%.1f,%.1f,%.1f,%.1f", clear.R, clear.G, clear.B, clear.A)
	return &fakePass{b: e.b}, nil
}

func (e *fakeEncoder) Finish() (CommandBuffer, error) {
	if e.b.finishErr != nil {
		return nil, e.b.finishErr
	}
	e.b.record("encoder.finish")
	return &fakeCommandBuffer{b: e.b}, nil
}

func (e *fakeEncoder) Release() { e.b.record("encoder.release") }

type fakePass struct{ b *fakeBackend }

func (p *fakePass) SetPipeline(h pipeline.Handle) { p.b.record("pass.setPipeline") }
func (p *fakePass) SetVertexBuffer(slot uint32, buffer geometry.Buffer) {
	p.b.record("pass.setVertexBuffer %d %s", slot, buffer.(*fakeBuffer).label)
}
func (p *fakePass) SetIndexBuffer(buffer geometry.Buffer) {
	p.b.record("pass.setIndexBuffer %s", buffer.(*fakeBuffer).label)
}
func (p *fakePass) DrawIndexed(indexCount, instanceCount uint32) {
	p.b.record("pass.drawIndexed %d %d", indexCount, instanceCount)
}
func (p *fakePass) End() { p.b.record("pass.end") }

type fakeCommandBuffer struct{ b *fakeBackend }

func (c *fakeCommandBuffer) Release() { c.b.record("commandBuffer.release") }

type fakeWindow struct{}

func (fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

// fakeShader satisfies shader.Shader with the quad's vertex inputs so pipelines compile
// without touching the WGSL front end.
type fakeShader struct {
	key        string
	shaderType shader.ShaderType
	inputs     map[uint32]wgpu.VertexFormat
}

func (s *fakeShader) Key() string                                { return s.key }
func (s *fakeShader) Path() string                               { return "" }
func (s *fakeShader) Source() string                             { return s.key }
func (s *fakeShader) EntryPoint() string                         { return "main" }
func (s *fakeShader) ShaderType() shader.ShaderType              { return s.shaderType }
func (s *fakeShader) VertexInputs() map[uint32]wgpu.VertexFormat { return s.inputs }
func (s *fakeShader) Locations() []uint32                        { return nil }
func (s *fakeShader) Module() *wgpu.ShaderModuleDescriptor       { return nil }

var errFactory = errors.New("shader rejected")

// testPipelineFactory compiles the quad pipeline from fake shaders, or fails with errFactory.
func testPipelineFactory(fail bool) PipelineFactory {
	return func(compiler pipeline.Compiler, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
		if fail {
			return nil, errFactory
		}
		inputs := map[uint32]wgpu.VertexFormat{}
		for _, l := range []wgpu.VertexBufferLayout{geometry.VertexLayout(), geometry.InstanceLayout()} {
			for _, a := range l.Attributes {
				inputs[a.ShaderLocation] = a.Format
			}
		}
		vs := &fakeShader{key: "test.vert", shaderType: shader.ShaderTypeVertex, inputs: inputs}
		fs := &fakeShader{key: "test.frag", shaderType: shader.ShaderTypeFragment}
		return pipeline.Compile(compiler, format, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	}
}

func newTestLifecycle(b *fakeBackend) SurfaceLifecycle {
	return NewSurfaceLifecycle(b, LifecycleConfig{
		PresentMode: PresentModeLowLatency,
		Pipeline:    testPipelineFactory(false),
	})
}

func testInstances(n int) []geometry.InstanceRecord {
	out := make([]geometry.InstanceRecord, n)
	for i := range out {
		out[i] = geometry.NewInstance(
			[16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, float32(i) * 0.1, 0, 0, 1},
			[4]float32{1, 1, 1, 1},
		)
	}
	return out
}
