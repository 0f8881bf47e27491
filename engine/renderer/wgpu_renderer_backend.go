package renderer

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend implements Backend on top of wgpu-native.
type wgpuBackend struct{}

type wgpuSurface struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
}

type wgpuSurfaceTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type wgpuAdapter struct {
	adapter *wgpu.Adapter
}

type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

type wgpuQueue struct {
	queue *wgpu.Queue
}

type wgpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

type wgpuPipelineHandle struct {
	pipeline *wgpu.RenderPipeline
}

type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

type wgpuCommandBuffer struct {
	buffer *wgpu.CommandBuffer
}

var (
	_ Backend         = &wgpuBackend{}
	_ Surface         = &wgpuSurface{}
	_ SurfaceTexture  = &wgpuSurfaceTexture{}
	_ Adapter         = &wgpuAdapter{}
	_ Device          = &wgpuDevice{}
	_ Queue           = &wgpuQueue{}
	_ geometry.Buffer = &wgpuBuffer{}
	_ pipeline.Handle = &wgpuPipelineHandle{}
	_ CommandEncoder  = &wgpuCommandEncoder{}
	_ RenderPass      = &wgpuRenderPass{}
	_ CommandBuffer   = &wgpuCommandBuffer{}
)

// newWGPUBackend locks the calling goroutine to its OS thread; wgpu-native and the
// window system expect every call to come from the thread that created the window.
func newWGPUBackend() Backend {
	runtime.LockOSThread()
	common.Logger().Debug("webgpu backend created", "os", common.CurrentOS())
	return &wgpuBackend{}
}

func (b *wgpuBackend) CreateSurface(handle WindowHandle) (Surface, error) {
	desc := handle.SurfaceDescriptor()
	if desc == nil {
		return nil, errors.New("window has no surface descriptor")
	}
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(desc)
	if surface == nil {
		instance.Release()
		return nil, errors.New("instance returned no surface")
	}
	return &wgpuSurface{instance: instance, surface: surface}, nil
}

func (b *wgpuBackend) RequestAdapter(surface Surface, opts AdapterOptions) (Adapter, error) {
	s, ok := surface.(*wgpuSurface)
	if !ok {
		return nil, fmt.Errorf("surface %T was not created by this backend", surface)
	}
	a, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface:    s.surface,
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuAdapter{adapter: a}, nil
}

func (a *wgpuAdapter) RequestDevice(label string) (Device, Queue, error) {
	d, err := a.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, nil, err
	}
	q := d.GetQueue()
	return &wgpuDevice{device: d, queue: q}, &wgpuQueue{queue: q}, nil
}

func (a *wgpuAdapter) Release() {
	a.adapter.Release()
}

func (s *wgpuSurface) Capabilities(adapter Adapter) SurfaceCapabilities {
	caps := s.surface.GetCapabilities(adapter.(*wgpuAdapter).adapter)
	return SurfaceCapabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
		AlphaModes:   caps.AlphaModes,
	}
}

// Configure applies config to the surface. MaxFramesInFlight is not forwarded: this wgpu
// release has no desired-latency field, so the driver default applies.
func (s *wgpuSurface) Configure(adapter Adapter, device Device, config SurfaceConfig) {
	s.surface.Configure(adapter.(*wgpuAdapter).adapter, device.(*wgpuDevice).device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      config.Format,
		Width:       config.Width,
		Height:      config.Height,
		PresentMode: config.PresentMode,
		AlphaMode:   config.AlphaMode,
	})
}

func (s *wgpuSurface) AcquireTexture() (SurfaceTexture, error) {
	texture, err := s.surface.GetCurrentTexture()
	if err := classifyAcquire(texture, err); err != nil {
		return nil, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("%w: %w", common.ErrSurfaceAcquireFatal, err)
	}
	return &wgpuSurfaceTexture{texture: texture, view: view}, nil
}

func (s *wgpuSurface) Present() {
	s.surface.Present()
}

func (s *wgpuSurface) Release() {
	s.surface.Release()
	s.instance.Release()
}

// classifyAcquire maps the result of GetCurrentTexture onto the transient/fatal taxonomy.
// wgpu drops the surface status: an outdated, lost or timed-out surface comes back as a
// texture without a native handle and no error. Only validation failures are errors.
func classifyAcquire(texture *wgpu.Texture, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSurfaceAcquireFatal, err)
	}
	if textureMissing(texture) {
		return fmt.Errorf("%w: surface texture unavailable", common.ErrSurfaceAcquireTransient)
	}
	return nil
}

// textureMissing reports whether texture has no native handle. Using such a texture aborts
// inside wgpu-native, where recover cannot reach.
func textureMissing(texture *wgpu.Texture) bool {
	if texture == nil {
		return true
	}
	ref := reflect.ValueOf(texture).Elem().FieldByName("ref")
	switch ref.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		return ref.IsNil()
	default:
		return false
	}
}

func (t *wgpuSurfaceTexture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

func (d *wgpuDevice) CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (geometry.Buffer, error) {
	size := uint64(len(contents))
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	if size > 0 {
		d.queue.WriteBuffer(buf, 0, contents)
	}
	return &wgpuBuffer{buffer: buf, size: size}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(p pipeline.Pipeline) (pipeline.Handle, error) {
	vs, err := d.device.CreateShaderModule(p.Shader(shader.ShaderTypeVertex).Module())
	if err != nil {
		return nil, err
	}
	defer vs.Release()
	fs, err := d.device.CreateShaderModule(p.Shader(shader.ShaderTypeFragment).Module())
	if err != nil {
		return nil, err
	}
	defer fs.Release()

	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Label() + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{},
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	created, err := d.device.CreateRenderPipeline(pipeline.RenderPipelineDescriptor(p, vs, fs, layout))
	if err != nil {
		return nil, err
	}
	return &wgpuPipelineHandle{pipeline: created}, nil
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuCommandEncoder{encoder: enc}, nil
}

func (d *wgpuDevice) Release() {
	d.device.Release()
}

func (q *wgpuQueue) Submit(commands ...CommandBuffer) {
	buffers := make([]*wgpu.CommandBuffer, 0, len(commands))
	for _, c := range commands {
		buffers = append(buffers, c.(*wgpuCommandBuffer).buffer)
	}
	q.queue.Submit(buffers...)
}

func (q *wgpuQueue) Release() {
	q.queue.Release()
}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (b *wgpuBuffer) Release() {
	b.buffer.Release()
}

func (h *wgpuPipelineHandle) Release() {
	h.pipeline.Release()
}

func (e *wgpuCommandEncoder) BeginRenderPass(target SurfaceTexture, clear wgpu.Color) (RenderPass, error) {
	t, ok := target.(*wgpuSurfaceTexture)
	if !ok || t.view == nil {
		return nil, errors.New("render target has no texture view")
	}
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       t.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	return &wgpuRenderPass{pass: pass}, nil
}

func (e *wgpuCommandEncoder) Finish() (CommandBuffer, error) {
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{buffer: cb}, nil
}

func (e *wgpuCommandEncoder) Release() {
	e.encoder.Release()
}

func (p *wgpuRenderPass) SetPipeline(h pipeline.Handle) {
	p.pass.SetPipeline(h.(*wgpuPipelineHandle).pipeline)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer geometry.Buffer) {
	p.pass.SetVertexBuffer(slot, buffer.(*wgpuBuffer).buffer, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer geometry.Buffer) {
	p.pass.SetIndexBuffer(buffer.(*wgpuBuffer).buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
	p.pass.Release()
}

func (c *wgpuCommandBuffer) Release() {
	c.buffer.Release()
}
