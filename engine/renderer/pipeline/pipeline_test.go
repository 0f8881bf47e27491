package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeShader struct {
	key        string
	source     string
	shaderType shader.ShaderType
	entry      string
	inputs     map[uint32]wgpu.VertexFormat
}

func (s *fakeShader) Key() string                                { return s.key }
func (s *fakeShader) Path() string                               { return "" }
func (s *fakeShader) Source() string                             { return s.source }
func (s *fakeShader) EntryPoint() string                         { return s.entry }
func (s *fakeShader) ShaderType() shader.ShaderType              { return s.shaderType }
func (s *fakeShader) VertexInputs() map[uint32]wgpu.VertexFormat { return s.inputs }
func (s *fakeShader) Locations() []uint32                        { return nil }
func (s *fakeShader) Module() *wgpu.ShaderModuleDescriptor       { return nil }

type fakeHandle struct{ released int }

func (h *fakeHandle) Release() { h.released++ }

type fakeCompiler struct {
	err      error
	compiled []Pipeline
	handles  []*fakeHandle
}

func (c *fakeCompiler) CreateRenderPipeline(p Pipeline) (Handle, error) {
	if c.err != nil {
		return nil, c.err
	}
	h := &fakeHandle{}
	c.compiled = append(c.compiled, p)
	c.handles = append(c.handles, h)
	return h, nil
}

func quadShaders() (*fakeShader, *fakeShader) {
	inputs := map[uint32]wgpu.VertexFormat{}
	for _, l := range []wgpu.VertexBufferLayout{geometry.VertexLayout(), geometry.InstanceLayout()} {
		for _, a := range l.Attributes {
			inputs[a.ShaderLocation] = a.Format
		}
	}
	vs := &fakeShader{key: "quad.vert", source: "vs", shaderType: shader.ShaderTypeVertex, entry: "vs_main", inputs: inputs}
	fs := &fakeShader{key: "quad.frag", source: "fs", shaderType: shader.ShaderTypeFragment, entry: "fs_main"}
	return vs, fs
}

func TestCompileDefaults(t *testing.T) {
	c := &fakeCompiler{}
	vs, fs := quadShaders()
	p, err := Compile(c, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(c.compiled) != 1 {
		t.Fatalf("compiled %d pipelines, want 1", len(c.compiled))
	}
	if p.Format() != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", p.Format())
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("CullMode() = %v, want Back", p.CullMode())
	}
	if p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("FrontFace() = %v, want CCW", p.FrontFace())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %v, want TriangleList", p.Topology())
	}
	if p.BlendState() == nil || p.BlendState().Color.SrcFactor != wgpu.BlendFactorSrcAlpha {
		t.Errorf("BlendState() = %+v, want alpha blending", p.BlendState())
	}
	if len(p.VertexLayouts()) != 2 || p.VertexLayouts()[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("VertexLayouts() = %+v, want [vertex instance]", p.VertexLayouts())
	}

	p.Release()
	p.Release()
	if c.handles[0].released != 1 {
		t.Errorf("handle released %d times, want 1", c.handles[0].released)
	}
	if p.Handle() != nil {
		t.Error("Handle() != nil after Release")
	}
}

func TestCompileKey(t *testing.T) {
	c := &fakeCompiler{}
	vs, fs := quadShaders()
	a, _ := Compile(c, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	b, _ := Compile(c, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	d, _ := Compile(c, wgpu.TextureFormatRGBA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	e, _ := Compile(c, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout(), WithCullMode(wgpu.CullModeNone))

	if a.Key() != b.Key() {
		t.Errorf("equal inputs produced keys %s and %s", a.Key(), b.Key())
	}
	if a.Key() == d.Key() {
		t.Error("format change did not change the key")
	}
	if a.Key() == e.Key() {
		t.Error("cull mode change did not change the key")
	}
}

func TestCompileLocationMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[uint32]wgpu.VertexFormat)
	}{
		{"missing color location", func(m map[uint32]wgpu.VertexFormat) { delete(m, 6) }},
		{"missing position location", func(m map[uint32]wgpu.VertexFormat) { delete(m, 0) }},
		{"wrong format", func(m map[uint32]wgpu.VertexFormat) { m[1] = wgpu.VertexFormatFloat32x4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCompiler{}
			vs, fs := quadShaders()
			tt.mutate(vs.inputs)
			_, err := Compile(c, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
			if !errors.Is(err, common.ErrPipelineCompileFailed) {
				t.Errorf("Compile() error = %v, want %v", err, common.ErrPipelineCompileFailed)
			}
			if len(c.compiled) != 0 {
				t.Error("backend compiled a mismatched pipeline")
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	vs, fs := quadShaders()
	backendErr := errors.New("validation error")

	if _, err := Compile(&fakeCompiler{err: backendErr}, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout()); !errors.Is(err, common.ErrPipelineCompileFailed) || !errors.Is(err, backendErr) {
		t.Errorf("backend failure error = %v, want both %v and %v", err, common.ErrPipelineCompileFailed, backendErr)
	}
	if _, err := Compile(&fakeCompiler{}, wgpu.TextureFormatBGRA8Unorm, fs, vs, geometry.VertexLayout(), geometry.InstanceLayout()); !errors.Is(err, common.ErrPipelineCompileFailed) {
		t.Errorf("swapped stages error = %v, want %v", err, common.ErrPipelineCompileFailed)
	}
	if _, err := Compile(&fakeCompiler{}, wgpu.TextureFormatBGRA8Unorm, vs, nil, geometry.VertexLayout(), geometry.InstanceLayout()); !errors.Is(err, common.ErrPipelineCompileFailed) {
		t.Errorf("nil fragment error = %v, want %v", err, common.ErrPipelineCompileFailed)
	}
}

func TestRebuild(t *testing.T) {
	c := &fakeCompiler{}
	vs, fs := quadShaders()
	old, err := Compile(c, wgpu.TextureFormatRGBA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout(),
		WithLabel("Quad"), WithCullMode(wgpu.CullModeNone))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Rebuild(c, old, wgpu.TextureFormatBGRA8UnormSrgb)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if p.Format() != wgpu.TextureFormatBGRA8UnormSrgb {
		t.Errorf("Format() = %v, want BGRA8UnormSrgb", p.Format())
	}
	if p.Label() != "Quad" || p.CullMode() != wgpu.CullModeNone {
		t.Errorf("Rebuild() lost options: label %q cull %v", p.Label(), p.CullMode())
	}
	if old.Handle() == nil {
		t.Error("Rebuild() released the old pipeline")
	}
}

func TestBuildShaderErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.wgsl")
	if err := os.WriteFile(broken, []byte("fn helper() {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.wgsl")

	_, err := Build(&fakeCompiler{}, wgpu.TextureFormatBGRA8Unorm, geometry.VertexLayout(), geometry.InstanceLayout(), missing, broken)
	var le *common.ShaderLoadError
	if !errors.As(err, &le) || le.Path != missing {
		t.Errorf("Build() with missing vertex file error = %v, want ShaderLoadError for %s", err, missing)
	}

	_, err = Build(&fakeCompiler{}, wgpu.TextureFormatBGRA8Unorm, geometry.VertexLayout(), geometry.InstanceLayout(), broken, missing)
	if !errors.Is(err, common.ErrPipelineCompileFailed) {
		t.Errorf("Build() with invalid vertex file error = %v, want %v", err, common.ErrPipelineCompileFailed)
	}
}

func TestRenderPipelineDescriptor(t *testing.T) {
	vs, fs := quadShaders()
	p, err := Compile(&fakeCompiler{}, wgpu.TextureFormatBGRA8Unorm, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout())
	if err != nil {
		t.Fatal(err)
	}
	d := RenderPipelineDescriptor(p, nil, nil, nil)
	if d.Vertex.EntryPoint != "vs_main" || d.Fragment.EntryPoint != "fs_main" {
		t.Errorf("entry points = %q/%q", d.Vertex.EntryPoint, d.Fragment.EntryPoint)
	}
	if len(d.Fragment.Targets) != 1 || d.Fragment.Targets[0].Format != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("Targets = %+v, want one BGRA8Unorm target", d.Fragment.Targets)
	}
	if d.Multisample.Count != 1 {
		t.Errorf("Multisample.Count = %d, want 1", d.Multisample.Count)
	}
	if d.DepthStencil != nil {
		t.Error("DepthStencil != nil, want no depth attachment")
	}
	if len(d.Vertex.Buffers) != 2 {
		t.Errorf("len(Vertex.Buffers) = %d, want 2", len(d.Vertex.Buffers))
	}
}
