package shader

import (
	"fmt"
	"os"
	"sort"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// ShaderType identifies which render pipeline stage a shader feeds.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the lowercase stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key          string
	path         string
	source       string
	shaderType   ShaderType
	entryPoint   string
	vertexInputs map[uint32]wgpu.VertexFormat
	module       *wgpu.ShaderModuleDescriptor
}

// Shader is a loaded, pre-processed and validated WGSL stage.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Path returns the file the shader was loaded from, or an empty string for in-memory sources.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// ShaderType returns the pipeline stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// VertexInputs returns the vertex format declared at each @location input.
	// Empty for fragment shaders.
	//
	// Returns:
	//   - map[uint32]wgpu.VertexFormat: formats keyed by shader location
	VertexInputs() map[uint32]wgpu.VertexFormat

	// Locations returns the declared vertex input locations in ascending order.
	//
	// Returns:
	//   - []uint32: the sorted shader locations
	Locations() []uint32

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// Load reads a WGSL file, expands its annotations and validates it.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - shaderType: the pipeline stage the shader feeds
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the loaded shader
//   - error: *common.ShaderLoadError if the file cannot be read, common.ErrPipelineCompileFailed if it does not validate
func Load(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, &common.ShaderLoadError{Path: sourcePath, Err: err}
	}
	s, err := Parse(key, shaderType, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	s.(*shader).path = sourcePath
	return s, nil
}

// Parse builds a Shader from in-memory WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - shaderType: the pipeline stage the shader feeds
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: common.ErrPipelineCompileFailed if the source does not pre-process or validate
func Parse(key string, shaderType ShaderType, source string) (Shader, error) {
	s, err := parse(key, shaderType, source)
	if err != nil {
		return nil, err
	}
	if err := validate(s.source); err != nil {
		return nil, fmt.Errorf("%w: %s shader %q: %w", common.ErrPipelineCompileFailed, shaderType, key, err)
	}
	return s, nil
}

// parse pre-processes the source and extracts the entry point and vertex inputs without validation.
func parse(key string, shaderType ShaderType, source string) (*shader, error) {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s shader %q: %w", common.ErrPipelineCompileFailed, shaderType, key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		vertexInputs: make(map[uint32]wgpu.VertexFormat),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: processed,
			},
		},
	}
	s.entryPoint = parseEntryPoint(processed, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("%w: %s shader %q has no @%s entry point", common.ErrPipelineCompileFailed, shaderType, key, shaderType)
	}
	if shaderType == ShaderTypeVertex {
		s.vertexInputs = parseVertexInputs(processed)
	}
	return s, nil
}

// validate runs the WGSL front end over the source.
func validate(source string) error {
	if _, err := naga.Compile(source); err != nil {
		return err
	}
	return nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) VertexInputs() map[uint32]wgpu.VertexFormat {
	return s.vertexInputs
}

func (s *shader) Locations() []uint32 {
	locs := make([]uint32, 0, len(s.vertexInputs))
	for loc := range s.vertexInputs {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	return locs
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
