package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches Vertex layout exactly (20 bytes).
//
//go:embed assets/vertex.wgsl
var VertexSource string

// InstanceSource is the canonical WGSL definition of the InstanceInput struct.
// Matches InstanceRecord layout exactly (80 bytes).
//
//go:embed assets/instance.wgsl
var InstanceSource string

const (
	// VertexSize is the packed size of a Vertex in bytes.
	VertexSize = 20
	// InstanceSize is the packed size of an InstanceRecord in bytes.
	InstanceSize = 80
	// IndexSize is the size of a single uint32 index in bytes.
	IndexSize = 4
)

// Vertex is a single 2D mesh vertex with a per-vertex RGB color.
type Vertex struct {
	Position [2]float32 // offset  0: position in clip space (8 bytes)
	Color    [3]float32 // offset  8: linear RGB color (12 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.marshalInto(buf)
	return buf
}

func (v *Vertex) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Color[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Color[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Color[2]))
}

// InstanceRecord holds the per-instance data for one repetition of a mesh draw.
// Instances share geometry but vary transform and color; there is no depth test,
// so the order of records only affects draw order.
type InstanceRecord struct {
	Transform [16]float32 // offset  0: column-major 4x4 model transform (64 bytes)
	Color     [4]float32  // offset 64: RGBA tint (16 bytes)
}

// NewInstance creates an InstanceRecord from a transform and an RGBA color.
//
// Parameters:
//   - transform: column-major 4x4 model matrix
//   - color: RGBA color, each channel in [0, 1]
//
// Returns:
//   - InstanceRecord: the instance record
func NewInstance(transform [16]float32, color [4]float32) InstanceRecord {
	return InstanceRecord{Transform: transform, Color: color}
}

// Size returns the size of the InstanceRecord struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (r *InstanceRecord) Size() int {
	return int(unsafe.Sizeof(*r))
}

// Marshal serializes the InstanceRecord into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (r *InstanceRecord) Marshal() []byte {
	buf := make([]byte, InstanceSize)
	r.marshalInto(buf)
	return buf
}

func (r *InstanceRecord) marshalInto(buf []byte) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(r.Transform[i]))
	}
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(r.Color[i]))
	}
}

// MarshalVertices packs a vertex slice into one contiguous little-endian buffer.
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*VertexSize : (i+1)*VertexSize])
	}
	return buf
}

// MarshalIndices packs a uint32 index slice into one contiguous little-endian buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*IndexSize)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*IndexSize:(i+1)*IndexSize], idx)
	}
	return buf
}

// MarshalInstances packs an instance slice into one contiguous little-endian buffer.
func MarshalInstances(instances []InstanceRecord) []byte {
	buf := make([]byte, len(instances)*InstanceSize)
	for i := range instances {
		instances[i].marshalInto(buf[i*InstanceSize : (i+1)*InstanceSize])
	}
	return buf
}

// VertexLayout describes Vertex for buffer slot 0: position at location 0, color at location 1.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1},
		},
	}
}

// InstanceLayout describes InstanceRecord for buffer slot 1. The transform occupies
// locations 2 through 5 as four column vectors and the color occupies location 6.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-instance buffer layout
func InstanceLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 6},
		},
	}
}
