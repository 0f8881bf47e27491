package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is a GPU-resident buffer owned by whoever created it.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Release frees the GPU memory backing the buffer.
	Release()
}

// BufferAllocator creates initialized GPU buffers. A GPU device satisfies this.
type BufferAllocator interface {
	// CreateBuffer allocates a buffer with the given usage and uploads contents into it.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: the buffer usage flags (CopyDst is added by the allocator)
	//   - contents: the bytes to upload
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if allocation failed
	CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (Buffer, error)
}

// MeshBuffers are the GPU buffers derived from a Mesh. They are immutable after upload
// and become invalid once the device that created them is released.
type MeshBuffers struct {
	Vertex     Buffer
	Index      Buffer
	IndexCount uint32
}

// Release frees both buffers. Safe to call on a nil receiver.
func (m *MeshBuffers) Release() {
	if m == nil {
		return
	}
	if m.Vertex != nil {
		m.Vertex.Release()
		m.Vertex = nil
	}
	if m.Index != nil {
		m.Index.Release()
		m.Index = nil
	}
}

// Upload copies a mesh's vertices and indices into vertex and index buffers.
// If the index buffer cannot be created the vertex buffer is released before returning.
//
// Parameters:
//   - alloc: the device to allocate on
//   - label: debug label prefix
//   - mesh: the mesh to upload
//
// Returns:
//   - *MeshBuffers: the uploaded buffers
//   - error: ErrEmptyMesh or an allocation error
func Upload(alloc BufferAllocator, label string, mesh Mesh) (*MeshBuffers, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, common.ErrEmptyMesh
	}

	vb, err := alloc.CreateBuffer(label+" Vertex Buffer", wgpu.BufferUsageVertex, MarshalVertices(mesh.Vertices))
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	ib, err := alloc.CreateBuffer(label+" Index Buffer", wgpu.BufferUsageIndex, MarshalIndices(mesh.Indices))
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to create index buffer: %w", err)
	}

	common.Logger().Debug("mesh uploaded", "label", label, "vertexBytes", vb.Size(), "indexBytes", ib.Size())
	return &MeshBuffers{Vertex: vb, Index: ib, IndexCount: mesh.IndexCount()}, nil
}

// UploadInstances copies per-instance records into a vertex buffer stepped per instance.
// The buffer belongs to a single frame; callers release it once the frame is submitted.
//
// Parameters:
//   - alloc: the device to allocate on
//   - instances: the instance records, in draw order
//
// Returns:
//   - Buffer: the instance buffer
//   - error: an allocation error
func UploadInstances(alloc BufferAllocator, instances []InstanceRecord) (Buffer, error) {
	buf, err := alloc.CreateBuffer("Instance Buffer", wgpu.BufferUsageVertex, MarshalInstances(instances))
	if err != nil {
		return nil, fmt.Errorf("failed to create instance buffer: %w", err)
	}
	return buf, nil
}
