package geometry

import (
	"github.com/Carmen-Shannon/sturdy-go/common"
)

// Mesh is host-side indexed geometry. It is treated as immutable once uploaded.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// NewMesh creates a Mesh from vertices and uint32 indices.
//
// Parameters:
//   - vertices: the ordered vertex list
//   - indices: triangle-list indices into vertices
//
// Returns:
//   - Mesh: the mesh
func NewMesh(vertices []Vertex, indices []uint32) Mesh {
	common.Logger().Info("mesh created", "vertices", len(vertices), "indices", len(indices))
	return Mesh{Vertices: vertices, Indices: indices}
}

// SampleQuad returns a unit quad centered on the origin with a different color at each corner.
// Both triangles wind counter-clockwise so they survive back-face culling.
func SampleQuad() Mesh {
	return NewMesh(
		[]Vertex{
			{Position: [2]float32{-0.5, 0.5}, Color: [3]float32{1, 0, 0}},  // top-left: red
			{Position: [2]float32{0.5, 0.5}, Color: [3]float32{0, 1, 0}},   // top-right: green
			{Position: [2]float32{0.5, -0.5}, Color: [3]float32{0, 0, 1}},  // bottom-right: blue
			{Position: [2]float32{-0.5, -0.5}, Color: [3]float32{1, 1, 0}}, // bottom-left: yellow
		},
		[]uint32{
			0, 2, 1,
			0, 3, 2,
		},
	)
}

// IndexCount returns the number of indices drawn for this mesh.
func (m Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// Asset pairs a Mesh with an identity that GPU owners can cache uploaded buffers against.
// The Asset itself never holds GPU resources, so it outlives any device it is uploaded to.
type Asset struct {
	label string
	mesh  Mesh
}

// NewAsset wraps a Mesh for upload.
//
// Parameters:
//   - label: debug label used for the GPU buffers created from this asset
//   - mesh: the mesh data
//
// Returns:
//   - *Asset: the geometry asset
func NewAsset(label string, mesh Mesh) *Asset {
	return &Asset{label: label, mesh: mesh}
}

// Label returns the debug label of the asset.
func (a *Asset) Label() string {
	return a.label
}

// Mesh returns the host-side mesh of the asset.
func (a *Asset) Mesh() Mesh {
	return a.mesh
}
