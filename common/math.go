package common

import (
	"math"
)

// Identity resets a 4x4 matrix to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination matrix
func Identity(m *[16]float32) {
	*m = [16]float32{}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Translation returns a column-major 4x4 translation matrix.
//
// Parameters:
//   - x, y, z: the translation along each axis
//
// Returns:
//   - [16]float32: the translation matrix
func Translation(x, y, z float32) [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a column-major 4x4 scale matrix.
//
// Parameters:
//   - x, y, z: the scale factor along each axis
//
// Returns:
//   - [16]float32: the scale matrix
func Scale(x, y, z float32) [16]float32 {
	return [16]float32{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotationZ returns a column-major 4x4 matrix rotating counter-clockwise around the Z axis.
//
// Parameters:
//   - angle: rotation angle in radians
//
// Returns:
//   - [16]float32: the rotation matrix
func RotationZ(angle float32) [16]float32 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	return [16]float32{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul4 multiplies two 4x4 matrices and returns the result.
// All matrices are stored in column-major order (WebGPU convention).
// Result: a * b
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - [16]float32: the product matrix
func Mul4(a, b [16]float32) [16]float32 {
	var out [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// BuildModelMatrix2D composes translation * rotation(Z) * scale for a flat primitive in clip space.
//
// Parameters:
//   - posX, posY: translation in clip space
//   - angle: rotation around Z in radians
//   - scaleX, scaleY: scale factors
//
// Returns:
//   - [16]float32: the composed model matrix
func BuildModelMatrix2D(posX, posY, angle, scaleX, scaleY float32) [16]float32 {
	return Mul4(Translation(posX, posY, 0), Mul4(RotationZ(angle), Scale(scaleX, scaleY, 1)))
}
