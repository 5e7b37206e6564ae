package types

import "math"

// Mat3 is a 3x3 matrix stored in row-major order: element (row, col) lives
// at index row*3+col.
type Mat3 [9]float32

// Mat4 is a 4x4 matrix stored in row-major order: element (row, col) lives
// at index row*4+col. Points are transformed as column vectors (M * v);
// translation lives in column 3 (indices 3, 7, 11).
type Mat4 [16]float32

// Ident4 returns the 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4FromBasisAndPosition builds a view/world transform out of a row-major
// 3x3 orientation basis and a translation, matching the scene file's
// {matrix: [9 floats], position: [3 floats]} camera encoding.
func Mat4FromBasisAndPosition(basis [9]float32, pos Vec3) Mat4 {
	return Mat4{
		basis[0], basis[1], basis[2], pos[0],
		basis[3], basis[4], basis[5], pos[1],
		basis[6], basis[7], basis[8], pos[2],
		0, 0, 0, 1,
	}
}

// Mat4FromRowMajor16 builds a matrix from a flat row-major 16 element slice,
// matching the scene file's animation frame encoding.
func Mat4FromRowMajor16(m []float32) Mat4 {
	var out Mat4
	copy(out[:], m[:16])
	return out
}

// Row returns row i (0-indexed) as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i*4+0], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Col returns column i (0-indexed) as a Vec4.
func (m Mat4) Col(i int) Vec4 {
	return Vec4{m[i], m[4+i], m[8+i], m[12+i]}
}

// Translation returns the translation component (column 3, rows 0..2).
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Mul4 multiplies two 4x4 matrices (m * other).
func (m Mat4) Mul4(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * other[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Mul4x1 transforms a Vec4 by the matrix (column vector convention: m * v).
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// TransformPoint applies the matrix to a point (w=1), returning the
// perspective-divided xyz.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	r := m.Mul4x1(v.Vec4(1))
	if r[3] != 0 && r[3] != 1 {
		return r.Vec3().Mul(1 / r[3])
	}
	return r.Vec3()
}

// TransformDirection applies the matrix to a direction (w=0), ignoring
// translation.
func (m Mat4) TransformDirection(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Transpose returns the matrix transpose.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// Inv returns the matrix inverse. Panics-free: returns the identity if the
// matrix is singular (no caller checks for singular transforms first).
func (m Mat4) Inv() Mat4 {
	a := m
	inv := Mat4{}

	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]

	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]

	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]

	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 {
		return Ident4()
	}
	invDet := 1 / det

	var out Mat4
	// The cofactor expansion above already yields the adjugate in the same
	// row-major layout as m, so scaling by 1/det gives the inverse.
	for i := range inv {
		out[i] = inv[i] * invDet
	}
	return out
}

// LookAtV builds a right-handed view matrix looking from eye towards
// center, with the given up direction, using the column-vector convention
// (translation in column 3).
func LookAtV(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Perspective4 builds a right-handed perspective projection matrix. fovY is
// in radians.
func Perspective4(fovY, aspect, near, far float32) Mat4 {
	t := float32(math.Tan(float64(fovY) / 2))
	var m Mat4
	m[0] = 1 / (aspect * t)
	m[5] = 1 / t
	m[10] = -(far + near) / (far - near)
	m[11] = -(2 * far * near) / (far - near)
	m[14] = -1
	return m
}
