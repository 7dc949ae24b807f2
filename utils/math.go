package utils

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Quaternion helpers follow Blender mathutils numerics (float32, w-first
// storage, XYZ euler order) so retargeted keys match the authoring tool.

func Radians(deg float32) float32 {
	return float32(float64(deg) * math.Pi / 180.0)
}

func Degrees(rad float32) float32 {
	return float32(float64(rad) * 180.0 / math.Pi)
}

// QuatMul returns a ∘ b (b is applied first)
func QuatMul(a, b mgl32.Quat) mgl32.Quat {
	w := a.W*b.W - a.V[0]*b.V[0] - a.V[1]*b.V[1] - a.V[2]*b.V[2]
	x := a.W*b.V[0] + a.V[0]*b.W + a.V[1]*b.V[2] - a.V[2]*b.V[1]
	y := a.W*b.V[1] + a.V[1]*b.W + a.V[2]*b.V[0] - a.V[0]*b.V[2]
	z := a.W*b.V[2] + a.V[2]*b.W + a.V[0]*b.V[1] - a.V[1]*b.V[0]
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// QuatInverted leaves zero quaternions untouched, like mathutils
func QuatInverted(q mgl32.Quat) mgl32.Quat {
	f := q.Dot(q)
	if f == 0 {
		return q
	}
	return q.Conjugate().Scale(1.0 / f)
}

func QuatNormalized(q mgl32.Quat) mgl32.Quat {
	l := math32.Sqrt(q.Dot(q))
	if l == 0 {
		return mgl32.Quat{W: 0, V: mgl32.Vec3{1, 0, 0}}
	}
	return q.Scale(1.0 / l)
}

// quatToMat3 returns column-major matrix m[col][row]
func quatToMat3(q mgl32.Quat) (m [3][3]float32) {
	q0 := math.Sqrt2 * float64(q.W)
	q1 := math.Sqrt2 * float64(q.V[0])
	q2 := math.Sqrt2 * float64(q.V[1])
	q3 := math.Sqrt2 * float64(q.V[2])

	qda := q0 * q1
	qdb := q0 * q2
	qdc := q0 * q3
	qaa := q1 * q1
	qab := q1 * q2
	qac := q1 * q3
	qbb := q2 * q2
	qbc := q2 * q3
	qcc := q3 * q3

	m[0][0] = float32(1.0 - qbb - qcc)
	m[0][1] = float32(qdc + qab)
	m[0][2] = float32(-qdb + qac)

	m[1][0] = float32(-qdc + qab)
	m[1][1] = float32(1.0 - qaa - qcc)
	m[1][2] = float32(qda + qbc)

	m[2][0] = float32(qdb + qac)
	m[2][1] = float32(-qda + qbc)
	m[2][2] = float32(1.0 - qaa - qbb)
	return m
}

const eulerGimbalEpsilon = 16.0 * 1.1920929e-07

// QuatToEuler decomposes into XYZ euler angles (radians). Of the two
// valid solutions the one with the smaller absolute sum is returned.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := quatToMat3(QuatNormalized(q))

	var e1, e2 mgl32.Vec3
	cy := math32.Hypot(m[0][0], m[0][1])
	if cy > eulerGimbalEpsilon {
		e1[0] = math32.Atan2(m[1][2], m[2][2])
		e1[1] = math32.Atan2(-m[0][2], cy)
		e1[2] = math32.Atan2(m[0][1], m[0][0])

		e2[0] = math32.Atan2(-m[1][2], -m[2][2])
		e2[1] = math32.Atan2(-m[0][2], -cy)
		e2[2] = math32.Atan2(-m[0][1], -m[0][0])
	} else {
		e1[0] = math32.Atan2(-m[2][1], m[1][1])
		e1[1] = math32.Atan2(-m[0][2], cy)
		e1[2] = 0
		e2 = e1
	}

	if math32.Abs(e1[0])+math32.Abs(e1[1])+math32.Abs(e1[2]) >
		math32.Abs(e2[0])+math32.Abs(e2[1])+math32.Abs(e2[2]) {
		return e2
	}
	return e1
}

// EulerToQuat is the inverse of QuatToEuler (XYZ order, radians)
func EulerToQuat(e mgl32.Vec3) mgl32.Quat {
	ti := e[0] * 0.5
	tj := e[1] * 0.5
	th := e[2] * 0.5
	ci, cj, ch := math32.Cos(ti), math32.Cos(tj), math32.Cos(th)
	si, sj, sh := math32.Sin(ti), math32.Sin(tj), math32.Sin(th)
	cc := ci * ch
	cs := ci * sh
	sc := si * ch
	ss := si * sh

	return mgl32.Quat{
		W: cj*cc + sj*ss,
		V: mgl32.Vec3{
			cj*sc - sj*cs,
			cj*ss + sj*cc,
			cj*cs - sj*sc,
		},
	}
}

// QuatAddEuler decomposes q, adds offset to the euler angles and recomposes
func QuatAddEuler(q mgl32.Quat, offset mgl32.Vec3) mgl32.Quat {
	e := QuatToEuler(q)
	e[0] += offset[0]
	e[1] += offset[1]
	e[2] += offset[2]
	return EulerToQuat(e)
}

func quatToAxisAngle(q mgl32.Quat) (axis mgl32.Vec3, angle float32) {
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	ha := math32.Acos(w)
	si := math32.Sin(ha)
	angle = ha * 2
	if math32.Abs(si) < 0.0005 {
		si = 1
	}
	axis = mgl32.Vec3{q.V[0] / si, q.V[1] / si, q.V[2] / si}
	if axis[0] == 0 && axis[1] == 0 && axis[2] == 0 {
		axis[1] = 1
	}
	return axis, angle
}

// QuatToExpMap returns the rotation vector (axis * angle) of normalized q.
// Sign is not canonicalized: q and -q map to different vectors.
func QuatToExpMap(q mgl32.Quat) mgl32.Vec3 {
	axis, angle := quatToAxisAngle(QuatNormalized(q))
	return axis.Mul(angle)
}

func wrapAngle(angle float32) float32 {
	const pi = float32(math.Pi)
	r := math32.Mod(angle+pi, pi*2)
	if r < 0 {
		r += pi * 2
	}
	return r - pi
}

func ExpMapToQuat(v mgl32.Vec3) mgl32.Quat {
	var axis mgl32.Vec3
	angle := v.Dot(v)
	if angle > 1.0e-35 {
		angle = math32.Sqrt(angle)
		axis = v.Mul(1.0 / angle)
	} else {
		angle = 0
	}
	angle = wrapAngle(angle)

	phi := 0.5 * angle
	si := math32.Sin(phi)
	return mgl32.Quat{W: math32.Cos(phi), V: axis.Mul(si)}
}

// QuatFromWXYZ builds a quaternion from w-first storage
func QuatFromWXYZ(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[0], V: mgl32.Vec3{v[1], v[2], v[3]}}
}

func QuatToWXYZ(q mgl32.Quat) [4]float32 {
	return [4]float32{q.W, q.V[0], q.V[1], q.V[2]}
}
