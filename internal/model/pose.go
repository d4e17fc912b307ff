package model

// Keypoint is one 2D skeleton point in normalized image coordinates.
type Keypoint struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
}

// Missing reports whether the keypoint carries the absent sentinel.
// The pose estimator emits (0,0) for a keypoint it could not detect;
// consumers must treat it as "no location", never as the origin.
func (k Keypoint) Missing() bool {
	return k.X == 0 && k.Y == 0
}

// Pose is the ordered keypoint set for one animation frame.
type Pose []Keypoint

// FlatVector is a pose serialized as interleaved x,y scalars — the
// sequence model's native input/output layout. A pose of K keypoints
// flattens to 2K scalars.
type FlatVector []float32

// Flatten serializes the pose into interleaved x,y order.
func (p Pose) Flatten() FlatVector {
	v := make(FlatVector, 0, 2*len(p))
	for _, kp := range p {
		v = append(v, kp.X, kp.Y)
	}
	return v
}

// PoseFromFlat reshapes an interleaved vector back into a Pose.
// The inverse of Flatten: interleaving order is preserved exactly.
func PoseFromFlat(v FlatVector) Pose {
	p := make(Pose, 0, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		p = append(p, Keypoint{X: v[i], Y: v[i+1]})
	}
	return p
}

// Clone returns an independent copy of the vector.
func (v FlatVector) Clone() FlatVector {
	cp := make(FlatVector, len(v))
	copy(cp, v)
	return cp
}
