package types

// floatCmpEpsilon is the tolerance used when comparing floats for
// approximate equality (e.g. detecting a zero-length vector before
// normalizing).
const floatCmpEpsilon float32 = 1e-6
