package types

// floatCmpEpsilon is the absolute tolerance used by vector/quaternion
// normalization and length comparisons throughout this package.
const floatCmpEpsilon = 1e-5
