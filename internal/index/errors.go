package index

import "errors"

// ErrNotFound indicates no usable index exists in a directory. Load wraps it
// together with the concrete reason.
var ErrNotFound = errors.New("index not found")

// ErrVectorLengthMismatch indicates two vectors have different dimensions.
var ErrVectorLengthMismatch = errors.New("vector length mismatch")
