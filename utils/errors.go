package utils

import "fmt"

// NoMovieError is returned when a file has no top-level moov box.
type NoMovieError struct {
}

// Error returns the error message for NoMovieError.
func (NoMovieError) Error() string {
	return "No moov box"
}

// BoxSizeError is returned when a synthesized box does not fit a 32-bit size field.
type BoxSizeError struct {
	Tag  string
	Size uint64
}

// Error returns the error message for BoxSizeError.
func (e *BoxSizeError) Error() string {
	return fmt.Sprintf("box %s of %d bytes needs a 64-bit size", e.Tag, e.Size)
}

// UnbalancedBoxError is returned when a box is closed without being opened
// or output is taken while boxes are still open.
type UnbalancedBoxError struct {
	Depth int
}

// Error method implementation for UnbalancedBoxError.
func (e *UnbalancedBoxError) Error() string {
	return fmt.Sprintf("unbalanced box nesting at depth %d", e.Depth)
}
