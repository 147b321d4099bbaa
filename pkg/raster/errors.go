package raster

import "errors"

// Construction failures. Every one of them also matches ErrInvalidImage
// when returned from New.
var (
	ErrInvalidImage      = errors.New("invalid image")
	ErrOutOfRange        = errors.New("channel out of range")
	ErrInvalidDimensions = errors.New("width, height and max value must be positive")
	ErrNullGrid          = errors.New("pixel grid is nil")
	ErrNullPixel         = errors.New("pixel grid has missing cells")
	ErrDimensionMismatch = errors.New("pixel grid does not match image dimensions")
)

// Operation argument failures.
var (
	ErrNullSelector       = errors.New("no greyscale component selected")
	ErrNullFlipType       = errors.New("no flip direction selected")
	ErrNullKernel         = errors.New("kernel is nil")
	ErrInvalidKernelShape = errors.New("kernel must be square with an odd side")
	ErrNullMatrix         = errors.New("color matrix is nil")
	ErrInvalidMatrixShape = errors.New("color matrix must be 3x3")
	ErrNonPositiveValue   = errors.New("value must be positive")
	ErrInvalidPercent     = errors.New("percentage must be in [0, 100)")
)
