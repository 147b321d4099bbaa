package raster

// Preset kernels and color matrices. The exported functions return fresh
// copies so callers cannot alter the shared tables.

var blurKernel = [][]float64{
	{0.0625, 0.125, 0.0625},
	{0.125, 0.25, 0.125},
	{0.0625, 0.125, 0.0625},
}

var sharpenKernel = [][]float64{
	{-0.125, -0.125, -0.125, -0.125, -0.125},
	{-0.125, 0.25, 0.25, 0.25, -0.125},
	{-0.125, 0.25, 1, 0.25, -0.125},
	{-0.125, 0.25, 0.25, 0.25, -0.125},
	{-0.125, -0.125, -0.125, -0.125, -0.125},
}

var lumaMatrix = [][]float64{
	{0.2126, 0.7152, 0.0722},
	{0.2126, 0.7152, 0.0722},
	{0.2126, 0.7152, 0.0722},
}

var sepiaMatrix = [][]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// BlurKernel is a 3x3 Gaussian approximation.
func BlurKernel() [][]float64 { return cloneMatrix(blurKernel) }

// SharpenKernel is a 5x5 unsharp kernel.
func SharpenKernel() [][]float64 { return cloneMatrix(sharpenKernel) }

// LumaMatrix maps every channel to the Rec. 709 luma of the pixel.
func LumaMatrix() [][]float64 { return cloneMatrix(lumaMatrix) }

// SepiaMatrix is the usual sepia tone matrix.
func SepiaMatrix() [][]float64 { return cloneMatrix(sepiaMatrix) }

// IdentityKernel returns a size x size kernel with a single 1 at the center.
// size must be odd.
func IdentityKernel(size int) [][]float64 {
	k := make([][]float64, size)
	for i := range k {
		k[i] = make([]float64, size)
	}
	k[size/2][size/2] = 1
	return k
}

func cloneMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
