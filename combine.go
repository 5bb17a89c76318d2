package unsharp

// Weights are the coefficients of the weighted combination
// alpha*A + beta*B + gamma.
type Weights struct {
	Alpha float32
	Beta  float32
	Gamma float32
}

// UnsharpWeights subtract half of the blurred image from 1.5x the original.
var UnsharpWeights = Weights{Alpha: 1.5, Beta: -0.5, Gamma: 0}

// Combine writes clamp(alpha*A + beta*B + gamma, 0, 255) into dst for the
// first three channels of every pixel. In-range results are truncated
// toward zero. Channels beyond the third are copied from a.
//
// All three images must share one layout, and dst must not alias a or b.
func Combine(dst, a, b *Image, w Weights, be Backend) error {
	k := &CombineKernel{Dst: dst, A: a, B: b, Weights: w}
	if err := k.validate(); err != nil {
		return err
	}
	if be == nil {
		return preconditionf("combine: nil backend")
	}
	return be.Dispatch(k)
}
