package ensemble

import "math"

// exponentClamp bounds the sigmoid exponent so extreme raw scores cannot
// overflow or underflow the exponential.
const exponentClamp = 20.0

// Calibrate applies Platt scaling to a raw ensemble score:
//
//	P(fake) = 1 / (1 + exp(-(A*raw + B)))
//
// For any A > 0 the mapping is strictly increasing in raw. A and B are
// fit offline on labeled validation data; the shipped defaults are
// provisional.
func Calibrate(raw, a, b float64) float64 {
	exponent := -(a*raw + b)
	if exponent > exponentClamp {
		exponent = exponentClamp
	} else if exponent < -exponentClamp {
		exponent = -exponentClamp
	}
	return 1.0 / (1.0 + math.Exp(exponent))
}
