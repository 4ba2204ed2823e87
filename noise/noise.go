// Package noise is a CPU implementation of the gradient noise evaluated by the
// noise fragment stage. It follows the shader operation for operation so frames
// can be produced and checked without a GPU.
package noise

import "math"

// Output levels of the thresholded noise.
const (
	Low       = 0.2
	High      = 0.8
	Threshold = 0.5
)

// FragScale divides fragment coordinates before they are fed to CNoise.
var FragScale = [2]float64{0.1920, 0.1080}

// CNoise is classic 3D Perlin noise: mod 289 permutation polynomial, gradients
// taken from hashed lattice corners and a quintic fade.
func CNoise(x, y, z float64) float64 {
	floor := [3]float64{math.Floor(x), math.Floor(y), math.Floor(z)}
	var pi0, pi1, pf0, pf1 [3]float64
	for i, p := range [3]float64{x, y, z} {
		pi0[i] = mod289(floor[i])
		pi1[i] = mod289(floor[i] + 1)
		pf0[i] = p - floor[i]
		pf1[i] = pf0[i] - 1
	}

	corner := func(cx, cy, cz int) float64 {
		pi := [2][3]float64{pi0, pi1}
		pf := [2][3]float64{pf0, pf1}
		h := permute(permute(permute(pi[cx][0])+pi[cy][1]) + pi[cz][2])
		gx, gy, gz := gradient(h)
		return gx*pf[cx][0] + gy*pf[cy][1] + gz*pf[cz][2]
	}

	n000 := corner(0, 0, 0)
	n100 := corner(1, 0, 0)
	n010 := corner(0, 1, 0)
	n110 := corner(1, 1, 0)
	n001 := corner(0, 0, 1)
	n101 := corner(1, 0, 1)
	n011 := corner(0, 1, 1)
	n111 := corner(1, 1, 1)

	fx, fy, fz := fade(pf0[0]), fade(pf0[1]), fade(pf0[2])
	nz0 := mix(n000, n001, fz)
	nz1 := mix(n100, n101, fz)
	nz2 := mix(n010, n011, fz)
	nz3 := mix(n110, n111, fz)
	nyz0 := mix(nz0, nz2, fy)
	nyz1 := mix(nz1, nz3, fy)
	return 2.2 * mix(nyz0, nyz1, fx)
}

// Shade returns the thresholded level for the fragment at (fragX, fragY) at the
// given animation phase. The result is always Low or High.
func Shade(fragX, fragY, time float64) float64 {
	level := CNoise(fragX/FragScale[0], fragY/FragScale[1], time)*0.5 + 0.5
	if level > Threshold {
		return High
	}
	return Low
}

// Level8 converts a level in [0, 1] to an 8-bit grey value, rounding to nearest.
func Level8(level float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, level)) * 255))
}

func gradient(h float64) (gx, gy, gz float64) {
	gx = h / 7
	gy = fract(math.Floor(gx)/7) - 0.5
	gx = fract(gx)
	gz = 0.5 - math.Abs(gx) - math.Abs(gy)
	sz := step(gz, 0)
	gx -= sz * (step(0, gx) - 0.5)
	gy -= sz * (step(0, gy) - 0.5)
	n := taylorInvSqrt(gx*gx + gy*gy + gz*gz)
	return gx * n, gy * n, gz * n
}

func mod289(x float64) float64 { return x - 289*math.Floor(x/289) }

func permute(x float64) float64 { return mod289((x*34 + 1) * x) }

func taylorInvSqrt(r float64) float64 { return 1.79284291400159 - 0.85373472095314*r }

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func fract(x float64) float64 { return x - math.Floor(x) }

// step matches GLSL: 0 when x < edge, else 1.
func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

func mix(a, b, t float64) float64 { return a*(1-t) + b*t }
