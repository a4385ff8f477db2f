package render

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/umbralith/umbra/pkg/field"
)

// clamp01 clamps x into [0,1]. NaN clamps to 0 so a degenerate upstream
// value can never reach the output surface.
func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// SoftShadow marches from ro toward the light along rd and returns a
// continuous occlusion factor in [0,1]: 0 fully shadowed, 1 fully lit.
// It tracks the previous step's distance to sharpen the usual k*h/t
// penumbra estimate into an unsigned lower bound on the ray-to-surface
// distance. The max guards around the square root and the division are
// load-bearing: without them grazing geometry produces negative or
// non-finite factors.
func SoftShadow(f field.Field, ro, rd v3.Vec, maxT float64, cfg Config) float64 {
	res := 1.0
	ph := 1e20
	t := cfg.ShadowMinT
	for i := 0; i < cfg.ShadowSteps && t < maxT; i++ {
		h := f.Distance(ro.Add(rd.MulScalar(t)))
		if h < cfg.SurfaceEpsilon {
			return 0
		}
		y := h * h / (2 * ph)
		d := math.Sqrt(math.Max(0, h*h-y*y))
		res = math.Min(res, cfg.ShadowSharpness*d/math.Max(1e-9, t-y))
		ph = h
		t += h
	}
	return clamp01(res)
}

// AmbientOcclusion samples the field at a fixed number of increasing
// offsets along the normal. Each sample accumulates how much closer the
// surface is than the straight-line offset, with geometrically decaying
// weight, and the sum maps to an occlusion multiplier in [0,1].
func AmbientOcclusion(f field.Field, p, n v3.Vec, cfg Config) float64 {
	occ := 0.0
	w := 1.0
	for i := 1; i <= cfg.AOSamples; i++ {
		h := cfg.AOStep * float64(i)
		d := f.Distance(p.Add(n.MulScalar(h)))
		occ += (h - d) * w
		w *= cfg.AOFalloff
	}
	return clamp01(1 - cfg.AOIntensity*occ)
}

// Shade computes the color of a converged hit at distance t along the ray
// ro+rd. The reflectance model combines ambient, back-light and fresnel
// rim terms (attenuated by occlusion) with diffuse and specular terms
// (attenuated by the soft shadow, specular also by occlusion), applies
// distance fog toward the background, and gamma-corrects the result. Every
// channel is clamped to [0,1].
func Shade(f field.Field, ro, rd v3.Vec, t float64, g Globals, cfg Config) (r, gr, b float64) {
	p := ro.Add(rd.MulScalar(t))
	n := field.Normal(f, p, cfg.NormalEpsilon)

	toLight := g.LightPos.Sub(p)
	lightDist := toLight.Length()
	l := toLight.DivScalar(math.Max(1e-9, lightDist))

	occ := AmbientOcclusion(f, p, n, cfg)
	sha := SoftShadow(f, p.Add(n.MulScalar(cfg.SurfaceEpsilon)), l, lightDist, cfg)

	dif := clamp01(n.Dot(l))
	amb := clamp01(0.5 + 0.5*n.Y)
	bac := clamp01(n.Dot(v3.Vec{X: -l.X, Z: -l.Z}))
	fre := math.Pow(clamp01(1+n.Dot(rd)), cfg.FresnelPow)

	refl := rd.Sub(n.MulScalar(2 * rd.Dot(n)))
	spe := math.Pow(clamp01(refl.Dot(l)), cfg.SpecularPow)

	lin := cfg.Ambient*amb*occ +
		cfg.Back*bac*occ +
		cfg.Fresnel*fre*occ +
		cfg.Diffuse*dif*sha

	r = cfg.BaseColor.R * lin
	gr = cfg.BaseColor.G * lin
	b = cfg.BaseColor.B * lin

	s := cfg.Specular * spe * sha * occ
	r += s
	gr += s
	b += s

	if cfg.FogDensity > 0 {
		fog := 1 - math.Exp(-cfg.FogDensity*t*t*t)
		r += (cfg.Background.R - r) * fog
		gr += (cfg.Background.G - gr) * fog
		b += (cfg.Background.B - b) * fog
	}

	r = clamp01(math.Pow(clamp01(r), cfg.Gamma))
	gr = clamp01(math.Pow(clamp01(gr), cfg.Gamma))
	b = clamp01(math.Pow(clamp01(b), cfg.Gamma))
	return r, gr, b
}
