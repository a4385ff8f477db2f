// Package render turns a distance field into pixels: sphere-traced rays,
// a local lighting model (diffuse, specular, fresnel, ambient occlusion,
// soft shadows, fog) and a per-pixel parallel frame dispatcher.
package render

import "github.com/umbralith/umbra/pkg/scene"

// Config carries every tuning constant of the march/shade pipeline as one
// immutable value. Passing it explicitly (instead of package globals)
// keeps per-scene and per-test overrides trivial.
type Config struct {
	// Marching.
	Far            float64 // maximum march distance; beyond it a ray is a miss
	SurfaceEpsilon float64 // distance below which a ray counts as a hit
	MaxSteps       int     // march step cap; reaching it is a miss, not an error
	NormalEpsilon  float64 // forward-difference offset for normals

	// Soft shadows.
	ShadowSteps     int     // shadow march step cap
	ShadowSharpness float64 // penumbra sharpness k; larger is harder-edged
	ShadowMinT      float64 // offset of the shadow ray origin off the surface

	// Ambient occlusion.
	AOSamples   int     // fixed sample count along the normal
	AOStep      float64 // offset increment per sample
	AOFalloff   float64 // geometric weight decay per sample
	AOIntensity float64 // occlusion signal to multiplier scale

	// Reflectance terms.
	Ambient     float64
	Diffuse     float64
	Specular    float64
	SpecularPow float64
	Back        float64
	Fresnel     float64
	FresnelPow  float64

	// Output.
	BaseColor  scene.Color // surface albedo
	Background scene.Color // miss color
	FogDensity float64     // exponential-cubed distance fog; 0 disables
	Gamma      float64     // output exponent, 1/2.2 for sRGB-ish output
}

// DefaultConfig returns the reference tuning constants.
func DefaultConfig() Config {
	return Config{
		Far:            100.0,
		SurfaceEpsilon: 0.01,
		MaxSteps:       128,
		NormalEpsilon:  0.001,

		ShadowSteps:     64,
		ShadowSharpness: 16.0,
		ShadowMinT:      0.02,

		AOSamples:   8,
		AOStep:      0.03,
		AOFalloff:   0.85,
		AOIntensity: 1.5,

		Ambient:     0.12,
		Diffuse:     1.0,
		Specular:    0.5,
		SpecularPow: 16.0,
		Back:        0.15,
		Fresnel:     0.12,
		FresnelPow:  2.0,

		BaseColor:  scene.Color{R: 0.75, G: 0.75, B: 0.75},
		Background: scene.Color{},
		FogDensity: 0.00002,
		Gamma:      0.4545,
	}
}
