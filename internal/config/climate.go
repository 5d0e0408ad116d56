package config

// Climate holds the temperature/humidity field parameters. Like
// Terrain, it is copied at generator construction and immutable after.
type Climate struct {
	// TemperatureScale / HumidityScale are noise frequencies (1/blocks).
	TemperatureScale float64
	HumidityScale    float64

	// TemperatureOctaves / HumidityOctaves are fBm octave counts.
	TemperatureOctaves int
	HumidityOctaves    int

	// AltitudeLapse is the temperature drop per block of altitude above
	// sea level. Below sea level altitude has no effect.
	AltitudeLapse float64

	// BlendRadius is the sampling offset (in blocks) used to detect a
	// nearby secondary biome. 0 disables blending entirely.
	BlendRadius int
}

// DefaultClimate returns defaults giving biome regions a few hundred
// blocks across.
func DefaultClimate() Climate {
	return Climate{
		TemperatureScale:   1.0 / 512.0,
		HumidityScale:      1.0 / 512.0,
		TemperatureOctaves: 3,
		HumidityOctaves:    3,
		AltitudeLapse:      0.0045,
		BlendRadius:        8,
	}
}
