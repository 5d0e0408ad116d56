package config

// Terrain holds the shape parameters for surface height and density
// synthesis. Values are plain data: a generator copies the struct at
// construction time and never reads it again, so changing a Terrain
// after the fact requires rebuilding the generator.
type Terrain struct {
	// BaseHeight is the mean surface level the continent noise oscillates around.
	BaseHeight int

	// HeightAmplitude scales the continent noise contribution in blocks.
	HeightAmplitude float64

	// MountainAmplitude scales the ridged noise contribution in blocks.
	MountainAmplitude float64

	// DetailAmplitude scales the high-frequency detail noise in blocks.
	DetailAmplitude float64

	// MinHeight / MaxHeight clamp the final integer surface height.
	MinHeight int
	MaxHeight int

	// SeaLevel in blocks, used for climate lapse and biome selection.
	SeaLevel int

	// Noise frequencies (1/blocks) and octave counts per layer.
	ContinentScale   float64
	ContinentOctaves int
	MountainScale    float64
	MountainOctaves  int
	DetailScale      float64
	DetailOctaves    int

	// SurfaceBlend is the depth band (in blocks) below the surface over
	// which density blends to fully solid, keeping cave noise from
	// breaching the surface.
	SurfaceBlend float64

	// CaveScale is the 3D cave noise frequency; CaveThreshold is the
	// noise level above which a deep cell is carved hollow.
	CaveScale     float64
	CaveThreshold float64
}

// DefaultTerrain returns Earth-ish defaults tuned for 16-wide chunks.
func DefaultTerrain() Terrain {
	return Terrain{
		BaseHeight:        64,
		HeightAmplitude:   28.0,
		MountainAmplitude: 52.0,
		DetailAmplitude:   5.0,
		MinHeight:         1,
		MaxHeight:         255,
		SeaLevel:          62,
		ContinentScale:    1.0 / 384.0,
		ContinentOctaves:  5,
		MountainScale:     1.0 / 192.0,
		MountainOctaves:   4,
		DetailScale:       1.0 / 24.0,
		DetailOctaves:     2,
		SurfaceBlend:      10.0,
		CaveScale:         1.0 / 32.0,
		CaveThreshold:     0.62,
	}
}
