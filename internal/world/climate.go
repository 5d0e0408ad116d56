package world

import (
	"voxelterra/internal/config"
)

// ClimateSample is the climate at one world column: raw noise fields
// adjusted for altitude, plus the biome they select.
type ClimateSample struct {
	Temperature float64 // [0,1]
	Humidity    float64 // [0,1]
	Biome       *Biome
}

// BiomeBlend describes the dominant biome at a column and, near a
// biome boundary, the neighboring biome bleeding into it. Factor is
// the fractional contribution of Secondary and never exceeds 0.5.
type BiomeBlend struct {
	Primary   *Biome
	Secondary *Biome
	Factor    float64
}

// climateField evaluates temperature/humidity noise. It is immutable
// after construction; Generator.Rebuild replaces the whole value.
type climateField struct {
	cfg      config.Climate
	seaLevel int
	tempSeed int64
	humSeed  int64
}

func newClimateField(cfg config.Climate, seaLevel int, seed int64) climateField {
	return climateField{
		cfg:      cfg,
		seaLevel: seaLevel,
		// Distinct derived seeds keep the two fields uncorrelated.
		tempSeed: seed + 7919,
		humSeed:  seed + 104729,
	}
}

// rawTemperature is the altitude-independent temperature field.
func (c *climateField) rawTemperature(x, z int) float64 {
	fx := float64(x) * c.cfg.TemperatureScale
	fz := float64(z) * c.cfg.TemperatureScale
	return octaveNoise2D(fx, fz, c.tempSeed, c.cfg.TemperatureOctaves, 0.5, 2.0)
}

// rawHumidity is the altitude-independent humidity field.
func (c *climateField) rawHumidity(x, z int) float64 {
	fx := float64(x) * c.cfg.HumidityScale
	fz := float64(z) * c.cfg.HumidityScale
	return octaveNoise2D(fx, fz, c.humSeed, c.cfg.HumidityOctaves, 0.5, 2.0)
}

// sample computes the climate at a column given its surface height.
// Altitude above sea level cools linearly by AltitudeLapse, clamped to
// [0,1]; below sea level altitude has no effect.
func (c *climateField) sample(x, z, height int) ClimateSample {
	t := c.rawTemperature(x, z)
	h := c.rawHumidity(x, z)

	if height > c.seaLevel {
		t -= float64(height-c.seaLevel) * c.cfg.AltitudeLapse
	}
	t = clamp(t, 0.0, 1.0)

	return ClimateSample{
		Temperature: t,
		Humidity:    h,
		Biome:       biomeFor(t, h, height, c.seaLevel),
	}
}

// blend samples climate at the four axial offsets of BlendRadius and
// reports the most common disagreeing biome as Secondary. Factor is
// the disagreeing fraction scaled into [0, 0.5] so the secondary biome
// never dominates. A radius of 0 always yields Factor 0.
func (c *climateField) blend(x, z, height int, heightAt func(int, int) int) BiomeBlend {
	center := c.sample(x, z, height)
	out := BiomeBlend{Primary: center.Biome, Secondary: center.Biome, Factor: 0}

	r := c.cfg.BlendRadius
	if r <= 0 {
		return out
	}

	offsets := [4][2]int{{r, 0}, {-r, 0}, {0, r}, {0, -r}}
	counts := make(map[*Biome]int, 4)
	disagree := 0
	for _, off := range offsets {
		nx, nz := x+off[0], z+off[1]
		s := c.sample(nx, nz, heightAt(nx, nz))
		if s.Biome != center.Biome {
			counts[s.Biome]++
			disagree++
		}
	}
	if disagree == 0 {
		return out
	}

	best := center.Biome
	bestCount := 0
	for b, n := range counts {
		if n > bestCount {
			best = b
			bestCount = n
		}
	}
	out.Secondary = best
	out.Factor = float64(disagree) / float64(len(offsets)) * 0.5
	return out
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
