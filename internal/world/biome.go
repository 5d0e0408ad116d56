package world

// Biome defines the properties of a terrain type. The erosion math
// itself is biome-agnostic; these parameters only steer parameter
// selection for erosion-adjacent and decorator passes.
type Biome struct {
	ID   int
	Name string

	// Hardness multiplies how resistant the surface is to droplet
	// erosion when a caller derives per-biome erosion rates.
	Hardness float64

	// VegetationDensity in [0,1], consumed by ground-cover decorators.
	VegetationDensity float64
}

var (
	BiomeOcean     = &Biome{ID: 0, Name: "Ocean", Hardness: 1.0, VegetationDensity: 0.0}
	BiomeBeach     = &Biome{ID: 1, Name: "Beach", Hardness: 0.6, VegetationDensity: 0.05}
	BiomePlains    = &Biome{ID: 2, Name: "Plains", Hardness: 0.8, VegetationDensity: 0.4}
	BiomeForest    = &Biome{ID: 3, Name: "Forest", Hardness: 0.9, VegetationDensity: 0.8}
	BiomeDesert    = &Biome{ID: 4, Name: "Desert", Hardness: 0.5, VegetationDensity: 0.02}
	BiomeTundra    = &Biome{ID: 5, Name: "Tundra", Hardness: 1.1, VegetationDensity: 0.1}
	BiomeTaiga     = &Biome{ID: 6, Name: "Taiga", Hardness: 1.0, VegetationDensity: 0.6}
	BiomeMountains = &Biome{ID: 7, Name: "Mountains", Hardness: 1.4, VegetationDensity: 0.15}
	BiomeSnowcap   = &Biome{ID: 8, Name: "Snowcap", Hardness: 1.3, VegetationDensity: 0.0}
)

var Biomes = []*Biome{
	BiomeOcean, BiomeBeach, BiomePlains, BiomeForest, BiomeDesert,
	BiomeTundra, BiomeTaiga, BiomeMountains, BiomeSnowcap,
}

// biomeFor picks a biome from a climate sample. Altitude wins first
// (ocean below sea level, bare rock and snow high up), then the
// temperature/humidity grid decides.
func biomeFor(temperature, humidity float64, height, seaLevel int) *Biome {
	if height < seaLevel {
		return BiomeOcean
	}
	if height <= seaLevel+2 {
		return BiomeBeach
	}

	alt := height - seaLevel
	if alt > 90 {
		if temperature < 0.35 {
			return BiomeSnowcap
		}
		return BiomeMountains
	}
	if alt > 60 {
		return BiomeMountains
	}

	switch {
	case temperature < 0.25:
		if humidity < 0.4 {
			return BiomeTundra
		}
		return BiomeTaiga
	case temperature > 0.7 && humidity < 0.3:
		return BiomeDesert
	case humidity > 0.55:
		return BiomeForest
	default:
		return BiomePlains
	}
}
