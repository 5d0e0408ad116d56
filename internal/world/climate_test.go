package world

import (
	"math/rand"
	"testing"

	"voxelterra/internal/config"
)

func testClimate(blendRadius int) climateField {
	cfg := config.DefaultClimate()
	cfg.BlendRadius = blendRadius
	return newClimateField(cfg, 62, 42)
}

// TestRawFieldsPureAndInRange verifies temperature/humidity are
// referentially transparent and in [0,1], including at very large
// coordinate magnitudes.
func TestRawFieldsPureAndInRange(t *testing.T) {
	c1 := testClimate(0)
	c2 := testClimate(0)
	rng := rand.New(rand.NewSource(555))

	for i := 0; i < 500; i++ {
		x := rng.Intn(20_000_000) - 10_000_000
		z := rng.Intn(20_000_000) - 10_000_000

		t1 := c1.rawTemperature(x, z)
		t2 := c2.rawTemperature(x, z)
		if t1 != t2 {
			t.Fatalf("rawTemperature(%d,%d) not pure: %f vs %f", x, z, t1, t2)
		}
		if t1 < 0 || t1 > 1 {
			t.Fatalf("rawTemperature(%d,%d) = %f, expected in [0,1]", x, z, t1)
		}

		h1 := c1.rawHumidity(x, z)
		h2 := c2.rawHumidity(x, z)
		if h1 != h2 {
			t.Fatalf("rawHumidity(%d,%d) not pure: %f vs %f", x, z, h1, h2)
		}
		if h1 < 0 || h1 > 1 {
			t.Fatalf("rawHumidity(%d,%d) = %f, expected in [0,1]", x, z, h1)
		}
	}
}

// TestAltitudeLapse verifies altitude above sea level cools linearly
// and altitude below sea level has no effect.
func TestAltitudeLapse(t *testing.T) {
	c := testClimate(0)

	atSea := c.sample(100, 100, c.seaLevel)
	below := c.sample(100, 100, c.seaLevel-30)
	high := c.sample(100, 100, c.seaLevel+100)

	if atSea.Temperature != below.Temperature {
		t.Errorf("below-sea altitude changed temperature: %f vs %f", atSea.Temperature, below.Temperature)
	}
	if high.Temperature >= atSea.Temperature && atSea.Temperature > 0 {
		t.Errorf("altitude did not cool: sea=%f high=%f", atSea.Temperature, high.Temperature)
	}

	// Lapse result must stay clamped to [0,1] even at absurd altitude.
	extreme := c.sample(100, 100, c.seaLevel+100000)
	if extreme.Temperature < 0 || extreme.Temperature > 1 {
		t.Errorf("lapsed temperature %f outside [0,1]", extreme.Temperature)
	}
}

// TestBiomeAltitudeOverrides verifies the height-driven biome picks.
func TestBiomeAltitudeOverrides(t *testing.T) {
	sea := 62

	if b := biomeFor(0.5, 0.5, sea-10, sea); b != BiomeOcean {
		t.Errorf("below sea level expected Ocean, got %s", b.Name)
	}
	if b := biomeFor(0.5, 0.5, sea+1, sea); b != BiomeBeach {
		t.Errorf("just above sea level expected Beach, got %s", b.Name)
	}
	if b := biomeFor(0.2, 0.5, sea+100, sea); b != BiomeSnowcap {
		t.Errorf("cold high altitude expected Snowcap, got %s", b.Name)
	}
	if b := biomeFor(0.6, 0.5, sea+100, sea); b != BiomeMountains {
		t.Errorf("warm high altitude expected Mountains, got %s", b.Name)
	}
	if b := biomeFor(0.8, 0.1, sea+10, sea); b != BiomeDesert {
		t.Errorf("hot and dry expected Desert, got %s", b.Name)
	}
	if b := biomeFor(0.5, 0.8, sea+10, sea); b != BiomeForest {
		t.Errorf("humid temperate expected Forest, got %s", b.Name)
	}
}

// TestBlendRadiusZero verifies radius 0 always yields factor 0.
func TestBlendRadiusZero(t *testing.T) {
	c := testClimate(0)
	heightAt := func(x, z int) int { return 70 }

	for x := -50; x <= 50; x += 10 {
		b := c.blend(x, x, 70, heightAt)
		if b.Factor != 0 {
			t.Errorf("blend factor %f at radius 0, expected 0", b.Factor)
		}
		if b.Primary != b.Secondary {
			t.Errorf("secondary differs from primary at radius 0")
		}
	}
}

// TestBlendFactorBounded verifies the secondary contribution never
// reaches one half.
func TestBlendFactorBounded(t *testing.T) {
	c := testClimate(8)
	// A height field crossing sea level forces Ocean/land disagreement.
	heightAt := func(x, z int) int {
		if x < 0 {
			return 40
		}
		return 80
	}

	for x := -20; x <= 20; x++ {
		b := c.blend(x, 0, heightAt(x, 0), heightAt)
		if b.Factor < 0 || b.Factor > 0.5 {
			t.Errorf("blend factor %f at x=%d outside [0, 0.5]", b.Factor, x)
		}
	}
}
