package world

import (
	"math"
	"sync"

	"voxelterra/internal/config"
	"voxelterra/internal/erosion"
	"voxelterra/internal/profiling"
)

// Generator synthesizes terrain surface heights and the 3D density
// field for one world. Height and density queries are pure functions
// of world coordinates and the seed, safe to call from any goroutine;
// Generate additionally runs the erosion pipeline for a whole chunk.
type Generator struct {
	mu    sync.RWMutex
	state *generatorState
	sim   *erosion.Simulator
	ctx   *erosion.Context
}

// generatorState is the immutable noise graph. Rebuild swaps the whole
// pointer so an in-flight query can never observe a mix of old and new
// parameters.
type generatorState struct {
	cfg        config.Terrain
	erosionCfg config.Erosion
	climate    climateField
	seed       int64

	continentSeed int64
	mountainSeed  int64
	detailSeed    int64
	caveSeed      int64
}

func newGeneratorState(cfg config.Terrain, climateCfg config.Climate, erosionCfg config.Erosion, seed int64) *generatorState {
	return &generatorState{
		cfg:        cfg,
		erosionCfg: erosionCfg,
		climate:    newClimateField(climateCfg, cfg.SeaLevel, seed),
		seed:       seed,
		// Layer seeds derive from the world seed with fixed offsets so
		// the layers decorrelate but stay reproducible.
		continentSeed: seed,
		mountainSeed:  seed + 3001,
		detailSeed:    seed + 6007,
		caveSeed:      seed + 9013,
	}
}

// NewGenerator builds a generator for the given configuration and
// seed. The erosion simulator (and its GPU context, when preferred)
// is constructed here, once.
func NewGenerator(cfg config.Terrain, climateCfg config.Climate, erosionCfg config.Erosion, seed int64) *Generator {
	return &Generator{
		state: newGeneratorState(cfg, climateCfg, erosionCfg, seed),
		sim:   erosion.NewSimulator(erosionCfg),
	}
}

// Rebuild discards the generator's internal state and reconstructs it
// for the new configuration and seed. Partial mutation of a live
// configuration is not supported; this is the only way to reconfigure.
func (g *Generator) Rebuild(cfg config.Terrain, climateCfg config.Climate, erosionCfg config.Erosion, seed int64) {
	state := newGeneratorState(cfg, climateCfg, erosionCfg, seed)
	sim := erosion.NewSimulator(erosionCfg)

	g.mu.Lock()
	old := g.sim
	g.state = state
	g.sim = sim
	g.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// SetErosionContext opts this generator into cross-chunk border
// exchange. A nil context disables the exchange.
func (g *Generator) SetErosionContext(ctx *erosion.Context) {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()
}

// ErosionContext returns the attached border-exchange context, or nil.
func (g *Generator) ErosionContext() *erosion.Context {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ctx
}

// HasGPUSupport reports whether the erosion simulator has a working
// GPU backend.
func (g *Generator) HasGPUSupport() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sim.HasGPUSupport()
}

// Close releases simulator resources.
func (g *Generator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sim != nil {
		g.sim.Close()
	}
}

func (g *Generator) snapshot() (*generatorState, *erosion.Simulator, *erosion.Context) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state, g.sim, g.ctx
}

// HeightAt returns the integer surface height at a world column.
// Identical seed and coordinates always produce the identical height,
// clamped to [MinHeight, MaxHeight].
func (g *Generator) HeightAt(x, z int) int {
	s, _, _ := g.snapshot()
	return s.heightAt(x, z)
}

func (s *generatorState) heightAt(x, z int) int {
	cfg := &s.cfg
	fx := float64(x)
	fz := float64(z)

	continent := octaveNoise2D(fx*cfg.ContinentScale, fz*cfg.ContinentScale,
		s.continentSeed, cfg.ContinentOctaves, 0.5, 2.0)
	detail := octaveNoise2D(fx*cfg.DetailScale, fz*cfg.DetailScale,
		s.detailSeed, cfg.DetailOctaves, 0.5, 2.0)

	h := float64(cfg.BaseHeight) + (2*continent-1)*cfg.HeightAmplitude

	// Ridged mountains only rise where the continent field is already
	// high, so coasts stay low and ranges cluster inland.
	mask := clamp((continent-0.55)/0.35, 0, 1)
	if mask > 0 {
		ridge := ridgedNoise2D(fx*cfg.MountainScale, fz*cfg.MountainScale,
			s.mountainSeed, cfg.MountainOctaves, 0.5, 2.0)
		h += ridge * cfg.MountainAmplitude * fade(mask)
	}

	h += (2*detail - 1) * cfg.DetailAmplitude

	ih := int(math.Floor(h))
	if ih < cfg.MinHeight {
		ih = cfg.MinHeight
	}
	if ih > cfg.MaxHeight {
		ih = cfg.MaxHeight
	}
	return ih
}

// DensityAt returns a signed density at a world position: positive is
// solid. Within SurfaceBlend blocks below the surface the value blends
// toward fully solid, so cave noise only hollows cells deep
// underground and never breaches the surface. Above the surface the
// value is always negative.
func (g *Generator) DensityAt(x, y, z int) float64 {
	s, _, _ := g.snapshot()
	return s.densityAt(x, y, z)
}

func (s *generatorState) densityAt(x, y, z int) float64 {
	surface := s.heightAt(x, z)
	if y > surface {
		// Air, increasingly so with altitude.
		return -1.0 - float64(y-surface)*0.1
	}

	cfg := &s.cfg
	depth := float64(surface - y)

	cave := octaveNoise3D(float64(x)*cfg.CaveScale, float64(y)*cfg.CaveScale, float64(z)*cfg.CaveScale,
		s.caveSeed, 3, 0.5, 2.0)
	caveDensity := cfg.CaveThreshold - cave // negative inside a cave

	if cfg.SurfaceBlend <= 0 {
		return caveDensity
	}
	blend := clamp(depth/cfg.SurfaceBlend, 0, 1)
	return lerp(1.0, caveDensity, blend)
}

// ClimateAt samples temperature, humidity, and biome at a world
// column, using the column's own surface height for the altitude
// lapse.
func (g *Generator) ClimateAt(x, z int) ClimateSample {
	s, _, _ := g.snapshot()
	return s.climate.sample(x, z, s.heightAt(x, z))
}

// RawTemperature is the temperature field before the altitude lapse.
func (g *Generator) RawTemperature(x, z int) float64 {
	s, _, _ := g.snapshot()
	return s.climate.rawTemperature(x, z)
}

// RawHumidity is the humidity field, which altitude never affects.
func (g *Generator) RawHumidity(x, z int) float64 {
	s, _, _ := g.snapshot()
	return s.climate.rawHumidity(x, z)
}

// BiomeBlendAt reports the dominant biome at a column and any
// secondary biome bleeding in from within the configured blend radius.
func (g *Generator) BiomeBlendAt(x, z int) BiomeBlend {
	s, _, _ := g.snapshot()
	return s.climate.blend(x, z, s.heightAt(x, z), s.heightAt)
}

// GenerateHeightmap fills a bordered erosion heightmap for the chunk
// at coord: the core covers the chunk's columns and the ghost ring
// extends into the neighboring chunks' territory using the same pure
// height function.
func (g *Generator) GenerateHeightmap(coord erosion.ChunkCoord, width, depth int) *erosion.Heightmap {
	s, _, _ := g.snapshot()
	return s.generateHeightmap(coord, width, depth)
}

func (s *generatorState) generateHeightmap(coord erosion.ChunkCoord, width, depth int) *erosion.Heightmap {
	border := s.erosionCfg.Border
	hm := erosion.NewHeightmap(width, depth, border)

	baseX := coord.X*width - border
	baseZ := coord.Z*depth - border
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			hm.SetHeight(x, z, float64(s.heightAt(baseX+x, baseZ+z)))
		}
	}
	return hm
}

// chunkSeed derives a per-chunk erosion seed from the world seed.
func chunkSeed(coord erosion.ChunkCoord, seed int64) int64 {
	return int64(hash2(int64(coord.X), int64(coord.Z), seed))
}

// Generate populates a chunk's column heights: heightmap synthesis,
// border import, erosion, river carving, border export, write-back.
func (g *Generator) Generate(c *Chunk) {
	defer profiling.Track("world.Generate")()

	s, sim, ctx := g.snapshot()
	hm := s.generateHeightmap(c.Coord, c.Width, c.Depth)

	if s.erosionCfg.Enabled {
		hm.StoreOriginalHeights()

		if ctx != nil {
			for _, dir := range []erosion.Direction{erosion.East, erosion.West, erosion.South, erosion.North} {
				if data := ctx.NeighborBorder(c.Coord, dir); data != nil {
					hm.ImportBorderData(data, dir)
				}
			}
		}

		sim.Simulate(hm, chunkSeed(c.Coord, s.seed))

		if ctx != nil {
			for _, dir := range []erosion.Direction{erosion.East, erosion.West, erosion.South, erosion.North} {
				ctx.SubmitBorderData(hm.ExportBorderData(c.Coord, dir))
			}
		}
	}

	for z := 0; z < c.Depth; z++ {
		for x := 0; x < c.Width; x++ {
			h := int(math.Round(hm.CoreHeight(x, z)))
			if h < s.cfg.MinHeight {
				h = s.cfg.MinHeight
			}
			if h > s.cfg.MaxHeight {
				h = s.cfg.MaxHeight
			}
			c.SetHeight(x, z, h)
		}
	}
}
