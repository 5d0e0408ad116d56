package erosion

import (
	"math"
	"sort"
	"sync"
)

// Heightmap is the working set for one chunk's erosion pass: a dense
// 2D field of heights plus parallel sediment and flow planes, padded
// on every side by a ring of ghost cells. The ghost ring gives droplet
// stepping and gradient estimation valid neighbor data near chunk
// edges; only the core sub-rectangle is written back to the chunk.
//
// All coordinate accessors take total-grid coordinates (ghost ring
// included) and treat out-of-range indices as neutral: reads return 0,
// writes are dropped. Erosion probes at and past the boundary on
// purpose, so this is not an error path.
type Heightmap struct {
	coreW, coreD int
	border       int
	totalW       int
	totalD       int

	height   []float64
	sediment []float64
	flow     []float64

	// original is nil until StoreOriginalHeights; it backs border
	// delta export.
	original []float64

	// mu serializes droplet mutation bursts during CPU erosion. One
	// mutex per heightmap instance, never shared.
	mu sync.Mutex
}

// NewHeightmap allocates a heightmap for a coreW x coreD chunk with a
// ghost ring of the given width. Flow starts at 1.0 per cell: every
// cell is its own drainage source until ComputeFlowAccumulation runs.
func NewHeightmap(coreW, coreD, border int) *Heightmap {
	if border < 0 {
		border = 0
	}
	totalW := coreW + 2*border
	totalD := coreD + 2*border
	hm := &Heightmap{
		coreW:    coreW,
		coreD:    coreD,
		border:   border,
		totalW:   totalW,
		totalD:   totalD,
		height:   make([]float64, totalW*totalD),
		sediment: make([]float64, totalW*totalD),
		flow:     make([]float64, totalW*totalD),
	}
	for i := range hm.flow {
		hm.flow[i] = 1.0
	}
	return hm
}

func (hm *Heightmap) Width() int     { return hm.totalW }
func (hm *Heightmap) Depth() int     { return hm.totalD }
func (hm *Heightmap) CoreWidth() int { return hm.coreW }
func (hm *Heightmap) CoreDepth() int { return hm.coreD }
func (hm *Heightmap) Border() int    { return hm.border }

// Lock acquires the heightmap's mutation mutex. The CPU erosion
// engine brackets every read/write burst with Lock/Unlock.
func (hm *Heightmap) Lock()   { hm.mu.Lock() }
func (hm *Heightmap) Unlock() { hm.mu.Unlock() }

func (hm *Heightmap) inBounds(x, z int) bool {
	return x >= 0 && x < hm.totalW && z >= 0 && z < hm.totalD
}

func (hm *Heightmap) idx(x, z int) int { return z*hm.totalW + x }

// HeightAt returns the height at a total-grid cell, 0 out of range.
func (hm *Heightmap) HeightAt(x, z int) float64 {
	if !hm.inBounds(x, z) {
		return 0
	}
	return hm.height[hm.idx(x, z)]
}

// SetHeight writes a height, silently ignoring out-of-range cells.
func (hm *Heightmap) SetHeight(x, z int, h float64) {
	if !hm.inBounds(x, z) {
		return
	}
	hm.height[hm.idx(x, z)] = h
}

// SedimentAt returns accumulated sediment, 0 out of range.
func (hm *Heightmap) SedimentAt(x, z int) float64 {
	if !hm.inBounds(x, z) {
		return 0
	}
	return hm.sediment[hm.idx(x, z)]
}

func (hm *Heightmap) SetSediment(x, z int, s float64) {
	if !hm.inBounds(x, z) {
		return
	}
	hm.sediment[hm.idx(x, z)] = s
}

// FlowAt returns flow accumulation, 0 out of range, never negative.
func (hm *Heightmap) FlowAt(x, z int) float64 {
	if !hm.inBounds(x, z) {
		return 0
	}
	f := hm.flow[hm.idx(x, z)]
	if f < 0 {
		return 0
	}
	return f
}

func (hm *Heightmap) SetFlow(x, z int, f float64) {
	if !hm.inBounds(x, z) {
		return
	}
	hm.flow[hm.idx(x, z)] = f
}

// CoreHeight reads a height in core coordinates (0..coreW-1).
func (hm *Heightmap) CoreHeight(x, z int) float64 {
	return hm.HeightAt(x+hm.border, z+hm.border)
}

// SampleBilinear interpolates the height at a fractional position.
// The sample point is clamped to [0, extent-2] on each axis before
// interpolating, so the 2x2 cell neighborhood is always in bounds.
// At integer grid points it returns exactly the stored value.
func (hm *Heightmap) SampleBilinear(x, z float64) float64 {
	x = clampf(x, 0, float64(hm.totalW-2))
	z = clampf(z, 0, float64(hm.totalD-2))

	x0 := int(x)
	z0 := int(z)
	fx := x - float64(x0)
	fz := z - float64(z0)

	h00 := hm.height[hm.idx(x0, z0)]
	h10 := hm.height[hm.idx(x0+1, z0)]
	h01 := hm.height[hm.idx(x0, z0+1)]
	h11 := hm.height[hm.idx(x0+1, z0+1)]

	top := h00 + (h10-h00)*fx
	bot := h01 + (h11-h01)*fx
	return top + (bot-top)*fz
}

// Gradient estimates the surface slope at a fractional position by
// central differences with a unit step. Returns (dh/dx, h, dh/dz).
func (hm *Heightmap) Gradient(x, z float64) (dhdx, h, dhdz float64) {
	h = hm.SampleBilinear(x, z)
	dhdx = (hm.SampleBilinear(x+1, z) - hm.SampleBilinear(x-1, z)) * 0.5
	dhdz = (hm.SampleBilinear(x, z+1) - hm.SampleBilinear(x, z-1)) * 0.5
	return dhdx, h, dhdz
}

// AddHeight distributes delta across the four cells enclosing a
// fractional position, proportional to the fractional offsets. Both
// erosion engines route every height change through this weighting to
// avoid grid-aligned discretization artifacts.
func (hm *Heightmap) AddHeight(x, z float64, delta float64) {
	x = clampf(x, 0, float64(hm.totalW-2))
	z = clampf(z, 0, float64(hm.totalD-2))

	x0 := int(x)
	z0 := int(z)
	fx := x - float64(x0)
	fz := z - float64(z0)

	hm.height[hm.idx(x0, z0)] += delta * (1 - fx) * (1 - fz)
	hm.height[hm.idx(x0+1, z0)] += delta * fx * (1 - fz)
	hm.height[hm.idx(x0, z0+1)] += delta * (1 - fx) * fz
	hm.height[hm.idx(x0+1, z0+1)] += delta * fx * fz
}

// DepositSediment raises the terrain by amount at a fractional
// position (bilinear-weighted) and records the same amount in the
// sediment plane.
func (hm *Heightmap) DepositSediment(x, z float64, amount float64) {
	hm.AddHeight(x, z, amount)

	x = clampf(x, 0, float64(hm.totalW-2))
	z = clampf(z, 0, float64(hm.totalD-2))
	x0 := int(x)
	z0 := int(z)
	fx := x - float64(x0)
	fz := z - float64(z0)

	hm.sediment[hm.idx(x0, z0)] += amount * (1 - fx) * (1 - fz)
	hm.sediment[hm.idx(x0+1, z0)] += amount * fx * (1 - fz)
	hm.sediment[hm.idx(x0, z0+1)] += amount * (1 - fx) * fz
	hm.sediment[hm.idx(x0+1, z0+1)] += amount * fx * fz
}

// StoreOriginalHeights snapshots the current heights so border deltas
// can be exported after erosion.
func (hm *Heightmap) StoreOriginalHeights() {
	hm.original = make([]float64, len(hm.height))
	copy(hm.original, hm.height)
}

// HeightDelta is height minus the stored snapshot at a cell, or 0 if
// no snapshot was taken.
func (hm *Heightmap) HeightDelta(x, z int) float64 {
	if hm.original == nil || !hm.inBounds(x, z) {
		return 0
	}
	return hm.height[hm.idx(x, z)] - hm.original[hm.idx(x, z)]
}

// ComputeFlowAccumulation runs D8 flow routing: every cell starts
// with flow 1.0, cells are visited in descending-height order, and
// each cell pours its accumulated flow into its single steepest
// downhill neighbor among the 8 (diagonal drops divided by sqrt 2).
//
// The height sort is an approximation of a topological order; flat or
// circular drainage resolves arbitrarily and is accepted.
func (hm *Heightmap) ComputeFlowAccumulation() {
	for i := range hm.flow {
		hm.flow[i] = 1.0
	}

	type cell struct {
		x, z int
		h    float64
	}
	cells := make([]cell, 0, (hm.totalW-2)*(hm.totalD-2))
	for z := 1; z < hm.totalD-1; z++ {
		for x := 1; x < hm.totalW-1; x++ {
			cells = append(cells, cell{x, z, hm.height[hm.idx(x, z)]})
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].h > cells[j].h })

	for _, c := range cells {
		bestX, bestZ := -1, -1
		bestSlope := 0.0
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dz == 0 {
					continue
				}
				nx, nz := c.x+dx, c.z+dz
				drop := c.h - hm.height[hm.idx(nx, nz)]
				if drop <= 0 {
					continue
				}
				slope := drop
				if dx != 0 && dz != 0 {
					slope /= math.Sqrt2
				}
				if slope > bestSlope {
					bestSlope = slope
					bestX, bestZ = nx, nz
				}
			}
		}
		if bestX >= 0 {
			hm.flow[hm.idx(bestX, bestZ)] += hm.flow[hm.idx(c.x, c.z)]
		}
	}
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
