package erosion

import (
	"math"

	"voxelterra/internal/config"
)

// Channel size clamps keep a single huge catchment from carving a
// canyon through the whole chunk.
const (
	maxChannelDepth     = 8.0
	maxChannelHalfWidth = 6.0
)

type riverCell struct {
	x, z int
	flow float64
}

// CarveRivers lowers terrain along high-flow paths of an already
// accumulated flow field. Every interior cell whose flow exceeds the
// threshold becomes a river cell; channel depth and half-width grow
// with sqrt(flow) and the depression falls off quadratically from the
// center line. Carving only ever lowers cells.
func CarveRivers(hm *Heightmap, cfg config.ErosionRiver) {
	if cfg.MinFlowAccumulation <= 0 {
		return
	}

	var rivers []riverCell
	for z := 1; z < hm.Depth()-1; z++ {
		for x := 1; x < hm.Width()-1; x++ {
			if f := hm.FlowAt(x, z); f > cfg.MinFlowAccumulation {
				rivers = append(rivers, riverCell{x, z, f})
			}
		}
	}
	if len(rivers) == 0 {
		return
	}

	for _, rc := range rivers {
		strength := math.Sqrt(rc.flow)
		depth := math.Min(cfg.DepthScale*strength, maxChannelDepth)
		halfWidth := math.Min(cfg.WidthScale*strength, maxChannelHalfWidth)
		radius := int(math.Ceil(halfWidth))
		if radius < 1 {
			radius = 1
		}

		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				x, z := rc.x+dx, rc.z+dz
				dist := math.Hypot(float64(dx), float64(dz))
				if dist > halfWidth {
					continue
				}
				// Quadratic falloff: full depth at the center line,
				// zero at the channel edge.
				t := 1.0 - dist/math.Max(halfWidth, 1e-9)
				carve := depth * t * t
				hm.SetHeight(x, z, hm.HeightAt(x, z)-carve)
			}
		}
	}

	smoothRiverBeds(hm, cfg, rivers)
}

// smoothRiverBeds averages each river cell with its 8 neighbors and
// keeps the lower of the current and averaged height. Taking the min
// biases beds downward instead of letting smoothing refill them.
func smoothRiverBeds(hm *Heightmap, cfg config.ErosionRiver, rivers []riverCell) {
	for pass := 0; pass < cfg.SmoothingPasses; pass++ {
		for _, rc := range rivers {
			sum := 0.0
			n := 0
			for dz := -1; dz <= 1; dz++ {
				for dx := -1; dx <= 1; dx++ {
					x, z := rc.x+dx, rc.z+dz
					if x < 0 || x >= hm.Width() || z < 0 || z >= hm.Depth() {
						continue
					}
					sum += hm.HeightAt(x, z)
					n++
				}
			}
			if n == 0 {
				continue
			}
			avg := sum / float64(n)
			if avg < hm.HeightAt(rc.x, rc.z) {
				hm.SetHeight(rc.x, rc.z, avg)
			}
		}
	}
}
