package erosion

import (
	"testing"

	"voxelterra/internal/config"
)

// valleyMap builds a V-shaped valley draining toward +z, which gives
// flow accumulation a long channel down the valley floor.
func valleyMap() *Heightmap {
	hm := NewHeightmap(24, 24, 4)
	mid := hm.Width() / 2
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			side := x - mid
			if side < 0 {
				side = -side
			}
			h := 100.0 + 2.0*float64(side) - 0.5*float64(z)
			hm.SetHeight(x, z, h)
		}
	}
	return hm
}

func snapshotHeights(hm *Heightmap) []float64 {
	out := make([]float64, 0, hm.Width()*hm.Depth())
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			out = append(out, hm.HeightAt(x, z))
		}
	}
	return out
}

// TestCarveRiversNeverRaises verifies carving and smoothing only ever
// lower cells.
func TestCarveRiversNeverRaises(t *testing.T) {
	hm := valleyMap()
	hm.ComputeFlowAccumulation()
	before := snapshotHeights(hm)

	cfg := config.DefaultErosion().River
	cfg.MinFlowAccumulation = 4
	CarveRivers(hm, cfg)

	i := 0
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			if hm.HeightAt(x, z) > before[i] {
				t.Fatalf("river carving raised cell (%d,%d): %f -> %f", x, z, before[i], hm.HeightAt(x, z))
			}
			i++
		}
	}
}

// TestCarveRiversCarvesSomething verifies at least one cell is lowered
// whenever some cell's flow exceeds the threshold.
func TestCarveRiversCarvesSomething(t *testing.T) {
	hm := valleyMap()
	hm.ComputeFlowAccumulation()

	maxFlow := 0.0
	for z := 1; z < hm.Depth()-1; z++ {
		for x := 1; x < hm.Width()-1; x++ {
			if f := hm.FlowAt(x, z); f > maxFlow {
				maxFlow = f
			}
		}
	}
	if maxFlow <= 4 {
		t.Fatalf("valley accumulation too weak for the test: max flow %f", maxFlow)
	}

	before := snapshotHeights(hm)
	cfg := config.DefaultErosion().River
	cfg.MinFlowAccumulation = 4
	CarveRivers(hm, cfg)

	lowered := 0
	i := 0
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			if hm.HeightAt(x, z) < before[i] {
				lowered++
			}
			i++
		}
	}
	if lowered == 0 {
		t.Errorf("no cells carved despite flow above threshold")
	}
}

// TestCarveRiversBelowThresholdIsNoop verifies an unreachable
// threshold leaves the map untouched.
func TestCarveRiversBelowThresholdIsNoop(t *testing.T) {
	hm := valleyMap()
	hm.ComputeFlowAccumulation()
	before := snapshotHeights(hm)

	cfg := config.DefaultErosion().River
	cfg.MinFlowAccumulation = 1e9
	CarveRivers(hm, cfg)

	i := 0
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			if hm.HeightAt(x, z) != before[i] {
				t.Fatalf("cell (%d,%d) changed with no river cells", x, z)
			}
			i++
		}
	}
}

// TestSmoothingPassesBiasDownward verifies extra smoothing passes
// never raise a river bed.
func TestSmoothingPassesBiasDownward(t *testing.T) {
	cfg := config.DefaultErosion().River
	cfg.MinFlowAccumulation = 4

	smooth := valleyMap()
	smooth.ComputeFlowAccumulation()
	cfg.SmoothingPasses = 6
	CarveRivers(smooth, cfg)

	rough := valleyMap()
	rough.ComputeFlowAccumulation()
	cfg.SmoothingPasses = 0
	CarveRivers(rough, cfg)

	for z := 0; z < smooth.Depth(); z++ {
		for x := 0; x < smooth.Width(); x++ {
			if smooth.HeightAt(x, z) > rough.HeightAt(x, z)+1e-9 {
				t.Fatalf("smoothing raised cell (%d,%d) above the unsmoothed bed", x, z)
			}
		}
	}
}
