package erosion

import (
	"log"

	"voxelterra/internal/config"
	"voxelterra/internal/profiling"
)

// Simulator picks an erosion engine per its configuration and runs
// the post-erosion river pass. The CPU engine is always available;
// the GPU engine is constructed once, up front, and a construction
// failure quietly degrades every Simulate call to the CPU path after
// logging once.
type Simulator struct {
	cfg config.Erosion
	cpu *CPUEngine
	gpu *GPUEngine
}

// NewSimulator builds a simulator. The GPU engine is only attempted
// when the configuration prefers it; nothing else pays the context
// setup cost.
func NewSimulator(cfg config.Erosion) *Simulator {
	s := &Simulator{
		cfg: cfg,
		cpu: NewCPUEngine(),
	}
	if cfg.Enabled && cfg.PreferGPU {
		s.gpu = NewGPUEngine()
		if !s.gpu.Available() {
			s.gpu = nil
		}
	}
	return s
}

// HasGPUSupport reports whether a GPU engine exists and came up. It
// never reflects whether a simulation has actually run.
func (s *Simulator) HasGPUSupport() bool {
	return s.gpu != nil && s.gpu.Available()
}

// Simulate erodes the heightmap and, when configured, carves rivers
// from the post-erosion flow field. With Enabled false the heightmap
// is left completely untouched.
func (s *Simulator) Simulate(hm *Heightmap, seed int64) {
	if !s.cfg.Enabled {
		return
	}
	defer profiling.Track("erosion.Simulate")()

	if s.cfg.PreferGPU && s.HasGPUSupport() {
		s.gpu.Erode(hm, s.cfg, seed)
	} else {
		s.cpu.Erode(hm, s.cfg, seed)
	}

	if s.cfg.River.Enabled {
		hm.ComputeFlowAccumulation()
		CarveRivers(hm, s.cfg.River)
	}
}

// Close releases the GPU engine's context, if any.
func (s *Simulator) Close() {
	if s.gpu != nil {
		s.gpu.Close()
		s.gpu = nil
		log.Printf("erosion: GPU engine released")
	}
}
