package config

// Erosion holds every parameter of the hydraulic erosion pass.
// The struct is a value type: the simulator copies it per Simulate
// call and partial mutation of a shared instance is not supported.
type Erosion struct {
	// Enabled false is a hard bypass: the simulator leaves the
	// heightmap completely untouched.
	Enabled bool

	// PreferGPU selects the compute backend when one is available;
	// the CPU engine is the fallback and is always available.
	PreferGPU bool

	// Border is the ghost-cell ring width around a chunk's core area.
	Border int

	Particle ErosionParticle
	GPU      ErosionGPU
	River    ErosionRiver
}

// ErosionParticle parameterizes a single simulated droplet.
type ErosionParticle struct {
	// Inertia in [0,1]: 1 keeps the previous direction, 0 follows the
	// negative gradient exactly.
	Inertia float64

	// SedimentCapacity scales how much sediment a fast, heavy droplet
	// can carry; MinSedimentCapacity is the floor on flat ground.
	SedimentCapacity    float64
	MinSedimentCapacity float64

	// ErosionRate / DepositionRate are the per-step fractions of the
	// capacity surplus/deficit actually applied to the terrain.
	ErosionRate    float64
	DepositionRate float64

	Gravity         float64
	EvaporationRate float64

	// DropletCount droplets are simulated per erode call, each living
	// at most MaxDropletLifetime steps.
	DropletCount       int
	MaxDropletLifetime int

	// ErosionRadius spreads each erosion event over a falloff-weighted
	// disc of cells; 1 or less collapses to a bilinear point.
	ErosionRadius int
}

// ErosionGPU parameterizes the compute backend.
type ErosionGPU struct {
	// BatchSize droplets are dispatched per kernel invocation; height
	// changes from batch n are visible to batch n+1.
	BatchSize int
}

// ErosionRiver parameterizes flow-accumulation river carving.
type ErosionRiver struct {
	Enabled bool

	// MinFlowAccumulation is the flow threshold above which a cell
	// counts as a river cell.
	MinFlowAccumulation float64

	// DepthScale / WidthScale multiply sqrt(flow) to size the channel.
	DepthScale float64
	WidthScale float64

	// SmoothingPasses of neighbor averaging applied to river cells,
	// keeping the lower of current and averaged height.
	SmoothingPasses int
}

// DefaultErosion returns parameters tuned for a 16x16 chunk core with
// a 4-cell border, visually plausible after ~6000 droplets.
func DefaultErosion() Erosion {
	return Erosion{
		Enabled:   true,
		PreferGPU: false,
		Border:    4,
		Particle: ErosionParticle{
			Inertia:             0.05,
			SedimentCapacity:    4.0,
			MinSedimentCapacity: 0.01,
			ErosionRate:         0.3,
			DepositionRate:      0.3,
			Gravity:             4.0,
			EvaporationRate:     0.02,
			DropletCount:        6000,
			MaxDropletLifetime:  30,
			ErosionRadius:       2,
		},
		GPU: ErosionGPU{
			BatchSize: 1024,
		},
		River: ErosionRiver{
			Enabled:             true,
			MinFlowAccumulation: 24.0,
			DepthScale:          0.35,
			WidthScale:          0.4,
			SmoothingPasses:     2,
		},
	}
}
