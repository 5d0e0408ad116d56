package erosion

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"voxelterra/internal/config"
)

// CPUEngine runs droplet hydraulic erosion across a pool of worker
// goroutines sized to hardware concurrency. Every read/write of the
// shared heightmap happens under the heightmap's own mutex, so the
// aggregate outcome is statistically seed-stable across thread-count
// changes, but the floating-point accumulation order is not: two runs
// agree closely, not bit-exactly.
type CPUEngine struct{}

func NewCPUEngine() *CPUEngine {
	return &CPUEngine{}
}

// workerSeedStride decorrelates per-worker RNG streams.
const workerSeedStride = 0x9E3779B9

// minDropletWater is the volume below which a droplet dies.
const minDropletWater = 0.01

// Erode simulates cfg.Particle.DropletCount droplets on the heightmap.
func (e *CPUEngine) Erode(hm *Heightmap, cfg config.Erosion, seed int64) {
	p := cfg.Particle
	if p.DropletCount <= 0 || p.MaxDropletLifetime <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > p.DropletCount {
		workers = p.DropletCount
	}

	per := p.DropletCount / workers
	extra := p.DropletCount % workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		n := per
		if i == 0 {
			n += extra
		}
		wg.Add(1)
		go func(worker, count int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(worker)*workerSeedStride))
			for d := 0; d < count; d++ {
				simulateDroplet(hm, p, rng)
			}
		}(i, n)
	}
	wg.Wait()
}

// simulateDroplet runs one droplet to termination. Heightmap access is
// bracketed by the heightmap mutex per step; holding it across the
// whole gradient-read/height-write burst keeps each step's view
// consistent.
func simulateDroplet(hm *Heightmap, p config.ErosionParticle, rng *rand.Rand) {
	// Interior excludes the outermost cell so the bilinear 2x2
	// neighborhood and unit-step gradients stay in valid data.
	maxX := float64(hm.Width() - 2)
	maxZ := float64(hm.Depth() - 2)
	if maxX <= 1 || maxZ <= 1 {
		return
	}

	pos := mgl64.Vec2{
		1 + rng.Float64()*(maxX-1),
		1 + rng.Float64()*(maxZ-1),
	}
	dir := mgl64.Vec2{}
	speed := 1.0
	water := 1.0
	sediment := 0.0

	for life := 0; life < p.MaxDropletLifetime; life++ {
		hm.Lock()

		dhdx, h, dhdz := hm.Gradient(pos[0], pos[1])

		// Blend direction with the downhill gradient by inertia,
		// falling back to a random heading on flat ground.
		dir = dir.Mul(p.Inertia).Sub(mgl64.Vec2{dhdx, dhdz}.Mul(1 - p.Inertia))
		if dir.Len() < 1e-8 {
			angle := rng.Float64() * 2 * math.Pi
			dir = mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
		} else {
			dir = dir.Normalize()
		}

		next := pos.Add(dir)
		if next[0] < 1 || next[0] >= maxX || next[1] < 1 || next[1] >= maxZ {
			// Leaving the valid interior: drop half the load here and die.
			hm.DepositSediment(pos[0], pos[1], sediment*0.5)
			hm.Unlock()
			return
		}

		newHeight := hm.SampleBilinear(next[0], next[1])
		deltaHeight := newHeight - h

		capacity := math.Max(-deltaHeight*speed*water*p.SedimentCapacity, p.MinSedimentCapacity)

		if sediment > capacity || deltaHeight > 0 {
			var deposit float64
			if deltaHeight > 0 {
				// Moving uphill: fill the pit, at most the step height.
				deposit = math.Min(deltaHeight, sediment)
			} else {
				deposit = (sediment - capacity) * p.DepositionRate
			}
			sediment -= deposit
			hm.DepositSediment(pos[0], pos[1], deposit)
		} else {
			erode := math.Min((capacity-sediment)*p.ErosionRate, -deltaHeight)
			erodeAt(hm, pos[0], pos[1], erode, p.ErosionRadius)
			sediment += erode
		}

		hm.Unlock()

		speed = math.Sqrt(math.Max(0, speed*speed+deltaHeight*p.Gravity))
		water *= 1 - p.EvaporationRate
		pos = next

		if water < minDropletWater {
			return
		}
	}
}

// erodeAt removes amount of height around a fractional position.
// Radius 1 or less is a plain bilinear point removal; larger radii
// spread the removal over a linear-falloff disc with normalized
// weights so the total removed still equals amount.
func erodeAt(hm *Heightmap, x, z float64, amount float64, radius int) {
	if amount <= 0 {
		return
	}
	if radius <= 1 {
		hm.AddHeight(x, z, -amount)
		return
	}

	cx := int(x)
	cz := int(z)
	r := float64(radius)

	type target struct {
		x, z int
		w    float64
	}
	targets := make([]target, 0, (2*radius+1)*(2*radius+1))
	totalWeight := 0.0
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, nz := cx+dx, cz+dz
			if !hm.inBounds(nx, nz) {
				continue
			}
			dist := math.Hypot(float64(nx)-x, float64(nz)-z)
			w := r - dist
			if w <= 0 {
				continue
			}
			targets = append(targets, target{nx, nz, w})
			totalWeight += w
		}
	}
	if totalWeight <= 0 {
		hm.AddHeight(x, z, -amount)
		return
	}
	for _, t := range targets {
		hm.height[hm.idx(t.x, t.z)] -= amount * t.w / totalWeight
	}
}
