// terraview renders a rectangle of generated, eroded chunks as a
// shaded PNG so terrain and seam quality can be eyeballed quickly.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"

	"voxelterra/internal/config"
	"voxelterra/internal/erosion"
	"voxelterra/internal/profiling"
	"voxelterra/internal/world"
)

func main() {
	seed := flag.Int64("seed", 1337, "world seed")
	chunksX := flag.Int("cx", 8, "chunks along x")
	chunksZ := flag.Int("cz", 8, "chunks along z")
	erode := flag.Bool("erode", true, "run hydraulic erosion")
	gpu := flag.Bool("gpu", false, "prefer the GPU erosion engine")
	scale := flag.Int("scale", 4, "output pixels per column")
	out := flag.String("o", "terrain.png", "output PNG path")
	flag.Parse()

	terrainCfg := config.DefaultTerrain()
	climateCfg := config.DefaultClimate()
	erosionCfg := config.DefaultErosion()
	erosionCfg.Enabled = *erode
	erosionCfg.PreferGPU = *gpu

	gen := world.NewGenerator(terrainCfg, climateCfg, erosionCfg, *seed)
	defer gen.Close()
	gen.SetErosionContext(erosion.NewContext())

	if *gpu && !gen.HasGPUSupport() {
		log.Printf("terraview: GPU requested but unavailable, eroding on CPU")
	}

	w := *chunksX * world.ChunkWidth
	d := *chunksZ * world.ChunkDepth
	heights := make([]int, w*d)

	for cz := 0; cz < *chunksZ; cz++ {
		for cx := 0; cx < *chunksX; cx++ {
			c := world.NewChunk(erosion.ChunkCoord{X: cx, Z: cz})
			gen.Generate(c)
			for z := 0; z < c.Depth; z++ {
				for x := 0; x < c.Width; x++ {
					heights[(cz*world.ChunkDepth+z)*w+cx*world.ChunkWidth+x] = c.HeightAt(x, z)
				}
			}
		}
	}

	img := paint(heights, w, d, terrainCfg.SeaLevel, terrainCfg.MaxHeight)

	if *scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, w**scale, d**scale))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
		img = dst
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("terraview: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("terraview: encode: %v", err)
	}

	fmt.Printf("wrote %s (%dx%d columns, seed %d)\n", *out, w, d, *seed)
	fmt.Printf("timings: %s\n", profiling.TopN(4))
}

// paint maps heights to hypsometric colors shaded by the local
// east-west slope.
func paint(heights []int, w, d, seaLevel, maxHeight int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, d))
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			h := heights[z*w+x]
			c := hypsometric(h, seaLevel, maxHeight)

			// Fake light from the west.
			if x > 0 && x < w-1 {
				slope := heights[z*w+x+1] - heights[z*w+x-1]
				c = shade(c, slope)
			}
			img.Set(x, z, c)
		}
	}
	return img
}

func hypsometric(h, seaLevel, maxHeight int) color.RGBA {
	switch {
	case h < seaLevel-8:
		return color.RGBA{16, 48, 120, 255}
	case h < seaLevel:
		return color.RGBA{40, 90, 170, 255}
	case h < seaLevel+3:
		return color.RGBA{210, 200, 150, 255}
	case h < seaLevel+30:
		return color.RGBA{70, 140, 60, 255}
	case h < seaLevel+60:
		return color.RGBA{110, 120, 70, 255}
	case h < seaLevel+90:
		return color.RGBA{130, 120, 110, 255}
	default:
		t := float64(h-seaLevel-90) / float64(maxHeight-seaLevel-90+1)
		g := uint8(160 + 90*t)
		return color.RGBA{g, g, g, 255}
	}
}

func shade(c color.RGBA, slope int) color.RGBA {
	f := 1.0 - float64(slope)*0.06
	if f < 0.6 {
		f = 0.6
	}
	if f > 1.3 {
		f = 1.3
	}
	scale := func(v uint8) uint8 {
		s := float64(v) * f
		if s > 255 {
			s = 255
		}
		return uint8(s)
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), 255}
}
