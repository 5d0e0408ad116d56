package erosion

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

const (
	testCoreW  = 16
	testCoreD  = 16
	testBorder = 4
)

// worldHeight is a stand-in pure terrain function shared by both sides
// of a seam, the way two chunks of one world share the generator.
func worldHeight(x, z int) float64 {
	return 60 + 10*math.Sin(float64(x)*0.11) + 6*math.Cos(float64(z)*0.07)
}

// fillFromWorld populates a bordered heightmap for the chunk at coord.
func fillFromWorld(coord ChunkCoord) *Heightmap {
	hm := NewHeightmap(testCoreW, testCoreD, testBorder)
	baseX := coord.X*testCoreW - testBorder
	baseZ := coord.Z*testCoreD - testBorder
	for z := 0; z < hm.Depth(); z++ {
		for x := 0; x < hm.Width(); x++ {
			hm.SetHeight(x, z, worldHeight(baseX+x, baseZ+z))
		}
	}
	return hm
}

// TestDirectionOpposite verifies the four pairings.
func TestDirectionOpposite(t *testing.T) {
	pairs := map[Direction]Direction{East: West, West: East, South: North, North: South}
	for d, want := range pairs {
		if got := d.Opposite(); got != want {
			t.Errorf("%s.Opposite() = %s, want %s", d, got, want)
		}
	}
}

// TestChunkNeighbor verifies neighbor coordinates per direction.
func TestChunkNeighbor(t *testing.T) {
	c := ChunkCoord{X: 3, Z: -2}
	cases := map[Direction]ChunkCoord{
		East:  {4, -2},
		West:  {2, -2},
		South: {3, -1},
		North: {3, -3},
	}
	for d, want := range cases {
		if got := c.Neighbor(d); got != want {
			t.Errorf("%v.Neighbor(%s) = %v, want %v", c, d, got, want)
		}
	}
}

// TestBorderRoundTrip verifies the seam property: exporting chunk A's
// East deltas and importing them as chunk B's West border reproduces
// original_height + delta exactly on every cell of the strip.
func TestBorderRoundTrip(t *testing.T) {
	a := ChunkCoord{X: 0, Z: 0}
	b := ChunkCoord{X: 1, Z: 0}

	hmA := fillFromWorld(a)
	hmA.StoreOriginalHeights()

	// Stand-in erosion: perturb A's east core strip with known deltas.
	for z := 0; z < hmA.Depth(); z++ {
		for x := 0; x < hmA.Width(); x++ {
			hmA.SetHeight(x, z, hmA.HeightAt(x, z)+0.01*float64(x*31+z*17))
		}
	}

	ctx := NewContext()
	ctx.SubmitBorderData(hmA.ExportBorderData(a, East))

	hmB := fillFromWorld(b)
	data := ctx.NeighborBorder(b, West)
	if data == nil {
		t.Fatal("neighbor West lookup found nothing after East submit")
	}
	if !hmB.ImportBorderData(data, West) {
		t.Fatal("import rejected matching strip extents")
	}

	// B's west ghost columns overlap A's east core columns.
	for z := 0; z < testCoreD; z++ {
		for x := 0; x < testBorder; x++ {
			worldX := b.X*testCoreW - testBorder + x
			worldZ := b.Z*testCoreD + z

			original := worldHeight(worldX, worldZ)
			delta := data.HeightDeltas[z*testBorder+x]
			want := original + delta

			got := hmB.HeightAt(x, z+testBorder)
			if got != want {
				t.Fatalf("ghost cell (%d,%d): got %v, want exactly %v", x, z, got, want)
			}
		}
	}
}

// TestNeighborBorderMissing verifies lookups return nil until the
// neighbor exports.
func TestNeighborBorderMissing(t *testing.T) {
	ctx := NewContext()
	if d := ctx.NeighborBorder(ChunkCoord{X: 5, Z: 5}, North); d != nil {
		t.Errorf("expected nil for unexported neighbor, got %+v", d)
	}
}

// TestNeighborBorderDirectionality verifies an East export is only
// visible to the east neighbor looking West.
func TestNeighborBorderDirectionality(t *testing.T) {
	a := ChunkCoord{X: 0, Z: 0}
	hm := fillFromWorld(a)
	hm.StoreOriginalHeights()

	ctx := NewContext()
	ctx.SubmitBorderData(hm.ExportBorderData(a, East))

	if ctx.NeighborBorder(ChunkCoord{X: 1, Z: 0}, West) == nil {
		t.Errorf("east neighbor looking West should find the export")
	}
	if ctx.NeighborBorder(ChunkCoord{X: -1, Z: 0}, East) != nil {
		t.Errorf("west neighbor looking East must not find an East export")
	}
	if ctx.NeighborBorder(ChunkCoord{X: 0, Z: 1}, North) != nil {
		t.Errorf("south neighbor looking North must not find an East export")
	}
}

// TestImportIsAdditive verifies importing twice adds twice for heights
// and sediment while flow takes the maximum.
func TestImportIsAdditive(t *testing.T) {
	a := ChunkCoord{X: 0, Z: 0}
	hmA := fillFromWorld(a)
	hmA.StoreOriginalHeights()
	for z := 0; z < hmA.Depth(); z++ {
		for x := 0; x < hmA.Width(); x++ {
			hmA.SetHeight(x, z, hmA.HeightAt(x, z)+1.0)
		}
	}
	data := hmA.ExportBorderData(a, East)

	hmB := fillFromWorld(ChunkCoord{X: 1, Z: 0})
	base := hmB.HeightAt(0, testBorder)
	hmB.ImportBorderData(data, West)
	hmB.ImportBorderData(data, West)

	want := base + 2.0
	if got := hmB.HeightAt(0, testBorder); math.Abs(got-want) > 1e-12 {
		t.Errorf("double import: got %f, want %f", got, want)
	}

	if f := hmB.FlowAt(0, testBorder); f != 1.0 {
		t.Errorf("flow after importing flow=1 strips twice = %f, want 1 (max, not sum)", f)
	}
}

// TestImportRejectsMismatchedStrip verifies extent mismatches are
// refused rather than partially applied.
func TestImportRejectsMismatchedStrip(t *testing.T) {
	hm := NewHeightmap(testCoreW, testCoreD, testBorder)
	bad := &BorderData{Width: 1, Depth: 1, HeightDeltas: []float64{1}, Sediment: []float64{0}, Flow: []float64{1}}
	if hm.ImportBorderData(bad, West) {
		t.Errorf("import accepted a mismatched strip")
	}
}

// TestClearChunkData verifies per-chunk invalidation and ClearAll.
func TestClearChunkData(t *testing.T) {
	a := ChunkCoord{X: 0, Z: 0}
	b := ChunkCoord{X: 7, Z: 7}
	hmA := fillFromWorld(a)
	hmB := fillFromWorld(b)

	ctx := NewContext()
	ctx.SubmitBorderData(hmA.ExportBorderData(a, East))
	ctx.SubmitBorderData(hmA.ExportBorderData(a, North))
	ctx.SubmitBorderData(hmB.ExportBorderData(b, South))

	ctx.ClearChunkData(a)
	if ctx.NeighborBorder(a.Neighbor(East), West) != nil {
		t.Errorf("chunk A data survived ClearChunkData")
	}
	if ctx.NeighborBorder(b.Neighbor(South), North) == nil {
		t.Errorf("chunk B data was dropped by A's ClearChunkData")
	}

	ctx.ClearAll()
	if ctx.Len() != 0 {
		t.Errorf("ClearAll left %d entries", ctx.Len())
	}
}

// TestContextConcurrentAccess exercises simultaneous submits and
// lookups from many goroutines; run with -race.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				coord := ChunkCoord{X: n, Z: j % 5}
				hm := fillFromWorld(coord)
				for _, dir := range []Direction{East, West, South, North} {
					ctx.SubmitBorderData(hm.ExportBorderData(coord, dir))
				}
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ctx.NeighborBorder(ChunkCoord{X: n, Z: j % 5}, East)
				ctx.ClearChunkData(ChunkCoord{X: n, Z: (j + 1) % 5})
			}
		}(i)
	}
	wg.Wait()
}

// TestDirectionString covers the labels used in logs.
func TestDirectionString(t *testing.T) {
	for d, want := range map[Direction]string{East: "east", West: "west", South: "south", North: "north"} {
		if got := fmt.Sprint(d); got != want {
			t.Errorf("Direction(%d) = %q, want %q", d, got, want)
		}
	}
}
