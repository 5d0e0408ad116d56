package erosion

// ChunkCoord identifies a chunk column on the horizontal grid.
type ChunkCoord struct {
	X, Z int
}

// Direction is one of the four horizontal chunk-to-chunk directions.
type Direction int

const (
	East  Direction = iota // +x
	West                   // -x
	South                  // +z
	North                  // -z
)

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case West:
		return "west"
	case South:
		return "south"
	case North:
		return "north"
	}
	return "invalid"
}

// Opposite returns the direction a neighbor faces back along.
func (d Direction) Opposite() Direction {
	switch d {
	case East:
		return West
	case West:
		return East
	case South:
		return North
	default:
		return South
	}
}

// Neighbor returns the chunk coordinate one step in the direction.
func (c ChunkCoord) Neighbor(d Direction) ChunkCoord {
	switch d {
	case East:
		return ChunkCoord{c.X + 1, c.Z}
	case West:
		return ChunkCoord{c.X - 1, c.Z}
	case South:
		return ChunkCoord{c.X, c.Z + 1}
	default:
		return ChunkCoord{c.X, c.Z - 1}
	}
}

// BorderData carries one chunk's post-erosion corrections for a shared
// seam: the height deltas, sediment, and flow of the border-wide core
// strip facing the given direction. It is immutable once submitted to
// a Context; neighbors read it any number of times.
//
// Width x Depth is border x coreDepth for East/West strips and
// coreWidth x border for North/South strips, flattened row-major
// (x fastest).
type BorderData struct {
	Source    ChunkCoord
	Direction Direction
	Width     int
	Depth     int

	HeightDeltas []float64
	Sediment     []float64
	Flow         []float64
}

// borderStrip returns the total-grid origin and extent of the core
// strip facing dir: the outermost `border` core columns or rows on
// that side. These are the cells a neighbor's ghost ring overlaps.
func (hm *Heightmap) borderStrip(dir Direction) (x0, z0, w, d int) {
	b := hm.border
	switch dir {
	case East:
		return hm.coreW, b, b, hm.coreD
	case West:
		return b, b, b, hm.coreD
	case South:
		return b, hm.coreD, hm.coreW, b
	default: // North
		return b, b, hm.coreW, b
	}
}

// ghostStrip returns the total-grid origin and extent of the ghost
// ring on the given side, which mirrors the neighbor's borderStrip of
// the opposite direction.
func (hm *Heightmap) ghostStrip(dir Direction) (x0, z0, w, d int) {
	b := hm.border
	switch dir {
	case East:
		return b + hm.coreW, b, b, hm.coreD
	case West:
		return 0, b, b, hm.coreD
	case South:
		return b, b + hm.coreD, hm.coreW, b
	default: // North
		return b, 0, hm.coreW, b
	}
}

// ExportBorderData captures the eroded state of the core strip facing
// dir as deltas against the StoreOriginalHeights snapshot. With no
// snapshot the deltas are all zero.
func (hm *Heightmap) ExportBorderData(source ChunkCoord, dir Direction) *BorderData {
	x0, z0, w, d := hm.borderStrip(dir)
	data := &BorderData{
		Source:       source,
		Direction:    dir,
		Width:        w,
		Depth:        d,
		HeightDeltas: make([]float64, w*d),
		Sediment:     make([]float64, w*d),
		Flow:         make([]float64, w*d),
	}
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			i := z*w + x
			data.HeightDeltas[i] = hm.HeightDelta(x0+x, z0+z)
			data.Sediment[i] = hm.SedimentAt(x0+x, z0+z)
			data.Flow[i] = hm.FlowAt(x0+x, z0+z)
		}
	}
	return data
}

// ImportBorderData applies a neighbor's exported strip onto the ghost
// ring on the side `dir` of this heightmap. Height deltas and sediment
// add onto the existing values, never replace them: the receiving
// heightmap must already hold its own base heights, which by
// construction equal the neighbor's pre-erosion heights for the
// overlapping cells. Flow takes the maximum so repeated imports stay
// stable.
//
// The strip is ignored with a false return when its extents do not
// match the ghost ring, which happens only on border/chunk-size
// configuration mismatch between the two generators.
func (hm *Heightmap) ImportBorderData(data *BorderData, dir Direction) bool {
	x0, z0, w, d := hm.ghostStrip(dir)
	if data.Width != w || data.Depth != d {
		return false
	}
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			i := z*w + x
			tx, tz := x0+x, z0+z
			hm.SetHeight(tx, tz, hm.HeightAt(tx, tz)+data.HeightDeltas[i])
			hm.SetSediment(tx, tz, hm.SedimentAt(tx, tz)+data.Sediment[i])
			if data.Flow[i] > hm.FlowAt(tx, tz) {
				hm.SetFlow(tx, tz, data.Flow[i])
			}
		}
	}
	return true
}
