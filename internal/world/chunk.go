package world

import (
	"voxelterra/internal/erosion"
)

// Default horizontal chunk dimensions.
const (
	ChunkWidth = 16
	ChunkDepth = 16
)

// Chunk is the column-height surface this subsystem populates. Block
// storage, lifecycle, and persistence belong to the chunk-storage
// collaborator; terrain generation only fills Heights in place.
type Chunk struct {
	Coord        erosion.ChunkCoord
	Width, Depth int
	Heights      []int
}

// NewChunk allocates an empty chunk surface at the given coordinate.
func NewChunk(coord erosion.ChunkCoord) *Chunk {
	return &Chunk{
		Coord:   coord,
		Width:   ChunkWidth,
		Depth:   ChunkDepth,
		Heights: make([]int, ChunkWidth*ChunkDepth),
	}
}

// HeightAt returns the column height at local coordinates, 0 when out
// of range.
func (c *Chunk) HeightAt(x, z int) int {
	if x < 0 || x >= c.Width || z < 0 || z >= c.Depth {
		return 0
	}
	return c.Heights[z*c.Width+x]
}

// SetHeight writes a column height, ignoring out-of-range coordinates.
func (c *Chunk) SetHeight(x, z, h int) {
	if x < 0 || x >= c.Width || z < 0 || z >= c.Depth {
		return
	}
	c.Heights[z*c.Width+x] = h
}

// WorldX / WorldZ convert a local column to world coordinates.
func (c *Chunk) WorldX(x int) int { return c.Coord.X*c.Width + x }
func (c *Chunk) WorldZ(z int) int { return c.Coord.Z*c.Depth + z }
