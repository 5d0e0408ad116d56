package erosion

import (
	"sync"
)

// Context is the process-wide border-exchange registry. Chunks
// generated at different times (and on different goroutines) submit
// the deltas their erosion pass produced along each seam; a neighbor
// generated later imports them to pull its own border toward the seam
// shape the first chunk already fixed.
//
// The registry stores and looks up, nothing more. The protocol is
// order dependent on purpose: whichever chunk erodes first wins the
// seam, and later imports only nudge the later chunk. That is an
// accepted approximation of a cross-chunk solve, not a bug.
type Context struct {
	mu      sync.RWMutex
	borders map[borderKey]*BorderData
}

type borderKey struct {
	chunk ChunkCoord
	dir   Direction
}

// NewContext creates an empty registry. One Context is shared per
// world session across all generating chunks; it synchronizes itself.
func NewContext() *Context {
	return &Context{
		borders: make(map[borderKey]*BorderData),
	}
}

// SubmitBorderData stores data keyed by (data.Source, data.Direction),
// replacing any previous export for that seam. The data must not be
// mutated after submission.
func (c *Context) SubmitBorderData(data *BorderData) {
	if data == nil {
		return
	}
	c.mu.Lock()
	c.borders[borderKey{data.Source, data.Direction}] = data
	c.mu.Unlock()
}

// NeighborBorder looks up what the neighbor of pos in lookDir exported
// back toward pos. Chunk (x+1, z) looking West finds what chunk (x, z)
// exported as East. Returns nil while that neighbor has not exported.
func (c *Context) NeighborBorder(pos ChunkCoord, lookDir Direction) *BorderData {
	neighbor := pos.Neighbor(lookDir)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.borders[borderKey{neighbor, lookDir.Opposite()}]
}

// ClearChunkData drops every border the given chunk exported. Called
// when the owning chunk unloads; nothing else invalidates entries.
func (c *Context) ClearChunkData(pos ChunkCoord) {
	c.mu.Lock()
	for _, dir := range []Direction{East, West, South, North} {
		delete(c.borders, borderKey{pos, dir})
	}
	c.mu.Unlock()
}

// ClearAll empties the registry on world teardown.
func (c *Context) ClearAll() {
	c.mu.Lock()
	c.borders = make(map[borderKey]*BorderData)
	c.mu.Unlock()
}

// Len reports the number of stored border strips.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.borders)
}
