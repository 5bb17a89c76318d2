// Package parallel provides the tile-parallel execution infrastructure used
// by the data-parallel unsharp backends.
//
// The image grid is divided into 64x64 pixel tiles that are processed
// independently on a work-stealing WorkerPool. Key features:
//
//   - 64x64 tiles keep a tile's output rows within L1/L2 cache
//   - Per-worker queues with work stealing for uneven tiles
//   - Panic containment: a failing tile is reported as an error
//   - Size-keyed buffer pooling via sync.Pool for stage outputs
//
// Tiles only describe regions; they own no pixel data. Workers write
// straight into the shared output buffer, and tiles never overlap, so no
// two workers write the same byte.
package parallel

// Tile size constants.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 64

	// TileHeight is the height of a tile in pixels.
	TileHeight = 64

	// TilePixels is the number of pixels in a full tile.
	TilePixels = TileWidth * TileHeight
)

// Tile is a half-open rectangle [X0, X1) x [Y0, Y1) of the pixel grid.
type Tile struct {
	X0, Y0 int
	X1, Y1 int
}

// Width returns the tile width in pixels.
func (t Tile) Width() int {
	return t.X1 - t.X0
}

// Height returns the tile height in pixels.
func (t Tile) Height() int {
	return t.Y1 - t.Y0
}

// Pixels returns the number of pixels covered by the tile.
func (t Tile) Pixels() int {
	return t.Width() * t.Height()
}

// Contains reports whether pixel (x, y) lies inside the tile.
func (t Tile) Contains(x, y int) bool {
	return x >= t.X0 && x < t.X1 && y >= t.Y0 && y < t.Y1
}

// Tiles partitions a width x height grid into tiles in row-major order.
// Edge tiles are smaller when the grid is not a multiple of the tile size.
// Returns nil for an empty grid.
func Tiles(width, height int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}

	tilesX := (width + TileWidth - 1) / TileWidth
	tilesY := (height + TileHeight - 1) / TileHeight

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			x0 := tx * TileWidth
			y0 := ty * TileHeight
			tiles = append(tiles, Tile{
				X0: x0,
				Y0: y0,
				X1: min(x0+TileWidth, width),
				Y1: min(y0+TileHeight, height),
			})
		}
	}
	return tiles
}

// ForEachPixel calls fn for every pixel of the tile in row-major order.
func (t Tile) ForEachPixel(fn func(x, y int)) {
	for y := t.Y0; y < t.Y1; y++ {
		for x := t.X0; x < t.X1; x++ {
			fn(x, y)
		}
	}
}
