package emu

// Display dimensions.
const (
	DisplayWidth  = 64
	DisplayHeight = 32

	displayStride = DisplayWidth / 8
	displayBytes  = displayStride * DisplayHeight
)

// Display is the monochrome framebuffer: a row-major 64x32 one-bit grid
// packed 8 pixels per byte, most significant bit leftmost. Sprites are
// composed with XOR; drawing reports whether any lit pixel was turned off.
type Display struct {
	pixels [displayBytes]uint8
	dirty  bool
}

// NewDisplay returns a cleared framebuffer.
func NewDisplay() *Display {
	return &Display{dirty: true}
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.pixels = [displayBytes]uint8{}
	d.dirty = true
}

// At reports whether the pixel at (x, y) is lit. Coordinates outside the
// grid read as unlit.
func (d *Display) At(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	b := d.pixels[y*displayStride+x/8]
	return b&(0x80>>uint(x%8)) != 0
}

func (d *Display) flip(x, y int) (wasLit bool) {
	idx := y*displayStride + x/8
	mask := uint8(0x80) >> uint(x%8)
	wasLit = d.pixels[idx]&mask != 0
	d.pixels[idx] ^= mask
	return wasLit
}

// DrawSprite XORs an 8-pixel-wide sprite onto the buffer. The origin is
// taken modulo the grid size; rows and columns that extend past the edge
// clip rather than wrap. It reports whether any pixel flipped from lit to
// unlit (the collision flag).
func (d *Display) DrawSprite(x, y uint8, sprite []byte) (collision bool) {
	ox := int(x) % DisplayWidth
	oy := int(y) % DisplayHeight

	for row, line := range sprite {
		py := oy + row
		if py >= DisplayHeight {
			break
		}
		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>uint(bit)) == 0 {
				continue
			}
			px := ox + bit
			if px >= DisplayWidth {
				break
			}
			if d.flip(px, py) {
				collision = true
			}
		}
	}

	d.dirty = true
	return collision
}

// Buffer returns a copy of the packed pixel buffer. Each displayStride bytes
// hold one row, left to right.
func (d *Display) Buffer() [displayBytes]uint8 {
	return d.pixels
}

// TakeDirty reports whether the buffer changed since the last call and
// clears the flag. The presentation layer uses it to skip redundant uploads.
func (d *Display) TakeDirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}
