// Package cli provides a windowed runner for the machine.
// It handles input polling and presents the display; the machine core
// does not poll input itself.
package cli

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"github.com/kwren/chip8/emu"
	"github.com/kwren/chip8/storage"
)

// keypadLayout maps the left side of a QWERTY keyboard to the 4x4 hex
// keypad, preserving its physical arrangement:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keypadLayout = map[ebiten.Key]uint8{
	ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// Runner wraps a machine for windowed mode. It implements ebiten.Game.
type Runner struct {
	ctx     context.Context
	machine *emu.Machine
	store   *storage.Store
	beeper  *Beeper
	logger  *log.Logger

	savePath string
	clockHz  int

	offscreen  *ebiten.Image
	frame      []byte
	lastUpdate time.Time
	halted     bool
}

// NewRunner creates a new Runner wrapping the given machine. Snapshots
// triggered by the save and load keys go to savePath.
func NewRunner(ctx context.Context, machine *emu.Machine, store *storage.Store, savePath string, clockHz int, logger *log.Logger) (*Runner, error) {
	beeper, err := NewBeeper()
	if err != nil {
		return nil, err
	}

	return &Runner{
		ctx:        ctx,
		machine:    machine,
		store:      store,
		beeper:     beeper,
		logger:     logger,
		savePath:   savePath,
		clockHz:    clockHz,
		frame:      make([]byte, emu.DisplayWidth*emu.DisplayHeight*4),
		lastUpdate: time.Now(),
	}, nil
}

// Close cleans up the runner's resources
func (r *Runner) Close() {
	if r.beeper != nil {
		_ = r.beeper.Close()
		r.beeper = nil
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if r.ctx.Err() != nil {
		return ebiten.Termination
	}

	if !ebiten.IsFocused() {
		r.lastUpdate = time.Now()
		r.beeper.SetActive(false)
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	r.handleControlKeys()

	now := time.Now()
	elapsed := now.Sub(r.lastUpdate)
	r.lastUpdate = now

	if r.halted {
		r.beeper.SetActive(false)
		return nil
	}

	// Poll input (runner responsibility, not machine)
	r.pollKeypad()

	if err := r.machine.RunFrame(elapsed); err != nil {
		// A faulted program freezes with its last frame on screen
		r.logger.Error("emulation halted", log.Err(err))
		r.halted = true
		r.beeper.SetActive(false)
		return nil
	}

	r.beeper.SetActive(r.machine.SoundActive() && !r.machine.Paused())
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	if r.offscreen == nil {
		r.offscreen = ebiten.NewImage(emu.DisplayWidth, emu.DisplayHeight)
	}

	if r.machine.Display().TakeDirty() {
		r.renderFrame()
		r.offscreen.WritePixels(r.frame)
	}

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(emu.DisplayWidth)
	nativeH := float64(emu.DisplayHeight)

	scaleX := float64(screenW) / nativeW
	scaleY := float64(screenH) / nativeH
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	// Calculate offset to center the image
	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, op)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// renderFrame expands the packed 1-bit display buffer into RGBA pixels
func (r *Runner) renderFrame() {
	buf := r.machine.Display().Buffer()
	for i, b := range buf {
		for bit := 0; bit < 8; bit++ {
			v := byte(0x00)
			if b&(0x80>>bit) != 0 {
				v = 0xFF
			}
			px := (i*8 + bit) * 4
			r.frame[px] = v
			r.frame[px+1] = v
			r.frame[px+2] = v
			r.frame[px+3] = 0xFF
		}
	}
}

// pollKeypad reads the keyboard and passes keypad state to the machine
func (r *Runner) pollKeypad() {
	for key, pad := range keypadLayout {
		r.machine.SetKey(pad, ebiten.IsKeyPressed(key))
	}
}

// handleControlKeys processes the emulator control keys. Pause always
// works; save and load are ignored while paused or halted.
func (r *Runner) handleControlKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.machine.SetPaused(!r.machine.Paused())
	}

	if r.machine.Paused() || r.halted {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		r.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		r.loadState()
	}
}

// saveState writes the current machine snapshot to the save path
func (r *Runner) saveState() {
	if err := r.store.WriteSnapshot(r.savePath, r.machine.Snapshot()); err != nil {
		r.logger.Error("failed to save state", log.Err(err))
		return
	}
	r.logger.Info("state saved", log.String("path", r.savePath))
}

// loadState restores the machine from the save path. The running machine
// is only replaced once the snapshot has been fully validated.
func (r *Runner) loadState() {
	if !r.store.HasSnapshot(r.savePath) {
		r.logger.Info("no saved state", log.String("path", r.savePath))
		return
	}

	data, err := r.store.ReadSnapshot(r.savePath)
	if err != nil {
		r.logger.Error("failed to read state", log.Err(err))
		return
	}

	restored, err := emu.Restore(data, emu.Config{ClockHz: r.clockHz})
	if err != nil {
		r.logger.Error("failed to restore state", log.Err(err))
		return
	}

	r.machine = restored
	r.logger.Info("state loaded", log.String("path", r.savePath))
}
