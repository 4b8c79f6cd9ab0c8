package cli

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	beepSampleRate = 48000
	beepFrequency  = 440
	beepVolume     = 0.25
)

// squareWave generates an endless square wave as 16-bit little-endian
// stereo PCM
type squareWave struct {
	pos int64
}

func (s *squareWave) Read(buf []byte) (int, error) {
	const halfPeriod = beepSampleRate / beepFrequency / 2

	n := len(buf) / 4 * 4
	for i := 0; i < n; i += 4 {
		v := int16(beepVolume * float64(math.MaxInt16))
		if (s.pos/halfPeriod)%2 == 1 {
			v = -v
		}
		buf[i] = byte(v)
		buf[i+1] = byte(v >> 8)
		buf[i+2] = byte(v)
		buf[i+3] = byte(v >> 8)
		s.pos++
	}
	return n, nil
}

// Beeper plays the single tone driven by the machine's sound timer
type Beeper struct {
	player *audio.Player
}

// NewBeeper creates the audio player for the beep tone. The player starts
// paused.
func NewBeeper() (*Beeper, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(beepSampleRate)
	}

	player, err := ctx.NewPlayer(&squareWave{})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}

	return &Beeper{player: player}, nil
}

// SetActive starts or stops the tone to match the sound timer state
func (b *Beeper) SetActive(active bool) {
	if active {
		if !b.player.IsPlaying() {
			b.player.Play()
		}
		return
	}
	if b.player.IsPlaying() {
		b.player.Pause()
	}
}

// Close cleans up the beeper's resources
func (b *Beeper) Close() error {
	return b.player.Close()
}
