package alert

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// SoundPlayer plays the alert mp3 through the default speaker, blocking until
// playback finishes. Best effort: callers swallow the returned error.
type SoundPlayer struct {
	path     string
	initOnce sync.Once
	initErr  error
}

func NewSoundPlayer(path string) *SoundPlayer {
	return &SoundPlayer{path: path}
}

// Play decodes and plays the configured file.
func (p *SoundPlayer) Play() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("failed to open alert sound %s: %w", p.path, err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode alert sound %s: %w", p.path, err)
	}
	defer streamer.Close()

	p.initOnce.Do(func() {
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if p.initErr != nil {
		return fmt.Errorf("failed to initialize speaker: %w", p.initErr)
	}

	speaker.PlayAndWait(streamer)
	return nil
}
