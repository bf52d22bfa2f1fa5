// Package pacing implements the politeness delay between outbound requests:
// a blocking pause of a random duration within a half-open interval.
package pacing

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Pacer pauses for a random duration in [Min, Max). Sleep and Rand may be
// injected for deterministic tests; they default to time.Sleep and the shared
// math/rand source.
type Pacer struct {
	Min   time.Duration
	Max   time.Duration
	Sleep func(time.Duration)
	Rand  func(n int64) int64
}

// New returns a Pacer over [min, max).
func New(min, max time.Duration) *Pacer {
	return &Pacer{Min: min, Max: max}
}

// Pause blocks for the next politeness delay.
func (p *Pacer) Pause() {
	d := p.next()
	log.Debug().Dur("delay", d).Msg("Politeness pause")
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (p *Pacer) next() time.Duration {
	span := int64(p.Max - p.Min)
	if span <= 0 {
		return p.Min
	}
	if p.Rand != nil {
		return p.Min + time.Duration(p.Rand(span))
	}
	return p.Min + time.Duration(rand.Int63n(span))
}
