package tui

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue names a game sound
type Cue int

const (
	CueSpawn Cue = iota
	CueAccept
	CueReject
	CueWon
	CueLost
)

// tone is one note of a cue
type tone struct {
	freq float64
	dur  time.Duration
}

var cues = map[Cue][]tone{
	CueSpawn:  {{freq: 330, dur: 40 * time.Millisecond}},
	CueAccept: {{freq: 660, dur: 60 * time.Millisecond}, {freq: 880, dur: 90 * time.Millisecond}},
	CueReject: {{freq: 140, dur: 150 * time.Millisecond}},
	CueWon:    {{freq: 523, dur: 100 * time.Millisecond}, {freq: 659, dur: 100 * time.Millisecond}, {freq: 784, dur: 200 * time.Millisecond}},
	CueLost:   {{freq: 220, dur: 200 * time.Millisecond}, {freq: 165, dur: 300 * time.Millisecond}},
}

// SoundManager plays short synthesized cues. Until Initialize succeeds every
// Play is a no-op, so the game runs silently when no audio device exists.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	played      []Cue
}

// NewSoundManager creates a silent sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Play queues a cue on the mixer
func (sm *SoundManager) Play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.played = append(sm.played, cue)
	if !sm.initialized {
		return
	}
	streamer := cueStreamer(cue)
	if streamer == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
}

// Played returns every cue requested so far, initialized or not
func (sm *SoundManager) Played() []Cue {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return append([]Cue(nil), sm.played...)
}

// Close silences the mixer and releases the speaker
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

func cueStreamer(cue Cue) beep.Streamer {
	var notes []beep.Streamer
	for _, t := range cues[cue] {
		sine, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			continue
		}
		notes = append(notes, beep.Take(sampleRate.N(t.dur), sine))
	}
	if len(notes) == 0 {
		return nil
	}
	// Pure sine at full scale is harsh
	return &effects.Gain{Streamer: beep.Seq(notes...), Gain: -0.8}
}
