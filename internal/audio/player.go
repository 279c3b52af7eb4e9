// Package audio keeps at most one text-to-speech playback alive per session.
package audio

import (
	"context"
	"errors"
	"sync"

	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusError    Status = "error"
)

var ErrNoAudio = errors.New("question has no audio")

// Service is the playback backend. Play returns once playback has been
// started; progress is reported through onStatus, possibly from another
// goroutine and possibly before Play returns.
type Service interface {
	Play(ctx context.Context, ref string, onStatus func(Status)) error
	Stop(ctx context.Context) error
}

// Player serializes Play and Stop so a new playback always stops the
// current one first.
type Player struct {
	service Service
	logger  utils.Logger

	mu sync.Mutex

	statusMu   sync.Mutex
	generation uint64
	current    string
	status     Status
}

func NewPlayer(service Service, logger utils.Logger) *Player {
	return &Player{service: service, logger: logger, status: StatusIdle}
}

func (p *Player) Play(ctx context.Context, ref string) error {
	if ref == "" {
		return ErrNoAudio
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.stopLocked(ctx); err != nil {
		return err
	}

	gen := p.setCurrent(ref, StatusPlaying)
	if err := p.service.Play(ctx, ref, p.statusCallback(gen)); err != nil {
		p.setStatus(gen, StatusError)
		p.logger.WarnContext(ctx, "Audio playback failed", "ref", ref, "error", err)
		return err
	}
	return nil
}

// Stop ends the current playback, if any.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(ctx)
}

// Current returns the reference and status of the latest playback.
func (p *Player) Current() (string, Status) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.current, p.status
}

func (p *Player) stopLocked(ctx context.Context) error {
	if _, status := p.Current(); status != StatusPlaying {
		return nil
	}
	if err := p.service.Stop(ctx); err != nil {
		return err
	}
	p.setCurrent("", StatusIdle)
	return nil
}

func (p *Player) setCurrent(ref string, status Status) uint64 {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.generation++
	p.current = ref
	p.status = status
	return p.generation
}

// statusCallback drops reports from playbacks that have since been replaced.
func (p *Player) statusCallback(gen uint64) func(Status) {
	return func(status Status) {
		p.setStatus(gen, status)
	}
}

func (p *Player) setStatus(gen uint64, status Status) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if gen == p.generation {
		p.status = status
	}
}
