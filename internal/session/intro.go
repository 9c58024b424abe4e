package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs f once after d. time.AfterFunc satisfies it via TimerScheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on the runtime timer.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// IntroGate shows the intro once per session. The first render of an unseen
// session schedules the NotShown -> Shown transition instead of sleeping in
// the request; renders before the timer fires keep showing the intro.
type IntroGate struct {
	duration  time.Duration
	scheduler Scheduler

	mu      sync.Mutex
	pending map[string]bool
}

func NewIntroGate(duration time.Duration, scheduler Scheduler) *IntroGate {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if duration < 0 {
		duration = 0
	}
	return &IntroGate{
		duration:  duration,
		scheduler: scheduler,
		pending:   make(map[string]bool),
	}
}

// Duration is how long the intro stays up before the page refreshes.
func (g *IntroGate) Duration() time.Duration {
	return g.duration
}

// Enter reports whether this render pass must show the intro.
func (g *IntroGate) Enter(ctx context.Context, sess *Session) (bool, error) {
	seen, err := sess.HasSeenIntro(ctx)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pending[sess.ID()] {
		g.pending[sess.ID()] = true
		g.scheduler.AfterFunc(g.duration, func() { g.complete(sess) })
	}
	return true, nil
}

// Pending reports whether a transition is scheduled for the session.
func (g *IntroGate) Pending(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[sessionID]
}

func (g *IntroGate) complete(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sess.MarkIntroSeen(ctx); err != nil {
		// left pending=false so the next render schedules again
		log.Printf("[intro] failed to mark session %s: %v", sess.ID(), err)
	}

	g.mu.Lock()
	delete(g.pending, sess.ID())
	g.mu.Unlock()
}
