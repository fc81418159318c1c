package game

import (
	"log"
	"sync"
	"time"
)

// Loop drives a Match at a fixed tick rate. It measures the real elapsed
// time between ticks (monotonic, via time.Since) instead of assuming
// 1/tickRate, so a stalled scheduler slows the simulation rather than
// desyncing it. One Loop per Match; matches are independent, so concurrent
// rooms each run their own Loop.
type Loop struct {
	match    *Match
	tickRate int

	mu       sync.Mutex
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	running  bool

	// OnTick runs after each tick with the fresh snapshot and the tick's
	// processing duration. Used for broadcast and metrics; must not block.
	OnTick func(snap MatchSnapshot, elapsed time.Duration)
}

// NewLoop creates a stopped loop for the given match.
func NewLoop(match *Match, tickRate int) *Loop {
	if tickRate <= 0 {
		tickRate = DefaultMatchConfig().TickRate
	}
	return &Loop{
		match:    match,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the tick goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.ticker = time.NewTicker(time.Second / time.Duration(l.tickRate))

	go func() {
		defer close(l.done)
		last := time.Now()

		for {
			select {
			case <-l.ticker.C:
				dt := time.Since(last).Seconds()
				last = time.Now()

				l.match.Advance(dt)

				if l.OnTick != nil {
					l.OnTick(l.match.Snapshot(), time.Since(last))
				}

			case <-l.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Match loop started at %d TPS", l.tickRate)
}

// Stop halts the loop and waits for the in-flight tick to finish, so
// teardown never observes a partially-mutated match.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	l.ticker.Stop()
	close(l.stopChan)
	<-l.done
	log.Println("🛑 Match loop stopped")
}
