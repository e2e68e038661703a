package render

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const pulseFrame = 16 * time.Millisecond

// AnimationClock drives the focus pulse. Its own loop is the only writer;
// paint reads Phase and never restarts or resets it, so re-renders elsewhere
// do not desynchronize the animation.
type AnimationClock struct {
	period time.Duration
	frame  time.Duration
	now    func() time.Time

	elapsed atomic.Int64
	frames  atomic.Int64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	onFrame func()
}

// NewAnimationClock creates a stopped clock with one pulse per period
func NewAnimationClock(period time.Duration) *AnimationClock {
	if period <= 0 {
		period = 1500 * time.Millisecond
	}
	return &AnimationClock{period: period, frame: pulseFrame, now: time.Now}
}

// OnFrame registers a callback run by the clock loop after every advance,
// typically a repaint request. Set it before Start.
func (c *AnimationClock) OnFrame(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFrame = fn
}

// Start launches the loop. Starting a running clock is a no-op.
func (c *AnimationClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(c.stop, c.done, c.onFrame)
}

// Stop halts the loop and waits for it to exit. The phase is kept.
func (c *AnimationClock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether the loop is active
func (c *AnimationClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Phase returns the pulse position in [0,1)
func (c *AnimationClock) Phase() float64 {
	e := time.Duration(c.elapsed.Load())
	return float64(e%c.period) / float64(c.period)
}

// Frames returns how many times the loop has advanced
func (c *AnimationClock) Frames() int64 {
	return c.frames.Load()
}

func (c *AnimationClock) loop(stop, done chan struct{}, onFrame func()) {
	defer close(done)
	ticker := time.NewTicker(c.frame)
	defer ticker.Stop()

	last := c.now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := c.now()
			c.advance(now.Sub(last))
			last = now
			if onFrame != nil {
				onFrame()
			}
		}
	}
}

func (c *AnimationClock) advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.elapsed.Add(int64(d))
	c.frames.Add(1)
}

// PulseRing returns the ring radius growth factor and opacity for a phase:
// the ring expands from the node edge and fades out over one period
func PulseRing(phase float64) (scale, alpha float64) {
	phase = phase - math.Floor(phase)
	return 1 + 0.8*phase, 0.6 * (1 - phase)
}
