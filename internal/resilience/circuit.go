// Package resilience provides bounded retry and per-host circuit breaking
// for marketplace requests.
package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/config"
)

// State is a breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned when a host's breaker rejects a call.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// BreakerConfig controls when a breaker opens and how long it stays open.
type BreakerConfig struct {
	Failures int
	Reset    time.Duration
}

// BreakerConfigFrom reads the breaker settings of the fetch section.
func BreakerConfigFrom(cfg config.FetchConfig) BreakerConfig {
	bc := BreakerConfig{Failures: 5, Reset: time.Minute}
	if cfg.BreakerFailures > 0 {
		bc.Failures = cfg.BreakerFailures
	}
	if cfg.BreakerResetSecs > 0 {
		bc.Reset = time.Duration(cfg.BreakerResetSecs) * time.Second
	}
	return bc
}

// Breaker opens after consecutive failures. Once the reset window has passed
// calls go through again half-open, and the first failure reopens it.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time

	now func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.Failures <= 0 {
		cfg.Failures = 5
	}
	if cfg.Reset <= 0 {
		cfg.Reset = time.Minute
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// Allow reports whether a call may proceed, moving an expired open breaker
// to half-open.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Reset {
			return eris.Wrapf(ErrCircuitOpen, "host %s", b.name)
		}
		b.setState(StateHalfOpen)
	}
	return nil
}

// Record feeds a call outcome into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state != StateClosed {
			b.setState(StateClosed)
		}
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.cfg.Failures {
		b.openedAt = b.now()
		if b.state != StateOpen {
			b.setState(StateOpen)
		}
	}
}

// State returns the current state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) setState(to State) {
	zap.L().Info("resilience: breaker state change",
		zap.String("host", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// Breakers holds one Breaker per host.
type Breakers struct {
	cfg BreakerConfig

	mu    sync.Mutex
	hosts map[string]*Breaker
}

// NewBreakers creates an empty registry.
func NewBreakers(cfg BreakerConfig) *Breakers {
	return &Breakers{cfg: cfg, hosts: make(map[string]*Breaker)}
}

// For returns the breaker for host, creating it on first use.
func (r *Breakers) For(host string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.hosts[host]
	if !ok {
		b = NewBreaker(host, r.cfg)
		r.hosts[host] = b
	}
	return b
}

// States snapshots every known host's state.
func (r *Breakers) States() map[string]State {
	r.mu.Lock()
	hosts := make(map[string]*Breaker, len(r.hosts))
	for k, v := range r.hosts {
		hosts[k] = v
	}
	r.mu.Unlock()

	out := make(map[string]State, len(hosts))
	for k, b := range hosts {
		out[k] = b.State()
	}
	return out
}
