// Package status tracks whether the backend is reachable.
package status

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/neuroai/neurochat/internal/models"
)

// DefaultInterval is the ping period
const DefaultInterval = 5 * time.Second

// Status is the backend reachability shown in the UI
type Status int

const (
	Unknown Status = iota
	Online
	Offline
)

// Indicator colors
var (
	ColorOnline  = lipgloss.Color("#8fffd4")
	ColorOffline = lipgloss.Color("#ff99aa")
	ColorUnknown = lipgloss.Color("#565f89")
)

func (s Status) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "checking"
	}
}

// Color returns the indicator color for s
func (s Status) Color() lipgloss.Color {
	switch s {
	case Online:
		return ColorOnline
	case Offline:
		return ColorOffline
	default:
		return ColorUnknown
	}
}

// Pinger is the part of the backend client the poller needs
type Pinger interface {
	Ping(ctx context.Context) (*models.PingResult, error)
}

// Result is the outcome of one check
type Result struct {
	Status    Status
	ModelMode string
	Err       error
	At        time.Time
}

// Check pings once. Any error means Offline.
func Check(ctx context.Context, p Pinger) Result {
	res, err := p.Ping(ctx)
	r := Result{At: time.Now()}
	if err != nil || res == nil || !res.Online {
		r.Status = Offline
		r.Err = err
		return r
	}
	r.Status = Online
	r.ModelMode = res.ModelMode
	return r
}

// CheckWithin is Check bounded by timeout. A ping still running at the
// deadline counts as Offline. A non-positive timeout means no bound.
func CheckWithin(ctx context.Context, p Pinger, timeout time.Duration) Result {
	if timeout <= 0 {
		return Check(ctx, p)
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Check(pctx, p)
}

// Poller pings on a fixed interval until its context ends. It never backs off.
type Poller struct {
	Pinger   Pinger
	Interval time.Duration
	// OnResult is called after every check.
	OnResult func(Result)
	// OnChange is called when the status differs from the previous check.
	OnChange func(prev, next Status)
	Logger   zerolog.Logger

	last Status
}

// NewPoller returns a Poller with the default interval
func NewPoller(p Pinger) *Poller {
	return &Poller{
		Pinger:   p,
		Interval: DefaultInterval,
		Logger:   zerolog.Nop(),
	}
}

// Last returns the status of the most recent check
func (p *Poller) Last() Status {
	return p.last
}

// Run checks immediately, then every Interval, until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.poll(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.poll(ctx, interval)
		}
	}
}

// poll runs one check. A ping never outlives the interval, so one hung
// request cannot stall the loop.
func (p *Poller) poll(ctx context.Context, interval time.Duration) {
	r := CheckWithin(ctx, p.Pinger, interval)
	if ctx.Err() != nil {
		return
	}

	prev := p.last
	p.last = r.Status

	if r.Err != nil {
		p.Logger.Debug().Err(r.Err).Msg("backend ping failed")
	}
	if prev != r.Status {
		p.Logger.Info().Str("from", prev.String()).Str("to", r.Status.String()).Msg("backend status changed")
		if p.OnChange != nil {
			p.OnChange(prev, r.Status)
		}
	}
	if p.OnResult != nil {
		p.OnResult(r)
	}
}
