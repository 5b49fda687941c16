// Package monitor implements the Realtime Proximity Monitor (C6): polls
// current drone positions and raises hysteresis-debounced ProximityAlerts.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"uavdeconfliction/internal/geo"
	"uavdeconfliction/models"
)

// DefaultPollInterval is Δ_poll.
const DefaultPollInterval = 500 * time.Millisecond

// DefaultHysteresis is the clearance ratio above buffer required to
// transition back to CLEAR.
const DefaultHysteresis = 0.10

// LiveStateSource reports the current known position of every live drone.
// Disconnected drones are simply absent from the returned map: a drone with
// no last known position is omitted rather than reported at the origin.
type LiveStateSource interface {
	CurrentPositions(ctx context.Context) (map[int64]models.Position, error)
}

// Bus fans alerts out to subscribers. Safe for concurrent use.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan models.ProximityAlert
	next int
}

// NewBus returns a ready-to-use alert Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan models.ProximityAlert)}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is buffered so a slow subscriber does
// not block alert delivery to others.
func (b *Bus) Subscribe(buffer int) (<-chan models.ProximityAlert, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan models.ProximityAlert, buffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *Bus) publish(a models.ProximityAlert) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- a:
		default:
			// Drop rather than block: a slow subscriber must not stall
			// the monitor's poll loop.
		}
	}
}

type pairKey struct{ a, b int64 }

func keyFor(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Monitor runs the polling loop and hysteresis state machine.
type Monitor struct {
	Source       LiveStateSource
	Bus          *Bus
	SafetyBuffer float64
	PollInterval time.Duration
	Hysteresis   float64
	Clock        clock.Clock

	mu     sync.Mutex
	states map[pairKey]models.ProximityState
}

// New returns a Monitor ready to Run.
func New(source LiveStateSource, bus *Bus) *Monitor {
	return &Monitor{
		Source: source,
		Bus:    bus,
		states: make(map[pairKey]models.ProximityState),
	}
}

func (m *Monitor) safetyBuffer() float64 {
	if m.SafetyBuffer <= 0 {
		return 5.0
	}
	return m.SafetyBuffer
}

func (m *Monitor) pollInterval() time.Duration {
	if m.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return m.PollInterval
}

func (m *Monitor) hysteresis() float64 {
	if m.Hysteresis <= 0 {
		return DefaultHysteresis
	}
	return m.Hysteresis
}

func (m *Monitor) clk() clock.Clock {
	if m.Clock == nil {
		return clock.New()
	}
	return m.Clock
}

// Run polls Source every PollInterval until ctx is cancelled, evaluating
// every drone pair and publishing alerts on state transitions only.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := m.clk().Ticker(m.pollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) tick(ctx context.Context) error {
	positions, err := m.Source.CurrentPositions(ctx)
	if err != nil {
		return err
	}
	now := m.clk().Now()

	ids := make([]int64, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			pa, pb := positions[a], positions[b]
			dist := geo.Distance3D(pa.X, pa.Y, pa.Z, pb.X, pb.Y, pb.Z)
			m.evaluate(a, b, dist, pa, now)
		}
	}
	return nil
}

func (m *Monitor) evaluate(a, b int64, dist float64, at models.Position, now time.Time) {
	buffer := m.safetyBuffer()
	key := keyFor(a, b)
	prev := m.states[key]
	if prev == "" {
		prev = models.ProximityClear
	}

	next := prev
	clearThreshold := buffer * (1 + m.hysteresis())

	switch {
	case dist < buffer*0.5:
		next = models.ProximityCritical
	case dist < buffer:
		if prev == models.ProximityClear {
			next = models.ProximityApproaching
		}
		// if already approaching or critical, stays (critical only
		// clears through the hysteresis threshold below).
	case dist >= clearThreshold:
		next = models.ProximityClear
	}

	if next == prev {
		return
	}
	m.states[key] = next

	severity := models.SeverityLow
	switch {
	case dist < buffer*0.5:
		severity = models.SeverityHigh
	case dist < buffer*0.75:
		severity = models.SeverityMedium
	}

	m.Bus.publish(models.ProximityAlert{
		Time:     now,
		DroneA:   a,
		DroneB:   b,
		Distance: dist,
		Position: at,
		Severity: severity,
		State:    next,
	})
}
