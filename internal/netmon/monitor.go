package netmon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"roombooker/internal/models"

	"github.com/rs/zerolog"
)

// Probe checks reachability of the remote endpoint. A nil error means online.
type Probe func(ctx context.Context) error

// ErrProbeMisconfigured marks probe failures that say nothing about
// connectivity: the probe itself cannot run and will fail every interval.
// The monitor reports these as NetworkError instead of offline.
var ErrProbeMisconfigured = errors.New("probe misconfigured")

// DialProbe probes by opening a TCP connection to the host of baseURL.
func DialProbe(baseURL string, timeout time.Duration) Probe {
	return func(ctx context.Context) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("%w: parse base url: %v", ErrProbeMisconfigured, err)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: base url %q has no host", ErrProbeMisconfigured, baseURL)
		}
		host := u.Host
		if u.Port() == "" {
			switch u.Scheme {
			case "https":
				host = net.JoinHostPort(u.Hostname(), "443")
			default:
				host = net.JoinHostPort(u.Hostname(), "80")
			}
		}
		var d net.Dialer
		d.Timeout = timeout
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// Monitor observes connectivity and fans state transitions out to
// subscribers. Consecutive identical states are not re-emitted.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *zerolog.Logger

	mu     sync.Mutex
	state  models.NetworkState
	subs   map[int]chan models.NetworkState
	nextID int
}

func NewMonitor(probe Probe, interval time.Duration, logger *zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Duration(models.DefaultProbeIntervalSeconds) * time.Second
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logger,
		state:    models.NetworkStateUnavailable(),
		subs:     make(map[int]chan models.NetworkState),
	}
}

// Start runs the probe loop until ctx is done. The first probe fires
// immediately so the initial state is not a full interval stale.
func (m *Monitor) Start(ctx context.Context) {
	m.probeOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(ctx)
		}
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	if m.probe == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	if err := m.probe(probeCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrProbeMisconfigured) {
			m.SetState(models.NetworkStateError(err.Error()))
			return
		}
		m.SetState(models.NetworkStateUnavailable())
		return
	}
	m.SetState(models.NetworkStateAvailable())
}

// CurrentState returns the last observed state.
func (m *Monitor) CurrentState() models.NetworkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Online reports whether remote calls are currently allowed.
func (m *Monitor) Online() bool {
	return m.CurrentState().Online()
}

// SetState records a state observation and notifies subscribers on change.
// Platform connectivity callbacks and tests push through here.
func (m *Monitor) SetState(state models.NetworkState) {
	m.mu.Lock()
	if m.state == state {
		m.mu.Unlock()
		return
	}
	m.state = state
	subs := make([]chan models.NetworkState, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Debug().Str("network_state", state.Status).Msg("Network state changed")
	}

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
			// Slow subscriber keeps only the states it managed to read.
		}
	}
}

// Subscribe returns a channel that first carries the current state and then
// every transition. The cancel func releases the subscription; it is safe to
// call more than once.
func (m *Monitor) Subscribe() (<-chan models.NetworkState, func()) {
	ch := make(chan models.NetworkState, 16)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.state
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
	return ch, cancel
}
