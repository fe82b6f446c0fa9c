package services

import (
	"context"
	"sync"
	"time"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/dto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

type IntervalMode int

const (
	ModeNormal IntervalMode = iota
	ModeHighFrequency
)

func (m IntervalMode) String() string {
	if m == ModeHighFrequency {
		return "HIGH_FREQUENCY"
	}
	return "NORMAL"
}

const (
	defaultNormalInterval        = 30 * time.Second
	defaultHighFrequencyInterval = 10 * time.Second
)

// TelemetryScheduler pushes the device position over the data channel on a
// repeating timer. It is a two-state machine, STOPPED or RUNNING in one of
// two interval modes; the timer goroutine is exclusively owned and torn
// down before a new one starts, so two timers never run concurrently.
// Sends are best effort: a failure is logged and the timer keeps going.
type TelemetryScheduler struct {
	data ports.DataChannel
	auth ports.AuthProvider
	loc  ports.LocationSource
	log  mylogger.Logger

	normalEvery time.Duration
	highEvery   time.Duration

	mu         sync.Mutex
	mode       IntervalMode
	running    bool
	background bool
	stop       chan struct{}
}

func NewTelemetryScheduler(data ports.DataChannel, auth ports.AuthProvider, loc ports.LocationSource, log mylogger.Logger, normalEvery, highEvery time.Duration) *TelemetryScheduler {
	if normalEvery <= 0 {
		normalEvery = defaultNormalInterval
	}
	if highEvery <= 0 {
		highEvery = defaultHighFrequencyInterval
	}
	return &TelemetryScheduler{
		data:        data,
		auth:        auth,
		loc:         loc,
		log:         log,
		normalEvery: normalEvery,
		highEvery:   highEvery,
	}
}

// Start enters RUNNING in the configured mode: one immediate send, then a
// repeating send at the mode's interval. Requires authentication and
// location permission.
func (t *TelemetryScheduler) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}
	if !t.auth.IsAuthenticated() {
		return myerrors.ErrNotAuthenticated
	}
	if !t.loc.Permitted() {
		return myerrors.ErrLocationPermission
	}
	t.startLocked(ctx, true)
	return nil
}

// Stop leaves RUNNING. The configured mode is kept for the next Start.
func (t *TelemetryScheduler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// SetMode switches the interval mode. While RUNNING the timer is replaced
// with one at the new interval; the switch itself does not fire a send.
func (t *TelemetryScheduler) SetMode(ctx context.Context, mode IntervalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == mode {
		return
	}
	t.mode = mode
	if t.running {
		t.stopLocked()
		t.startLocked(ctx, false)
	}
}

// OnBackground stops the timer without losing the configured mode.
func (t *TelemetryScheduler) OnBackground() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.background = true
	t.stopLocked()
}

// OnForeground restarts in the previously configured mode when still
// authenticated and permitted.
func (t *TelemetryScheduler) OnForeground(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.background = false
	if !t.running && t.auth.IsAuthenticated() && t.loc.Permitted() {
		t.startLocked(ctx, true)
	}
}

// Recheck re-reads authentication and permission state. Loss of either
// forces STOPPED; regaining both resumes only through this explicit check
// (or a Start/OnForeground call), never on its own.
func (t *TelemetryScheduler) Recheck(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ok := t.auth.IsAuthenticated() && t.loc.Permitted()
	switch {
	case t.running && !ok:
		t.stopLocked()
	case !t.running && ok && !t.background:
		t.startLocked(ctx, true)
	}
}

func (t *TelemetryScheduler) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *TelemetryScheduler) Mode() IntervalMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func (t *TelemetryScheduler) startLocked(ctx context.Context, immediate bool) {
	stop := make(chan struct{})
	t.stop = stop
	t.running = true
	every := t.normalEvery
	if t.mode == ModeHighFrequency {
		every = t.highEvery
	}
	t.log.Action("telemetry_started").Info("location timer started", "mode", t.mode.String(), "interval", every.String())
	go t.run(ctx, stop, every, immediate)
}

// stopLocked clears the owned timer. Safe to call when already stopped.
func (t *TelemetryScheduler) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.running = false
}

func (t *TelemetryScheduler) run(ctx context.Context, stop chan struct{}, every time.Duration, immediate bool) {
	if immediate {
		t.send(ctx)
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			t.mu.Lock()
			if t.stop == stop {
				t.stop = nil
				t.running = false
			}
			t.mu.Unlock()
			return
		case <-ticker.C:
			t.send(ctx)
		}
	}
}

func (t *TelemetryScheduler) send(ctx context.Context) {
	coords, err := t.loc.Current()
	if err != nil {
		t.log.Action("telemetry_send").Warn("location unavailable", "reason", err.Error())
		return
	}
	if !coords.Valid() {
		return
	}
	err = t.data.PostLocation(ctx, dto.LocationRequest{
		Latitude:  coords.Lat,
		Longitude: coords.Lng,
	})
	if err != nil {
		// best effort, the timer keeps running
		t.log.Action("telemetry_send").Error("location push failed", err)
	}
}
