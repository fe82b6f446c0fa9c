package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/dto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/services"
)

type countingData struct {
	fakeData
	posts atomic.Int32
	fail  atomic.Bool
}

func (c *countingData) PostLocation(context.Context, dto.LocationRequest) error {
	c.posts.Add(1)
	if c.fail.Load() {
		return assert.AnError
	}
	return nil
}

type fakeAuth struct {
	mu sync.Mutex
	ok bool
}

func (f *fakeAuth) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ok
}

func (f *fakeAuth) Token() (string, error) {
	if !f.IsAuthenticated() {
		return "", myerrors.ErrNotAuthenticated
	}
	return "token", nil
}

func (f *fakeAuth) set(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok = ok
}

type fakeLocation struct {
	mu        sync.Mutex
	permitted bool
}

func (f *fakeLocation) Permitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permitted
}

func (f *fakeLocation) Current() (model.Coordinates, error) {
	if !f.Permitted() {
		return model.Coordinates{}, myerrors.ErrLocationPermission
	}
	return model.Coordinates{Lat: 43.236, Lng: 76.886}, nil
}

func (f *fakeLocation) set(permitted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permitted = permitted
}

func newScheduler(t *testing.T, normal, high time.Duration) (*services.TelemetryScheduler, *countingData, *fakeAuth, *fakeLocation) {
	t.Helper()
	data := &countingData{}
	auth := &fakeAuth{ok: true}
	loc := &fakeLocation{permitted: true}
	sched := services.NewTelemetryScheduler(data, auth, loc, testLogger(t), normal, high)
	return sched, data, auth, loc
}

// settled reads the post counter after in-flight sends have drained.
func settled(data *countingData) int32 {
	time.Sleep(50 * time.Millisecond)
	return data.posts.Load()
}

func TestStartSendsImmediatelyThenRepeats(t *testing.T) {
	sched, data, _, _ := newScheduler(t, 30*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	require.Eventually(t, func() bool { return data.posts.Load() >= 3 },
		time.Second, 5*time.Millisecond, "immediate send plus repeating sends")
	assert.True(t, sched.Running())
}

func TestStartRequiresAuthentication(t *testing.T) {
	sched, _, auth, _ := newScheduler(t, time.Hour, time.Hour)
	auth.set(false)

	require.ErrorIs(t, sched.Start(context.Background()), myerrors.ErrNotAuthenticated)
	assert.False(t, sched.Running())
}

func TestStartRequiresLocationPermission(t *testing.T) {
	sched, _, _, loc := newScheduler(t, time.Hour, time.Hour)
	loc.set(false)

	require.ErrorIs(t, sched.Start(context.Background()), myerrors.ErrLocationPermission)
	assert.False(t, sched.Running())
}

func TestStopHaltsSends(t *testing.T) {
	sched, data, _, _ := newScheduler(t, 10*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, sched.Start(context.Background()))
	require.Eventually(t, func() bool { return data.posts.Load() >= 2 }, time.Second, 5*time.Millisecond)

	sched.Stop()
	assert.False(t, sched.Running())
	before := settled(data)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, data.posts.Load())
}

func TestSetModeReplacesTimerWithoutOverlap(t *testing.T) {
	sched, data, _, _ := newScheduler(t, time.Hour, 20*time.Millisecond)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	// NORMAL is an hour long, so only the immediate send lands
	assert.Equal(t, int32(1), settled(data))

	sched.SetMode(context.Background(), services.ModeHighFrequency)
	require.Eventually(t, func() bool { return data.posts.Load() >= 4 },
		time.Second, 5*time.Millisecond, "high-frequency timer took over")

	// switching back replaces the fast timer; if it leaked, the count
	// would keep climbing
	sched.SetMode(context.Background(), services.ModeNormal)
	before := settled(data)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, before, data.posts.Load(), "exactly one timer may be active")
	assert.True(t, sched.Running())
}

func TestBackgroundStopsForegroundResumes(t *testing.T) {
	sched, data, _, _ := newScheduler(t, time.Hour, time.Hour)
	sched.SetMode(context.Background(), services.ModeHighFrequency)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	sched.OnBackground()
	assert.False(t, sched.Running())
	assert.Equal(t, services.ModeHighFrequency, sched.Mode(), "mode survives backgrounding")

	before := settled(data)
	sched.OnForeground(context.Background())
	assert.True(t, sched.Running())
	require.Eventually(t, func() bool { return data.posts.Load() > before },
		time.Second, 5*time.Millisecond, "foregrounding sends immediately")
}

func TestForegroundDoesNotResumeWithoutAuth(t *testing.T) {
	sched, _, auth, _ := newScheduler(t, time.Hour, time.Hour)
	require.NoError(t, sched.Start(context.Background()))
	sched.OnBackground()

	auth.set(false)
	sched.OnForeground(context.Background())
	assert.False(t, sched.Running())
}

func TestRecheckStopsOnRevocationAndResumesOnRegain(t *testing.T) {
	sched, _, _, loc := newScheduler(t, time.Hour, time.Hour)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	loc.set(false)
	sched.Recheck(context.Background())
	assert.False(t, sched.Running())

	// nothing resumes on its own
	time.Sleep(50 * time.Millisecond)
	assert.False(t, sched.Running())

	loc.set(true)
	sched.Recheck(context.Background())
	assert.True(t, sched.Running())
}

func TestRecheckDoesNotResumeWhileBackgrounded(t *testing.T) {
	sched, _, _, _ := newScheduler(t, time.Hour, time.Hour)
	require.NoError(t, sched.Start(context.Background()))
	sched.OnBackground()

	sched.Recheck(context.Background())
	assert.False(t, sched.Running(), "backgrounded scheduler stays stopped")
}

func TestSendFailureDoesNotStopTimer(t *testing.T) {
	sched, data, _, _ := newScheduler(t, 10*time.Millisecond, 10*time.Millisecond)
	data.fail.Store(true)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	require.Eventually(t, func() bool { return data.posts.Load() >= 3 },
		time.Second, 5*time.Millisecond, "failures are best effort")
	assert.True(t, sched.Running())
}
