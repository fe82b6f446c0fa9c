package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/realtimedto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/normalize"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

// Reconciler owns the job list of one category and keeps it consistent
// between full snapshots fetched over the data channel and incremental
// events pushed over the realtime channel.
//
// Merge rules: snapshot loads replace the list wholesale in server order;
// newly assigned jobs are prepended; updates merge in place at the same
// index; a job whose recomputed category no longer matches is removed and
// is expected to surface through the other category's own reconciliation.
type Reconciler struct {
	category model.JobCategory
	data     ports.DataChannel
	rt       ports.RealtimeChannel
	log      mylogger.Logger

	mu      sync.Mutex
	jobs    []*model.Job
	loading bool
	loaded  bool // first load completed, success or failure
	// reconnect bookkeeping: at most one resync per disconnect cycle
	disconnected bool
	resynced     bool
	// loadSeq stamps snapshot requests so a slow load finishing after a
	// newer one was applied is discarded instead of regressing the list
	loadSeq uint64

	cancels []func()
	now     func() time.Time
}

func NewReconciler(category model.JobCategory, data ports.DataChannel, rt ports.RealtimeChannel, log mylogger.Logger) *Reconciler {
	return &Reconciler{
		category: category,
		data:     data,
		rt:       rt,
		log:      log.With("category", string(category)),
		now:      time.Now,
	}
}

// Start subscribes to the realtime events and performs the initial
// snapshot load. The load error is returned but the subscriptions stay
// live either way; the caller decides whether to retry.
func (r *Reconciler) Start(ctx context.Context) error {
	r.cancels = append(r.cancels,
		r.rt.Subscribe(realtimedto.EventJobAssigned, r.handleAssigned),
		r.rt.Subscribe(realtimedto.EventJobStatusUpdated, r.handleStatusUpdate),
		r.rt.Subscribe(realtimedto.EventConnect, func(string, json.RawMessage) { r.handleConnect(ctx) }),
		r.rt.Subscribe(realtimedto.EventDisconnect, func(string, json.RawMessage) { r.handleDisconnect() }),
	)
	return r.LoadSnapshot(ctx)
}

// Close removes the realtime subscriptions.
func (r *Reconciler) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}

// Jobs returns a copy of the current list.
func (r *Reconciler) Jobs() []model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Job, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = *j
	}
	return out
}

func (r *Reconciler) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// LoadSnapshot fetches the full list for the category and replaces the
// held list in server order. The loading flag is always cleared and the
// first load is marked complete even when the fetch fails.
func (r *Reconciler) LoadSnapshot(ctx context.Context) error {
	r.mu.Lock()
	r.loadSeq++
	seq := r.loadSeq
	r.loading = true
	r.mu.Unlock()

	raws, err := r.data.FetchJobs(ctx, r.category)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.loadSeq {
		// a newer load was issued while this one was in flight
		r.log.Action("load_snapshot").Debug("stale snapshot discarded")
		return nil
	}
	r.loading = false
	r.loaded = true
	if err != nil {
		return fmt.Errorf("fetch %s snapshot: %w", r.category, err)
	}

	list := make([]*model.Job, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		job := normalize.ToJob(raw, r.category)
		if job == nil || job.ID == "" || seen[job.ID] {
			continue
		}
		seen[job.ID] = true
		list = append(list, job)
	}
	r.jobs = list
	r.log.Action("load_snapshot").Info("snapshot applied", "jobs", len(list))
	return nil
}

// handleAssigned merges a pushed job into the list: in place when the id
// is already present, at the head otherwise. Payloads that do not
// normalize, or normalize into another category, are dropped.
func (r *Reconciler) handleAssigned(_ string, payload json.RawMessage) {
	job := normalize.ToJob(payload, r.category)
	if job == nil || job.ID == "" {
		r.log.Action("job_assigned").Debug("unrecognized payload dropped")
		return
	}
	if job.Category != r.category {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexOf(job.ID); idx >= 0 {
		r.mergeAt(idx, job)
		return
	}
	r.jobs = append([]*model.Job{job}, r.jobs...)
}

// handleStatusUpdate merges an update into the matching entry. Unknown ids
// are a no-op: the job belongs to another category or was never loaded,
// and is never fetched reactively.
func (r *Reconciler) handleStatusUpdate(_ string, payload json.RawMessage) {
	update := normalize.ToJob(payload, r.category)
	if update == nil || update.ID == "" {
		r.log.Action("job_status_updated").Debug("unrecognized payload dropped")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(update.ID)
	if idx < 0 {
		return
	}
	r.mergeAt(idx, update)
}

// mergeAt merges update into the entry at idx, recomputes its category and
// removes it when the category no longer matches this list. Callers hold
// the mutex.
func (r *Reconciler) mergeAt(idx int, update *model.Job) {
	job := r.jobs[idx]
	job.Merge(update)
	job.Category = model.CategoryFor(job.Status, job.ScheduledTime, r.now())
	if job.Category != r.category {
		r.jobs = append(r.jobs[:idx], r.jobs[idx+1:]...)
		r.log.Action("job_moved").Info("job left category", "job_id", job.ID, "to", string(job.Category))
	}
}

// handleConnect runs the reconnect resynchronization protocol: reload the
// snapshot once per disconnect cycle, and never before the first load.
func (r *Reconciler) handleConnect(ctx context.Context) {
	r.mu.Lock()
	if !r.disconnected || !r.loaded || r.resynced {
		r.mu.Unlock()
		return
	}
	r.resynced = true
	r.mu.Unlock()

	go func() {
		if err := r.LoadSnapshot(ctx); err != nil {
			r.log.Action("resync").Error("resync snapshot failed", err)
		}
	}()
}

func (r *Reconciler) handleDisconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = true
	r.resynced = false
}

func (r *Reconciler) indexOf(id string) int {
	for i, j := range r.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}
