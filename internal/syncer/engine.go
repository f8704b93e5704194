// Package syncer drains the sync queue against the remote system of record.
// Sync is opportunistic and best-effort: a failed entry stays queued, a
// failed drain is retried on the next trigger, and nothing here is ever
// surfaced as a hard failure to the operator.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"washpos/internal/apperror"
	"washpos/internal/connectivity"
	"washpos/internal/dto"
	"washpos/internal/gateway"
	"washpos/internal/infra"
	"washpos/internal/model"
	"washpos/internal/store"

	"github.com/rs/zerolog/log"
)

// refreshWindow: refresh the access token before a drain when it expires
// within this window, so a long drain doesn't die on mid-flight 401s.
const refreshWindow = 2 * time.Minute

var errUnsupported = errors.New("unsupported queue entry")

// Engine reconciles the local queue with the remote API.
type Engine struct {
	store   store.Store
	gw      gateway.Gateway
	tokens  gateway.TokenStore
	monitor *connectivity.Monitor
	cb      *infra.CircuitBreaker

	// draining gates the single in-flight drain; buffered size 1 used as a
	// try-lock so a drain runs to completion before the next may start.
	draining chan struct{}
}

func New(st store.Store, gw gateway.Gateway, tokens gateway.TokenStore, monitor *connectivity.Monitor, cb *infra.CircuitBreaker) *Engine {
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	return &Engine{
		store:    st,
		gw:       gw,
		tokens:   tokens,
		monitor:  monitor,
		cb:       cb,
		draining: make(chan struct{}, 1),
	}
}

// Run subscribes to connectivity transitions and attempts one drain per
// offline→online transition. It blocks until ctx is cancelled; callers run it
// in its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	ch, cancel := e.monitor.Subscribe()
	defer cancel()

	log.Info().Msg("syncer: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("syncer: shutting down")
			return
		case online, ok := <-ch:
			if !ok {
				return
			}
			if online {
				// Single attempt per transition — no retry loop.
				_ = e.ForceSync(ctx)
			}
		}
	}
}

// ForceSync attempts a full drain. Offline it is a no-op, not an error; while
// another drain is in flight it returns immediately. The returned error is
// only a storage fault reading the queue — per-entry remote failures are
// swallowed into "entry remains queued".
func (e *Engine) ForceSync(ctx context.Context) error {
	if !e.monitor.IsOnline() {
		log.Debug().Msg("syncer: offline, skipping drain")
		return nil
	}

	select {
	case e.draining <- struct{}{}:
	default:
		log.Debug().Msg("syncer: drain already in progress")
		return nil
	}
	defer func() { <-e.draining }()

	snapshot, err := e.store.QueueSnapshot(ctx)
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return nil
	}

	e.refreshTokenIfStale(ctx)

	log.Info().Int("pending", len(snapshot)).Msg("syncer: drain started")

	var synced, failed, skipped int
	aborted := false

drain:
	for _, entry := range snapshot {
		if e.cb.State() == infra.CBOpen {
			log.Warn().Msg("syncer: circuit breaker open, ending drain early")
			aborted = true
			break
		}

		err := e.processEntry(ctx, entry)
		switch {
		case err == nil:
			synced++
		case errors.Is(err, errUnsupported):
			skipped++
			log.Warn().
				Str("entry", entry.ID).
				Str("entity", entry.EntityType).
				Str("action", entry.Action).
				Msg("syncer: unsupported entry, leaving queued")
		default:
			failed++
			log.Error().Err(err).Str("entry", entry.ID).Msg("syncer: entry failed, leaving queued")

			var remote *apperror.RemoteError
			if errors.As(err, &remote) && remote.Kind == apperror.RemoteAuth {
				// Token is gone until re-authentication — every further
				// entry would fail the same way. Entries stay queued.
				log.Warn().Msg("syncer: auth rejected, ending drain early")
				aborted = true
				break drain
			}
		}
	}

	if failed == 0 && skipped == 0 && !aborted {
		// Clear only when nothing was enqueued concurrently during the
		// drain: the queue must hold exactly the snapshot we just drained.
		pending, err := e.store.PendingCount(ctx)
		if err == nil && pending == 0 {
			_ = e.store.ClearQueue(ctx)
			now := time.Now().UTC()
			_ = e.store.SetValue(ctx, model.KeyLastSync, now.Format(time.RFC3339))
		}
	}

	log.Info().
		Int("synced", synced).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("syncer: drain finished")
	return nil
}

// processEntry pushes one queue entry to the remote and, on confirmed
// acceptance, marks the originating record synced and removes the entry.
// Mark happens before remove: a crash in between re-sends an idempotent
// create/update on the next drain instead of losing the synced flag.
func (e *Engine) processEntry(ctx context.Context, entry model.SyncEntry) error {
	switch {
	case entry.EntityType == model.EntityCustomer && entry.Action == model.ActionCreate,
		entry.EntityType == model.EntityCustomer && entry.Action == model.ActionUpdate:
		var customer model.Customer
		if err := json.Unmarshal(entry.Payload, &customer); err != nil {
			return err
		}
		err := e.cb.Execute(func() error {
			var callErr error
			if entry.Action == model.ActionCreate {
				_, callErr = e.gw.CreateCustomer(ctx, &customer)
			} else {
				_, callErr = e.gw.UpdateCustomer(ctx, customer.ID, &customer)
			}
			return callErr
		})
		if err != nil {
			return err
		}
		if err := e.store.MarkCustomerSynced(ctx, customer.ID); err != nil {
			return err
		}
		return e.store.RemoveEntry(ctx, entry.ID)

	case entry.EntityType == model.EntitySale && entry.Action == model.ActionCreate:
		var sale model.Sale
		if err := json.Unmarshal(entry.Payload, &sale); err != nil {
			return err
		}
		err := e.cb.Execute(func() error {
			_, callErr := e.gw.CreateSale(ctx, &sale)
			return callErr
		})
		if err != nil {
			return err
		}
		if err := e.store.MarkSaleSynced(ctx, sale.ID); err != nil {
			return err
		}
		return e.store.RemoveEntry(ctx, entry.ID)

	default:
		// sale update/delete and customer delete have no remote path yet.
		return errUnsupported
	}
}

// refreshTokenIfStale renews the access token when it is about to expire.
// Best-effort: a failed refresh just means entries fail with auth errors and
// stay queued.
func (e *Engine) refreshTokenIfStale(ctx context.Context) {
	token, err := e.tokens.Token(ctx)
	if err != nil || token == "" {
		return
	}
	if !gateway.TokenExpiresWithin(token, refreshWindow) {
		return
	}
	if _, err := e.gw.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("syncer: token refresh failed")
	}
}

// Status reports what the pending-sync indicator shows: reachability, queued
// entry count, and the last fully successful drain.
func (e *Engine) Status(ctx context.Context) (*dto.SyncStatus, error) {
	pending, err := e.store.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	status := &dto.SyncStatus{
		IsOnline:    e.monitor.IsOnline(),
		PendingSync: int(pending),
	}
	if raw, err := e.store.GetValue(ctx, model.KeyLastSync); err == nil && raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			status.LastSync = &ts
		}
	}
	return status, nil
}
