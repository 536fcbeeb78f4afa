package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// MaintenanceWorker prunes stale in-progress markers on a cron schedule.
// Markers carry their own TTL, but markers written by crashed processes can
// survive restarts with the TTL intact; the sweep removes any marker whose
// start time is older than maxAge.
type MaintenanceWorker struct {
	rdb    *redis.Client
	cron   *cron.Cron
	spec   string
	maxAge time.Duration
	log    zerolog.Logger
}

// NewMaintenanceWorker creates a new MaintenanceWorker.
func NewMaintenanceWorker(rdb *redis.Client, spec string, maxAge time.Duration, log zerolog.Logger) *MaintenanceWorker {
	return &MaintenanceWorker{
		rdb:    rdb,
		cron:   cron.New(),
		spec:   spec,
		maxAge: maxAge,
		log:    log.With().Str("component", "maintenance_worker").Logger(),
	}
}

// Start schedules the sweep. Returns an error only for an invalid spec.
func (w *MaintenanceWorker) Start() error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.sweep(context.Background())
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info().Str("schedule", w.spec).Msg("MaintenanceWorker started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *MaintenanceWorker) Stop() {
	<-w.cron.Stop().Done()
}

type markerPayload struct {
	StartedAt time.Time `json:"started_at"`
}

func (w *MaintenanceWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)
	removed := 0

	iter := w.rdb.Scan(ctx, 0, "user:*:exam:*:in_progress", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := w.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var marker markerPayload
		if err := json.Unmarshal([]byte(raw), &marker); err != nil || marker.StartedAt.Before(cutoff) {
			if w.rdb.Del(ctx, key).Err() == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		w.log.Error().Err(err).Msg("marker sweep scan failed")
		return
	}

	w.log.Info().Int("removed", removed).Msg("stale marker sweep complete")
}
