package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains the result queue into Postgres in batches. Losing a
// row here is acceptable only because every enqueued result also lives in
// the submitting user's store until it shows up in queries.
type ResultWorker struct {
	results *repository.ResultRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(results *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		results: results,
		rdb:     rdb,
		log:     log.With().Str("component", "result_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled. A batch flushes when
// it is full or when the oldest item has waited long enough.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.ExamResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var result model.ExamResult
			if err := json.Unmarshal([]byte(item[1]), &result); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &result)
		}
	}
}

// flushSafe writes the batch in one statement, falling back to row-by-row
// inserts so one poisoned result cannot sink its batchmates. Rows that
// still fail are requeued.
func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.ExamResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.results.BulkCreate(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("bulk insert failed, using fallback")

		for _, result := range batch {
			if err := w.results.Create(ctx, result); err != nil {
				w.log.Error().Err(err).Str("result_id", result.ID.String()).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(result)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("batch_size", len(batch)).Msg("batch persisted")
}
