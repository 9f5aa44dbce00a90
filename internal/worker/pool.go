package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockswift/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// QueueStockAlerts holds pending low-stock notifications.
	QueueStockAlerts = "jobs:stock-alerts"

	// alertDedupTTL suppresses repeat alerts for the same item. The dedup key
	// is released on send failure so a later patch can retry.
	alertDedupTTL = 24 * time.Hour
)

// StockAlertJob is enqueued when a patch drops an item's free-to-use quantity
// to or below its reorder point.
type StockAlertJob struct {
	ItemID       string `json:"item_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	FreeToUse    int    `json:"free_to_use"`
	ReorderPoint int    `json:"reorder_point"`
}

// Sender delivers a rendered alert. *infra.Mailer is the production
// implementation.
type Sender interface {
	SendAlert(to, subject, body string) error
}

// alertStore is the slice of Redis the alert pipeline needs for dedup.
type alertStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Dispatcher enqueues async jobs into a Redis list.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockAlert pushes a low-stock alert job to Redis.
func (d *Dispatcher) EnqueueStockAlert(ctx context.Context, job StockAlertJob) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueStockAlerts, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the alert queue.
// Each goroutine blocks on BRPOP — zero CPU when idle. A shared circuit
// breaker fast-fails sends while the SMTP host is down.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, sender Sender, alertEmail string, numWorkers int) {
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, sender, cb, alertEmail, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, sender Sender, cb *infra.CircuitBreaker, alertEmail string, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStockAlerts).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processAlert(ctx, rdb, sender, cb, alertEmail, result[1])
		}
	}
}

func processAlert(ctx context.Context, store alertStore, sender Sender, cb *infra.CircuitBreaker, alertEmail, raw string) {
	var job StockAlertJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal stock alert job")
		return
	}

	// One alert per item per dedup window
	dedupKey := "alerts:item:" + job.ItemID
	ok, err := store.SetNX(ctx, dedupKey, 1, alertDedupTTL).Result()
	if err != nil {
		log.Error().Err(err).Str("item_id", job.ItemID).Msg("alert dedup check failed")
		return
	}
	if !ok {
		log.Debug().Str("item_id", job.ItemID).Msg("stock alert suppressed (already sent)")
		return
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", job.Name, job.SKU)
	body := fmt.Sprintf(
		"Item %s (%s) is down to %d free-to-use units, at or below its reorder point of %d.\n",
		job.Name, job.SKU, job.FreeToUse, job.ReorderPoint,
	)

	sendErr := cb.Execute(func() error {
		return sender.SendAlert(alertEmail, subject, body)
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("item_id", job.ItemID).Str("cb_state", cb.State().String()).Msg("stock alert send failed")
		// Release the dedup key so the next low-stock patch can retry
		store.Del(ctx, dedupKey)
		return
	}
	log.Info().Str("item_id", job.ItemID).Str("sku", job.SKU).Msg("stock alert sent")
}
