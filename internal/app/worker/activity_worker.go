package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"lexora/internal/app/service"
	"lexora/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const (
	maxAttempts  = 3
	popTimeout   = 5 * time.Second
	writeTimeout = 5 * time.Second
)

// ActivityWorker drains the activity queue filled by service.QueueRecorder
// and writes each entry to the activity repository.
type ActivityWorker struct {
	rdb   *redis.Client
	repo  repository.ActivityRepository
	queue string
}

func NewActivityWorker(rdb *redis.Client, repo repository.ActivityRepository, queue string) *ActivityWorker {
	return &ActivityWorker{rdb: rdb, repo: repo, queue: queue}
}

// Start blocks until ctx is cancelled.
func (w *ActivityWorker) Start(ctx context.Context) {
	log.Println("Activity worker started, listening to queue:", w.queue)
	for {
		select {
		case <-ctx.Done():
			log.Println("Activity worker stopping...")
			return
		default:
		}

		res, err := w.rdb.BRPop(ctx, popTimeout, w.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", w.queue, err)
			sleep(ctx, 5*time.Second)
			continue
		}
		// res is [queueName, value]
		if len(res) < 2 || res[1] == "" {
			log.Println("WARN: BRPop returned an empty payload.")
			continue
		}

		retry, err := w.process(ctx, res[1])
		if err != nil {
			log.Printf("ERROR: %v", err)
		}
		if retry != nil {
			w.requeue(ctx, retry)
		}
	}
}

// process persists one queued activity. When the write fails and attempts
// remain, it returns the payload to push back onto the queue.
func (w *ActivityWorker) process(ctx context.Context, payload string) ([]byte, error) {
	var msg service.ActivityMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, fmt.Errorf("dropping malformed activity message: %w", err)
	}
	if msg.Activity.ID == "" || msg.Activity.UserID == "" || !msg.Activity.Type.Valid() {
		return nil, fmt.Errorf("dropping invalid activity message %q", payload)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	err := w.repo.Create(writeCtx, &msg.Activity)
	if err == nil {
		return nil, nil
	}

	msg.Attempts++
	if msg.Attempts >= maxAttempts {
		return nil, fmt.Errorf("giving up on activity %s after %d attempts: %w", msg.Activity.ID, msg.Attempts, err)
	}
	retry, mErr := json.Marshal(msg)
	if mErr != nil {
		return nil, fmt.Errorf("failed to re-encode activity %s: %w", msg.Activity.ID, mErr)
	}
	return retry, fmt.Errorf("failed to store activity %s (attempt %d): %w", msg.Activity.ID, msg.Attempts, err)
}

func (w *ActivityWorker) requeue(ctx context.Context, payload []byte) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := w.rdb.RPush(pushCtx, w.queue, payload).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue activity: %v", err)
		return
	}
	log.Println("INFO: Activity re-queued.")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
