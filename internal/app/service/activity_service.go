package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ActivityRecorder writes audit entries without making the caller wait or
// fail. Implementations log their own errors.
type ActivityRecorder interface {
	Record(ctx context.Context, userID string, typ model.ActivityType)
}

const activityWriteTimeout = 5 * time.Second

func newActivity(userID string, typ model.ActivityType) *model.Activity {
	return &model.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
}

// DirectRecorder persists each activity in its own goroutine.
type DirectRecorder struct {
	repo repository.ActivityRepository
	wg   sync.WaitGroup
}

func NewDirectRecorder(repo repository.ActivityRepository) *DirectRecorder {
	return &DirectRecorder{repo: repo}
}

func (r *DirectRecorder) Record(_ context.Context, userID string, typ model.ActivityType) {
	r.persist(newActivity(userID, typ))
}

func (r *DirectRecorder) persist(a *model.Activity) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
		defer cancel()
		if err := r.repo.Create(ctx, a); err != nil {
			log.Printf("WARN: failed to record %s activity for user %s: %v", a.Type, a.UserID, err)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (r *DirectRecorder) Wait() {
	r.wg.Wait()
}

// ActivityMessage is the queue payload consumed by the activity worker.
type ActivityMessage struct {
	Activity model.Activity `json:"activity"`
	Attempts int            `json:"attempts"`
}

// QueueRecorder pushes activities onto a Redis list. When the push fails
// the activity is written directly instead.
type QueueRecorder struct {
	rdb      *redis.Client
	queue    string
	fallback *DirectRecorder
}

func NewQueueRecorder(rdb *redis.Client, queue string, fallback *DirectRecorder) *QueueRecorder {
	return &QueueRecorder{rdb: rdb, queue: queue, fallback: fallback}
}

func (r *QueueRecorder) Record(ctx context.Context, userID string, typ model.ActivityType) {
	a := newActivity(userID, typ)
	payload, err := json.Marshal(ActivityMessage{Activity: *a})
	if err != nil {
		log.Printf("ERROR: encode activity: %v", err)
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityWriteTimeout)
	defer cancel()
	if err := r.rdb.LPush(pushCtx, r.queue, payload).Err(); err != nil {
		log.Printf("WARN: activity queue unavailable, writing directly: %v", err)
		r.fallback.persist(a)
	}
}
