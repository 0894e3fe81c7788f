package jobs

import (
	"context"
	"time"

	"cropadvisor/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// KeyRefresher is implemented by identity providers that verify tokens
// against published signing keys.
type KeyRefresher interface {
	RefreshKeys(ctx context.Context) error
}

// JWKSRefreshJob keeps the signing key cache warm so request handling does
// not pay for a key fetch after the cache expires.
type JWKSRefreshJob struct {
	refresher KeyRefresher
	schedule  services.Schedule
	timeout   time.Duration
	log       logger.Logger
}

func NewJWKSRefreshJob(refresher KeyRefresher, schedule services.Schedule) *JWKSRefreshJob {
	return &JWKSRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		timeout:   30 * time.Second,
		log:       logger.New("JWKSRefreshJob"),
	}
}

func (j *JWKSRefreshJob) Name() string {
	return "JWKSRefresh"
}

func (j *JWKSRefreshJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *JWKSRefreshJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if err := j.refresher.RefreshKeys(ctx); err != nil {
		return log.Err("failed to refresh signing keys", err)
	}

	log.Debug("Signing keys refreshed")
	return nil
}
