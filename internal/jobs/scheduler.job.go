package jobs

import (
	"cropadvisor/config"
	"cropadvisor/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	service services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	if refresher, ok := service.Identity.(KeyRefresher); ok {
		if err := schedulerService.AddJob(NewJWKSRefreshJob(refresher, Hourly)); err != nil {
			return log.Err("failed to register JWKS refresh job", err)
		}
		log.Info("Registered JWKS refresh job", "schedule", "hourly")
	}

	return nil
}
