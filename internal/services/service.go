package services

import (
	"cropadvisor/config"
)

type Service struct {
	Identity   IdentityService
	Completion CompletionService
	Scheduler  *SchedulerService
}

func New(config config.Config) (Service, error) {
	identityService, err := NewIdentityService(config)
	if err != nil {
		return Service{}, err
	}

	completionService, err := NewCompletionService(config)
	if err != nil {
		return Service{}, err
	}

	return Service{
		Identity:   identityService,
		Completion: completionService,
		Scheduler:  NewSchedulerService(),
	}, nil
}
