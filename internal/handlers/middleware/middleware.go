package middleware

import (
	"cropadvisor/config"
	"cropadvisor/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	Config   config.Config
	identity services.IdentityService
	log      logger.Logger
}

func New(config config.Config, services services.Service) Middleware {
	return Middleware{
		Config:   config,
		identity: services.Identity,
		log:      logger.New("middleware"),
	}
}
