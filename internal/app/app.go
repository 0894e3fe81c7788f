package app

import (
	"cropadvisor/config"
	"cropadvisor/internal/controllers"
	"cropadvisor/internal/database"
	"cropadvisor/internal/handlers/middleware"
	"cropadvisor/internal/jobs"
	"cropadvisor/internal/repositories"
	"cropadvisor/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Config      config.Config
	Middleware  middleware.Middleware
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	services, err := services.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	app := Assemble(config, db, services)

	if err := jobs.RegisterAllJobs(services.Scheduler, config, services); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

// Assemble builds repositories, controllers and middleware on top of already
// constructed infrastructure.
func Assemble(config config.Config, db database.DB, services services.Service) *App {
	repos := repositories.New(db)

	return &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware.New(config, services),
		Services:    services,
		Repos:       repos,
		Controllers: controllers.New(services, repos, db),
	}
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Services.Identity,
		a.Services.Completion,
		a.Services.Scheduler,
		a.Repos.CropRecommendation,
		a.Repos.Dataset,
		a.Controllers.Recommendation,
		a.Controllers.Dataset,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		a.Services.Scheduler.Stop()
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
