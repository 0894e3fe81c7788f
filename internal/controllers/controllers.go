package controllers

import (
	"cropadvisor/internal/database"
	"cropadvisor/internal/repositories"
	"cropadvisor/internal/services"

	datasetController "cropadvisor/internal/controllers/dataset"
	recommendationController "cropadvisor/internal/controllers/recommendation"
)

type Controllers struct {
	Recommendation recommendationController.RecommendationControllerInterface
	Dataset        datasetController.DatasetControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) Controllers {
	return Controllers{
		Recommendation: recommendationController.New(services, repos, db),
		Dataset:        datasetController.New(repos, db),
	}
}
