package datasetController

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cropadvisor/internal/database"
	. "cropadvisor/internal/models"
	"cropadvisor/internal/repositories"
	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	maxNameLength        = 120
	maxDescriptionLength = 2000
)

var (
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrUnauthorized   = errors.New("unauthorized")
)

type CreateDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ColabURL    string `json:"colabUrl"`
}

type DatasetController struct {
	repo repositories.DatasetRepository
	db   database.DB
	log  logger.Logger
}

type DatasetControllerInterface interface {
	CreateDataset(
		ctx context.Context,
		identity *types.Identity,
		req CreateDatasetRequest,
	) (*Dataset, error)
	ListDatasets(ctx context.Context, identity *types.Identity) ([]Dataset, error)
}

func New(repos repositories.Repository, db database.DB) DatasetControllerInterface {
	return &DatasetController{
		repo: repos.Dataset,
		db:   db,
		log:  logger.New("datasetController"),
	}
}

func (c *DatasetController) CreateDataset(
	ctx context.Context,
	identity *types.Identity,
	req CreateDatasetRequest,
) (*Dataset, error) {
	log := c.log.TraceFromContext(ctx).Function("CreateDataset")

	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthorized
	}

	dataset := &Dataset{
		UserID:      identity.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ColabURL:    strings.TrimSpace(req.ColabURL),
	}

	if err := validateDataset(dataset); err != nil {
		log.Info("rejected dataset", "userID", identity.UserID, "error", err)
		return nil, err
	}

	if err := c.repo.Create(ctx, c.db.SQLWithContext(ctx), dataset); err != nil {
		return nil, log.Err("failed to save dataset", err, "userID", identity.UserID)
	}

	log.Info("dataset registered", "userID", identity.UserID, "datasetID", dataset.ID)
	return dataset, nil
}

func (c *DatasetController) ListDatasets(
	ctx context.Context,
	identity *types.Identity,
) ([]Dataset, error) {
	log := c.log.TraceFromContext(ctx).Function("ListDatasets")

	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthorized
	}

	datasets, err := c.repo.ListByUser(ctx, c.db.SQLWithContext(ctx), identity.UserID)
	if err != nil {
		return nil, log.Err("failed to list datasets", err, "userID", identity.UserID)
	}

	return datasets, nil
}

func validateDataset(dataset *Dataset) error {
	switch {
	case dataset.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDataset)
	case len(dataset.Name) > maxNameLength:
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidDataset, maxNameLength)
	case len(dataset.Description) > maxDescriptionLength:
		return fmt.Errorf(
			"%w: description must be at most %d characters",
			ErrInvalidDataset,
			maxDescriptionLength,
		)
	}

	parsed, err := url.Parse(dataset.ColabURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: colabUrl must be an absolute http(s) URL", ErrInvalidDataset)
	}

	return nil
}
