package recommendationController

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cropadvisor/internal/constants"
	"cropadvisor/internal/database"
	. "cropadvisor/internal/models"
	"cropadvisor/internal/repositories"
	"cropadvisor/internal/services"
	"cropadvisor/internal/types"
	"cropadvisor/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecommendationResult is the saved record plus the generated texts under the
// names the browser client reads.
type RecommendationResult struct {
	*CropRecommendation
	RecommendationText    string  `json:"recommendationText"`
	RecommendationSwahili *string `json:"recommendationSwahili"`
}

const defaultStoreTimeout = 10 * time.Second

type RecommendationController struct {
	identity     services.IdentityService
	completion   services.CompletionService
	repo         repositories.CropRecommendationRepository
	db           database.DB
	storeTimeout time.Duration
	log          logger.Logger
}

type RecommendationControllerInterface interface {
	GenerateRecommendation(
		ctx context.Context,
		token string,
		body []byte,
	) (*RecommendationResult, error)
	ListRecommendations(
		ctx context.Context,
		identity *types.Identity,
		limit int,
	) ([]CropRecommendation, error)
	GetRecommendation(
		ctx context.Context,
		identity *types.Identity,
		id uuid.UUID,
	) (*CropRecommendation, error)
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) RecommendationControllerInterface {
	return &RecommendationController{
		identity:     services.Identity,
		completion:   services.Completion,
		repo:         repos.CropRecommendation,
		db:           db,
		storeTimeout: defaultStoreTimeout,
		log:          logger.New("recommendationController"),
	}
}

func (c *RecommendationController) GenerateRecommendation(
	ctx context.Context,
	token string,
	body []byte,
) (*RecommendationResult, error) {
	log := c.log.TraceFromContext(ctx).Function("GenerateRecommendation")

	identity, err := c.identity.Resolve(ctx, token)
	if err != nil || identity == nil || identity.UserID == "" {
		if err != nil {
			log.Info("caller could not be authenticated", "error", err)
		}
		return nil, ErrUnauthorized
	}

	if err := c.completion.Ready(); err != nil {
		return nil, log.Err(
			"completion provider is not configured",
			fmt.Errorf("%w: %w", ErrMisconfigured, err),
		)
	}

	req, err := DecodeRequest(body)
	if err != nil {
		log.Info("rejected malformed request", "userID", identity.UserID, "error", err)
		return nil, err
	}

	profile, err := NormalizeRequest(req)
	if err != nil {
		log.Info("rejected invalid request", "userID", identity.UserID, "error", err)
		return nil, err
	}

	recommendationText, err := c.completion.Complete(
		ctx,
		RecommendationSystemPrompt,
		BuildRecommendationPrompt(profile),
	)
	if err != nil {
		return nil, log.Err(
			"failed to generate recommendation",
			fmt.Errorf("%w: %w", ErrRecommendationGenerationFailed, err),
			"userID", identity.UserID,
			"model", c.completion.Model(),
		)
	}

	if cleaned, changed := utils.CleanText(recommendationText); changed {
		log.Debug("removed unstorable characters from recommendation", "userID", identity.UserID)
		recommendationText = cleaned
	}

	recommendationSwahili := c.translate(ctx, recommendationText)

	record := &CropRecommendation{
		UserID:                identity.UserID,
		DatasetID:             profile.DatasetID,
		SoilData:              profile.SoilData,
		ClimateData:           profile.ClimateData,
		RecommendedCrops:      ExtractCrops(recommendationText),
		RecommendationText:    recommendationText,
		RecommendationSwahili: recommendationSwahili,
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()

	if err := c.repo.Create(storeCtx, c.db.SQLWithContext(storeCtx), record); err != nil {
		kind := ErrPersistenceUnavailable
		if errors.Is(err, repositories.ErrRecordRejected) {
			kind = ErrPersistenceRejected
		}
		return nil, log.Err(
			"failed to save recommendation",
			&persistenceError{kind: kind, cause: err},
			"userID", identity.UserID,
		)
	}

	log.Info(
		"recommendation generated",
		"userID", identity.UserID,
		"recommendationID", record.ID,
		"crops", len(record.RecommendedCrops),
		"translated", recommendationSwahili != nil,
	)

	return &RecommendationResult{
		CropRecommendation:    record,
		RecommendationText:    recommendationText,
		RecommendationSwahili: recommendationSwahili,
	}, nil
}

// storeContext bounds a single store call so a stalled database surfaces as
// an error instead of holding the request open.
func (c *RecommendationController) storeContext(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	timeout := c.storeTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// translate never fails the request; a missing translation is stored as null.
func (c *RecommendationController) translate(ctx context.Context, text string) *string {
	log := c.log.TraceFromContext(ctx).Function("translate")

	translated, err := c.completion.Complete(
		ctx,
		TranslationSystemPrompt,
		BuildTranslationPrompt(text),
	)
	if err != nil {
		log.Warn(
			"continuing without Swahili translation",
			"error", fmt.Errorf("%w: %w", ErrTranslationFailed, err),
		)
		return nil
	}
	if strings.TrimSpace(translated) == "" {
		log.Warn("continuing without Swahili translation", "error", ErrTranslationFailed)
		return nil
	}

	return utils.CleanTextPtr(&translated)
}

func (c *RecommendationController) ListRecommendations(
	ctx context.Context,
	identity *types.Identity,
	limit int,
) ([]CropRecommendation, error) {
	log := c.log.TraceFromContext(ctx).Function("ListRecommendations")

	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthorized
	}

	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()

	recommendations, err := c.repo.ListByUser(
		storeCtx,
		c.db.SQLWithContext(storeCtx),
		identity.UserID,
		limit,
	)
	if err != nil {
		return nil, log.Err("failed to list recommendations", err, "userID", identity.UserID)
	}

	return recommendations, nil
}

func (c *RecommendationController) GetRecommendation(
	ctx context.Context,
	identity *types.Identity,
	id uuid.UUID,
) (*CropRecommendation, error) {
	log := c.log.TraceFromContext(ctx).Function("GetRecommendation")

	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthorized
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()

	recommendation, err := c.repo.GetByID(storeCtx, c.db.SQLWithContext(storeCtx), identity.UserID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get recommendation", err, "recommendationID", id)
	}

	return recommendation, nil
}
