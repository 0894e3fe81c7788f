package handlers

import (
	"cropadvisor/internal/app"
	recommendationController "cropadvisor/internal/controllers/recommendation"
	"cropadvisor/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecommendationHandler struct {
	Handler
	recommendationController recommendationController.RecommendationControllerInterface
}

func NewRecommendationHandler(app app.App, router fiber.Router) *RecommendationHandler {
	log := logger.New("handlers").File("recommendation_handler")
	return &RecommendationHandler{
		recommendationController: app.Controllers.Recommendation,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RecommendationHandler) Register() {
	recommendations := h.router.Group("/recommendations")
	recommendations.Post("/", h.createRecommendation)
	recommendations.Get("/", h.middleware.RequireAuth(), h.listRecommendations)
	recommendations.Get("/:id", h.middleware.RequireAuth(), h.getRecommendation)
}

// RegisterFunction mounts the pipeline under the function-style path, which
// answers 200 instead of 201.
func (h *RecommendationHandler) RegisterFunction() {
	h.router.Post("/recommend-crops", func(c *fiber.Ctx) error {
		return h.generate(c, fiber.StatusOK)
	})
}

func (h *RecommendationHandler) createRecommendation(c *fiber.Ctx) error {
	return h.generate(c, fiber.StatusCreated)
}

func (h *RecommendationHandler) generate(c *fiber.Ctx, successStatus int) error {
	result, err := h.recommendationController.GenerateRecommendation(
		c.UserContext(),
		middleware.BearerToken(c),
		c.Body(),
	)
	if err != nil {
		return errorResponse(
			c,
			recommendationController.HTTPStatus(err),
			recommendationController.PublicMessage(err),
		)
	}

	return c.Status(successStatus).JSON(fiber.Map{
		"recommendation": result,
	})
}

func (h *RecommendationHandler) listRecommendations(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	recommendations, err := h.recommendationController.ListRecommendations(
		c.UserContext(),
		identity,
		c.QueryInt("limit", 0),
	)
	if err != nil {
		return errorResponse(
			c,
			recommendationController.HTTPStatus(err),
			recommendationController.PublicMessage(err),
		)
	}

	return c.JSON(fiber.Map{"recommendations": recommendations})
}

func (h *RecommendationHandler) getRecommendation(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	recommendationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid recommendation ID")
	}

	recommendation, err := h.recommendationController.GetRecommendation(
		c.UserContext(),
		identity,
		recommendationID,
	)
	if err != nil {
		return errorResponse(
			c,
			recommendationController.HTTPStatus(err),
			recommendationController.PublicMessage(err),
		)
	}

	return c.JSON(fiber.Map{"recommendation": recommendation})
}
