package handlers

import (
	"errors"

	"cropadvisor/internal/app"
	datasetController "cropadvisor/internal/controllers/dataset"
	"cropadvisor/internal/handlers/middleware"
	"cropadvisor/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type DatasetHandler struct {
	Handler
	datasetController datasetController.DatasetControllerInterface
}

func NewDatasetHandler(app app.App, router fiber.Router) *DatasetHandler {
	log := logger.New("handlers").File("dataset_handler")
	return &DatasetHandler{
		datasetController: app.Controllers.Dataset,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DatasetHandler) Register() {
	datasets := h.router.Group("/datasets", h.middleware.RequireAuth())
	datasets.Post("/", h.createDataset)
	datasets.Get("/", h.listDatasets)
}

func (h *DatasetHandler) createDataset(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("createDataset")

	var req datasetController.CreateDatasetRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("invalid dataset body", "error", err)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	dataset, err := h.datasetController.CreateDataset(
		c.UserContext(),
		middleware.GetIdentity(c),
		req,
	)
	if err != nil {
		switch {
		case errors.Is(err, datasetController.ErrUnauthorized):
			return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, datasetController.ErrInvalidDataset),
			errors.Is(err, repositories.ErrRecordRejected):
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		default:
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to save dataset")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"dataset": dataset})
}

func (h *DatasetHandler) listDatasets(c *fiber.Ctx) error {
	datasets, err := h.datasetController.ListDatasets(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		if errors.Is(err, datasetController.ErrUnauthorized) {
			return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load datasets")
	}

	return c.JSON(fiber.Map{"datasets": datasets})
}
