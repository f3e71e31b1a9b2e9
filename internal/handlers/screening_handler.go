package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/repositories"
	"recruitflow/screening-api/internal/services"
)

type ScreeningHandler struct {
	manager  *services.ScreeningManager
	roleRepo repositories.RoleRepository
	docRepo  repositories.DocumentRepository
}

func NewScreeningHandler(
	manager *services.ScreeningManager,
	roleRepo repositories.RoleRepository,
	docRepo repositories.DocumentRepository,
) *ScreeningHandler {
	return &ScreeningHandler{
		manager:  manager,
		roleRepo: roleRepo,
		docRepo:  docRepo,
	}
}

// HandleStartScreening handles POST /screenings. The run is started in the
// background and the session id is returned immediately; it supersedes any
// previous run still in flight.
func (h *ScreeningHandler) HandleStartScreening(c *fiber.Ctx) error {
	var req models.ScreeningRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.RoleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "role_id is required",
		})
	}

	if len(req.DocumentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_ids is required",
		})
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role_id format",
		})
	}

	docIDs := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		docID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid document id format: " + raw,
			})
		}
		docIDs = append(docIDs, docID)
	}

	role, err := h.roleRepo.FindByID(roleID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Role not found",
		})
	}

	docs, err := h.docRepo.FindByIDs(docIDs)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "One or more documents not found",
		})
	}

	session, err := h.manager.Start(*role, docs)
	if err != nil {
		if errors.Is(err, services.ErrEmptyRole) || errors.Is(err, services.ErrNoDocuments) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start screening",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ScreeningResponse{
		ID:     session.ID.String(),
		Status: string(session.Status),
	})
}

// HandleGetScreening handles GET /screenings/:id. While a run is in flight
// the response is a partial, ranked snapshot of the records scored so far.
func (h *ScreeningHandler) HandleGetScreening(c *fiber.Ctx) error {
	idParam := c.Params("id")
	sessionID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening session ID format",
		})
	}

	session, records, err := h.manager.Snapshot(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Screening session not found",
		})
	}

	return c.JSON(models.ScreeningResultResponse{
		ID:            session.ID.String(),
		Status:        string(session.Status),
		RoleID:        session.RoleID.String(),
		DocumentCount: session.DocumentCount,
		ScoredCount:   len(records),
		Records:       records,
	})
}
