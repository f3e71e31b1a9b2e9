package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/repositories"
	"recruitflow/screening-api/internal/services"
)

type RoleHandler struct {
	roleRepo  repositories.RoleRepository
	docRepo   repositories.DocumentRepository
	knowledge services.KnowledgeService
	logger    *zap.Logger
}

func NewRoleHandler(
	roleRepo repositories.RoleRepository,
	docRepo repositories.DocumentRepository,
	knowledge services.KnowledgeService,
	logger *zap.Logger,
) *RoleHandler {
	return &RoleHandler{
		roleRepo:  roleRepo,
		docRepo:   docRepo,
		knowledge: knowledge,
		logger:    logger,
	}
}

// HandleCreateRole handles POST /roles. Content comes either inline or from
// a previously uploaded document.
func (h *RoleHandler) HandleCreateRole(c *fiber.Ctx) error {
	var req models.CreateRoleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}

	content := req.Content
	sourceDocument := ""

	if content == "" && req.DocumentID != "" {
		docID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid document_id format",
			})
		}

		doc, err := h.docRepo.FindByID(docID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Source document not found",
			})
		}

		content = doc.ExtractedText
		sourceDocument = doc.OriginalFileName
	}

	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content or document_id is required",
		})
	}

	role := &models.Role{
		ID:             uuid.New(),
		Title:          req.Title,
		Content:        content,
		SourceDocument: sourceDocument,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.roleRepo.Create(role); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create role",
		})
	}

	// Index the role description so screening prompts can retrieve it.
	// Indexing failure does not fail role creation.
	if h.knowledge != nil {
		if err := h.knowledge.IndexContent(c.Context(), role.ID.String(), "role_description", content); err != nil {
			h.logger.Warn("failed to index role content",
				zap.String("role_id", role.ID.String()),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// HandleListRoles handles GET /roles.
func (h *RoleHandler) HandleListRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list roles",
		})
	}

	return c.JSON(fiber.Map{"roles": roles})
}
