// internal/handlers/analytics_handler.go
package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/services/analytics"
)

// AnalyticsHandler is mounted behind RequireRoles("admin").
type AnalyticsHandler struct {
	Svc *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc}
}

func (h *AnalyticsHandler) Report(c *fiber.Ctx) error {
	period := c.Query("period", analytics.DefaultPeriod)

	var userID *uuid.UUID
	if v := c.Query("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid userId filter")
		}
		userID = &id
	}

	report, err := h.Svc.BuildReport(c.Context(), period, userID)
	if err != nil {
		log.Printf("[Analytics] report failed: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to build analytics report")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

type AnalyticsActionReq struct {
	Action string  `json:"action"` // regenerate_all | cleanup_old | refresh_user
	UserID *string `json:"user_id"`
}

func (h *AnalyticsHandler) Action(c *fiber.Ctx) error {
	var req AnalyticsActionReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	switch req.Action {
	case "regenerate_all":
		users, err := h.Svc.RegenerateAll(c.Context())
		if err != nil {
			log.Printf("[Analytics] regenerate_all failed: %v", err)
			return fail(c, fiber.StatusInternalServerError, "Failed to regenerate recommendations")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"users_processed": users},
		})

	case "cleanup_old":
		n, err := h.Svc.CleanupOld(c.Context())
		if err != nil {
			log.Printf("[Analytics] cleanup_old failed: %v", err)
			return fail(c, fiber.StatusInternalServerError, "Failed to clean up old ratings")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"deleted": n},
		})

	case "refresh_user":
		var userID *uuid.UUID
		if req.UserID != nil && *req.UserID != "" {
			id, err := uuid.Parse(*req.UserID)
			if err != nil {
				return fail(c, fiber.StatusBadRequest, "Invalid user ID")
			}
			userID = &id
		}
		n, err := h.Svc.RefreshUser(c.Context(), userID)
		if err != nil {
			if errors.Is(err, analytics.ErrMissingUserID) {
				return fail(c, fiber.StatusBadRequest, "userId is required for refresh_user")
			}
			log.Printf("[Analytics] refresh_user failed: %v", err)
			return fail(c, fiber.StatusInternalServerError, "Failed to refresh user ratings")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"deleted": n},
		})

	default:
		return fail(c, fiber.StatusBadRequest, "Unknown action")
	}
}
