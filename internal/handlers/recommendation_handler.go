// internal/handlers/recommendation_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/services/recommend"
)

type RecommendationHandler struct {
	Gen *recommend.Generator
}

func NewRecommendationHandler(gen *recommend.Generator) *RecommendationHandler {
	return &RecommendationHandler{Gen: gen}
}

// Get returns recommendations for the user, generating fresh ones when the
// cache window is empty or ?regenerate=true.
func (h *RecommendationHandler) Get(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return fail(c, fiber.StatusForbidden, "Not allowed")
	}

	opts := recommend.GenerateOptions{
		Limit:      c.QueryInt("limit", 10),
		Regenerate: c.QueryBool("regenerate", false),
	}

	res, err := h.Gen.Generate(c.Context(), userID, opts)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrProfileNotFound):
			return fail(c, fiber.StatusNotFound, "Complete your profile before requesting recommendations")
		case errors.Is(err, recommend.ErrProfileIncomplete):
			return fail(c, fiber.StatusBadRequest, "Finish the profile setup wizard before requesting recommendations")
		case errors.Is(err, recommend.ErrScoringFailed):
			log.Printf("[Recommend] scoring failed for %s: %v", userID, err)
			return fail(c, fiber.StatusInternalServerError, "Recommendation scoring is unavailable right now")
		default:
			log.Printf("[Recommend] generate for %s failed: %v", userID, err)
			return fail(c, fiber.StatusInternalServerError, "Failed to load recommendations")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    res,
	})
}

type UpdateRecommendationReq struct {
	JobID     string  `json:"job_id"`
	Rating    int     `json:"rating"`
	Feedback  *string `json:"feedback"`
	Reason    *string `json:"reason"`
	IsHelpful *bool   `json:"is_helpful"`
}

// Update adjusts one recommendation's rating, keyed by (userId, jobId).
func (h *RecommendationHandler) Update(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return fail(c, fiber.StatusForbidden, "Not allowed")
	}

	var req UpdateRecommendationReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	in := recommend.RatingUpdate{
		Rating:    req.Rating,
		Feedback:  req.Feedback,
		IsHelpful: req.IsHelpful,
	}
	if req.Reason != nil {
		r := models.RatingReason(*req.Reason)
		in.Reason = &r
	}

	updated, err := h.Gen.UpdateForJob(c.Context(), userID, jobID, in)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidRating):
			return fail(c, fiber.StatusBadRequest, "Rating must be between 1 and 10")
		case errors.Is(err, recommend.ErrRatingNotFound):
			return fail(c, fiber.StatusNotFound, "No recommendation found for this job")
		default:
			log.Printf("[Recommend] update for %s/%s failed: %v", userID, jobID, err)
			return fail(c, fiber.StatusInternalServerError, "Failed to update recommendation")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    updated,
	})
}

// Delete removes one recommendation (?jobId=...) or all of the user's
// recommendations when jobId is absent.
func (h *RecommendationHandler) Delete(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return fail(c, fiber.StatusForbidden, "Not allowed")
	}

	var jobID *uuid.UUID
	if v := c.Query("jobId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid job ID")
		}
		jobID = &id
	}

	n, err := h.Gen.DeleteForUser(c.Context(), userID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrRatingNotFound):
			return fail(c, fiber.StatusNotFound, "No recommendation found for this job")
		default:
			log.Printf("[Recommend] delete for %s failed: %v", userID, err)
			return fail(c, fiber.StatusInternalServerError, "Failed to delete recommendations")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Deleted %d recommendation(s)", n),
	})
}
