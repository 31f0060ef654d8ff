// internal/handlers/rating_handler.go
package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/services/rating"
)

type RatingHandler struct {
	Svc *rating.Service
}

func NewRatingHandler(svc *rating.Service) *RatingHandler {
	return &RatingHandler{Svc: svc}
}

// List returns a filtered, paginated page of ratings. Non-admins only ever
// see their own rows regardless of the userId filter they send.
func (h *RatingHandler) List(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	q := rating.ListQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	}

	if isAdmin(c) {
		if v := c.Query("userId"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fail(c, fiber.StatusBadRequest, "Invalid userId filter")
			}
			q.UserID = &id
		}
	} else {
		q.UserID = &caller
	}

	if v := c.Query("jobId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid jobId filter")
		}
		q.JobID = &id
	}
	if v := c.QueryInt("rating", 0); v != 0 {
		q.Rating = &v
	}
	if v := c.Query("reason"); v != "" {
		r := models.RatingReason(v)
		if !models.ValidReason(r) {
			return fail(c, fiber.StatusBadRequest, "Unknown reason filter")
		}
		q.Reason = &r
	}
	if v := c.Query("recommendedBy"); v != "" {
		q.RecommendedBy = &v
	}
	if v := c.Query("isHelpful"); v != "" {
		b := v == "true"
		q.IsHelpful = &b
	}
	if v := c.Query("createdAfter"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "createdAfter must be RFC3339")
		}
		q.CreatedAfter = &t
	}
	if v := c.Query("createdBefore"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "createdBefore must be RFC3339")
		}
		q.CreatedBefore = &t
	}

	res, err := h.Svc.List(c.Context(), q)
	if err != nil {
		log.Printf("[Ratings] list failed: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to list ratings")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       res.Data,
		"pagination": res.Pagination,
	})
}

func (h *RatingHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid rating ID")
	}

	r, err := h.Svc.GetByID(c.Context(), id)
	if err != nil {
		log.Printf("[Ratings] get %s failed: %v", id, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch rating")
	}
	if r == nil {
		return fail(c, fiber.StatusNotFound, "Rating not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    r,
	})
}

type CreateRatingReq struct {
	JobID    string  `json:"job_id"`
	Rating   int     `json:"rating"`
	Feedback string  `json:"feedback"`
	Reason   *string `json:"reason"`
}

func (h *RatingHandler) Create(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	var req CreateRatingReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}
	if req.Rating < 1 || req.Rating > 10 {
		return fail(c, fiber.StatusBadRequest, "Rating must be between 1 and 10")
	}

	in := rating.CreateInput{
		JobID:    jobID,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	}
	if req.Reason != nil {
		r := models.RatingReason(*req.Reason)
		in.Reason = &r
	}

	created, err := h.Svc.Create(c.Context(), caller, in)
	if err != nil {
		switch {
		case errors.Is(err, rating.ErrInvalidRating), errors.Is(err, rating.ErrInvalidReason):
			return fail(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, rating.ErrUserNotFound), errors.Is(err, rating.ErrJobNotFound):
			return fail(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, rating.ErrDuplicateRating):
			return fail(c, fiber.StatusConflict, "You already rated this job. Update the existing rating instead.")
		default:
			log.Printf("[Ratings] create failed: %v", err)
			return fail(c, fiber.StatusInternalServerError, "Failed to create rating")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

type UpdateRatingReq struct {
	Rating    *int    `json:"rating"`
	Feedback  *string `json:"feedback"`
	Reason    *string `json:"reason"`
	IsHelpful *bool   `json:"is_helpful"`
}

func (h *RatingHandler) Update(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid rating ID")
	}

	var req UpdateRatingReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	in := rating.UpdateInput{
		Rating:    req.Rating,
		Feedback:  req.Feedback,
		IsHelpful: req.IsHelpful,
	}
	if req.Reason != nil {
		r := models.RatingReason(*req.Reason)
		in.Reason = &r
	}

	updated, err := h.Svc.Update(c.Context(), id, caller, in)
	if err != nil {
		switch {
		case errors.Is(err, rating.ErrInvalidRating), errors.Is(err, rating.ErrInvalidReason):
			return fail(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, rating.ErrNotFound):
			return fail(c, fiber.StatusNotFound, "Rating not found")
		case errors.Is(err, rating.ErrForbidden):
			return fail(c, fiber.StatusForbidden, "You can only update your own ratings")
		default:
			log.Printf("[Ratings] update %s failed: %v", id, err)
			return fail(c, fiber.StatusInternalServerError, "Failed to update rating")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    updated,
	})
}

func (h *RatingHandler) Delete(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid rating ID")
	}

	if err := h.Svc.Delete(c.Context(), id, caller); err != nil {
		switch {
		case errors.Is(err, rating.ErrNotFound):
			return fail(c, fiber.StatusNotFound, "Rating not found")
		case errors.Is(err, rating.ErrForbidden):
			return fail(c, fiber.StatusForbidden, "You can only delete your own ratings")
		default:
			log.Printf("[Ratings] delete %s failed: %v", id, err)
			return fail(c, fiber.StatusInternalServerError, "Failed to delete rating")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Rating deleted",
	})
}

func (h *RatingHandler) UserStats(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return fail(c, fiber.StatusForbidden, "Not allowed")
	}

	stats, err := h.Svc.GetUserStats(c.Context(), userID)
	if err != nil {
		log.Printf("[Ratings] user stats %s failed: %v", userID, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

func (h *RatingHandler) JobStats(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	stats, err := h.Svc.GetJobStats(c.Context(), jobID)
	if err != nil {
		log.Printf("[Ratings] job stats %s failed: %v", jobID, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
