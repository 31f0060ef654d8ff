// internal/handlers/profile_handler.go
//
// Seeker profile setup wizard. Five steps; recommendations are only
// generated for profiles that finished Submit.
package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/abilitylink/jobboard_be/internal/models"
)

type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

// loadOrCreate returns the caller's profile, creating the draft row on the
// first wizard interaction.
func (h *ProfileHandler) loadOrCreate(c *fiber.Ctx) (*models.SeekerProfile, error) {
	caller, err := getAuth(c)
	if err != nil {
		return nil, err
	}

	var profile models.SeekerProfile
	err = h.DB.Where("user_id = ?", caller).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = models.SeekerProfile{
			UserID:        caller,
			SetupStep:     1,
			ProfileStatus: models.ProfileDraft,
		}
		if err := h.DB.Create(&profile).Error; err != nil {
			return nil, fail(c, fiber.StatusInternalServerError, "Failed to create profile")
		}
	} else if err != nil {
		return nil, fail(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return &profile, nil
}

func (h *ProfileHandler) advance(profile *models.SeekerProfile, step int, updates map[string]interface{}) map[string]interface{} {
	if profile.SetupStep < step+1 && step < 5 {
		updates["setup_step"] = step + 1
	}
	return updates
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}

type ProfilePhotoReq struct {
	PhotoURL string `json:"photo_url"`
}

func (h *ProfileHandler) UpdatePhoto(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	var req ProfilePhotoReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := h.advance(profile, 1, map[string]interface{}{"photo_url": req.PhotoURL})
	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save photo")
	}

	return c.JSON(fiber.Map{"success": true})
}

type ProfileBasicsReq struct {
	Headline        string `json:"headline"`
	Summary         string `json:"summary"`
	YearsExperience int    `json:"years_experience"`
	WorkPreference  string `json:"work_preference"`
}

func (h *ProfileHandler) UpdateBasics(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	var req ProfileBasicsReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Headline) == "" {
		return fail(c, fiber.StatusBadRequest, "Headline is required")
	}

	updates := h.advance(profile, 2, map[string]interface{}{
		"headline":         strings.TrimSpace(req.Headline),
		"summary":          req.Summary,
		"years_experience": req.YearsExperience,
		"work_preference":  req.WorkPreference,
	})
	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save profile")
	}

	return c.JSON(fiber.Map{"success": true})
}

type ProfileSkillsReq struct {
	Skills []string `json:"skills"`
}

func (h *ProfileHandler) UpdateSkills(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	var req ProfileSkillsReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Skills) == 0 {
		return fail(c, fiber.StatusBadRequest, "At least one skill is required")
	}

	skillsJSON, err := json.Marshal(req.Skills)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to process skills")
	}

	updates := h.advance(profile, 3, map[string]interface{}{
		"skills": datatypes.JSON(skillsJSON),
	})
	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save skills")
	}

	return c.JSON(fiber.Map{"success": true})
}

type ProfilePreferencesReq struct {
	PreferredLocation string `json:"preferred_location"`
	ExpectedSalaryMin int64  `json:"expected_salary_min"`
	ExpectedSalaryMax int64  `json:"expected_salary_max"`
}

func (h *ProfileHandler) UpdatePreferences(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	var req ProfilePreferencesReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := h.advance(profile, 4, map[string]interface{}{
		"preferred_location":  req.PreferredLocation,
		"expected_salary_min": req.ExpectedSalaryMin,
		"expected_salary_max": req.ExpectedSalaryMax,
	})
	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save preferences")
	}

	return c.JSON(fiber.Map{"success": true})
}

type ProfileAccessibilityReq struct {
	AccommodationNeeds []string `json:"accommodation_needs"`
}

func (h *ProfileHandler) UpdateAccessibility(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	var req ProfileAccessibilityReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	needsJSON, err := json.Marshal(req.AccommodationNeeds)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to process accommodation needs")
	}

	updates := h.advance(profile, 5, map[string]interface{}{
		"accommodation_needs": datatypes.JSON(needsJSON),
	})
	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save accommodation needs")
	}

	return c.JSON(fiber.Map{"success": true})
}

// Submit validates the wizard is filled in and marks the profile completed.
func (h *ProfileHandler) Submit(c *fiber.Ctx) error {
	profile, err := h.loadOrCreate(c)
	if profile == nil {
		return err
	}

	errs := FieldErrors{}
	if strings.TrimSpace(profile.Headline) == "" {
		errs.Add("headline", "Headline is required")
	}
	if len(profile.Skills) == 0 || string(profile.Skills) == "null" {
		errs.Add("skills", "At least one skill is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if err := h.DB.Model(profile).Updates(map[string]interface{}{
		"profile_status": models.ProfileCompleted,
		"setup_step":     5,
	}).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to submit profile")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile completed. Recommendations are now available.",
	})
}
