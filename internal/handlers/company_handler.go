package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/abilitylink/jobboard_be/internal/models"
)

type CompanyHandler struct {
	DB *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{DB: db}
}

type CompanyReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Location    string   `json:"location"`
	LogoURL     string   `json:"logo_url"`
	Facilities  []string `json:"facilities"`
}

// Upsert creates the caller's company profile or updates the existing one.
// One company per employer.
func (h *CompanyHandler) Upsert(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	var req CompanyReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fail(c, fiber.StatusBadRequest, "Company name is required")
	}

	facilitiesJSON, err := json.Marshal(req.Facilities)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to process facilities")
	}

	var company models.Company
	err = h.DB.Where("owner_id = ?", caller).First(&company).Error
	if err == gorm.ErrRecordNotFound {
		company = models.Company{
			OwnerID:     caller,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Website:     req.Website,
			Location:    req.Location,
			LogoURL:     req.LogoURL,
			Facilities:  datatypes.JSON(facilitiesJSON),
		}
		if err := h.DB.Create(&company).Error; err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to create company")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    company,
		})
	} else if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
		"website":     req.Website,
		"location":    req.Location,
		"logo_url":    req.LogoURL,
		"facilities":  datatypes.JSON(facilitiesJSON),
	}
	if err := h.DB.Model(&company).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update company")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    company,
	})
}

func (h *CompanyHandler) GetMine(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	var company models.Company
	if err := h.DB.Where("owner_id = ?", caller).First(&company).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Company profile not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    company,
	})
}
