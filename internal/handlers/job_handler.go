// internal/handlers/job_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/abilitylink/jobboard_be/internal/models"
)

type JobHandler struct {
	DB *gorm.DB
}

func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{DB: db}
}

// ==== REQUEST STRUCTS ====

type JobReq struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Location            string   `json:"location"`
	WorkType            string   `json:"work_type"`
	SalaryMin           int64    `json:"salary_min"`
	SalaryMax           int64    `json:"salary_max"`
	Accommodations      []string `json:"accommodations"`
	ApplicationDeadline string   `json:"application_deadline"` // ISO format: 2026-09-30
}

// ==== PUBLIC ====

func (h *JobHandler) ListPublic(c *fiber.Ctx) error {
	qSearch := c.Query("q")
	location := c.Query("location")
	workType := c.Query("work_type")
	minSalary := c.QueryInt("min", 0)
	accommodation := c.Query("accommodation")

	q := h.DB.Model(&models.Job{}).
		Preload("Company").
		Where("status = ?", models.JobStatusPublished).
		Where("is_active = ?", true)

	if qSearch != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(qSearch)+"%")
	}
	if location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if workType != "" {
		q = q.Where("work_type = ?", workType)
	}
	if minSalary > 0 {
		q = q.Where("salary_max >= ?", minSalary)
	}
	if accommodation != "" {
		// jsonb containment on the tag list
		q = q.Where("accommodations @> ?", `["`+accommodation+`"]`)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to count jobs")
	}

	var jobs []models.Job
	if err := q.
		Order("published_at DESC NULLS LAST").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load jobs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    jobs,
		"meta": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_items": total,
			"total_pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (h *JobHandler) GetDetail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	var job models.Job
	if err := h.DB.Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}

// ==== EMPLOYER ====

func (h *JobHandler) ownCompany(c *fiber.Ctx) (*models.Company, error) {
	caller, err := getAuth(c)
	if err != nil {
		return nil, err
	}
	var company models.Company
	if err := h.DB.Where("owner_id = ?", caller).First(&company).Error; err != nil {
		return nil, fail(c, fiber.StatusNotFound, "Create your company profile first")
	}
	return &company, nil
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	company, err := h.ownCompany(c)
	if company == nil {
		return err
	}

	var req JobReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fail(c, fiber.StatusBadRequest, "Title is required")
	}

	accomJSON, err := json.Marshal(req.Accommodations)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to process accommodations")
	}

	job := models.Job{
		CompanyID:      company.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Location:       req.Location,
		WorkType:       req.WorkType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Accommodations: datatypes.JSON(accomJSON),
		Status:         models.JobStatusDraft,
		IsActive:       true,
	}
	if req.ApplicationDeadline != "" {
		if deadline, err := time.Parse("2006-01-02", req.ApplicationDeadline); err == nil {
			job.ApplicationDeadline = &deadline
		}
	}

	if err := h.DB.Create(&job).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create job")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}

func (h *JobHandler) jobOwnedBy(c *fiber.Ctx) (*models.Job, error) {
	company, err := h.ownCompany(c)
	if company == nil {
		return nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", id).Error; err != nil {
		return nil, fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.CompanyID != company.ID {
		return nil, fail(c, fiber.StatusForbidden, "This job belongs to another company")
	}
	return &job, nil
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	job, err := h.jobOwnedBy(c)
	if job == nil {
		return err
	}

	var req JobReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Title) != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.WorkType != "" {
		updates["work_type"] = req.WorkType
	}
	if req.SalaryMin > 0 {
		updates["salary_min"] = req.SalaryMin
	}
	if req.SalaryMax > 0 {
		updates["salary_max"] = req.SalaryMax
	}
	if req.Accommodations != nil {
		accomJSON, err := json.Marshal(req.Accommodations)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to process accommodations")
		}
		updates["accommodations"] = datatypes.JSON(accomJSON)
	}
	if req.ApplicationDeadline != "" {
		if deadline, err := time.Parse("2006-01-02", req.ApplicationDeadline); err == nil {
			updates["application_deadline"] = deadline
		}
	}

	if err := h.DB.Model(job).Updates(updates).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update job")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}

func (h *JobHandler) Publish(c *fiber.Ctx) error {
	job, err := h.jobOwnedBy(c)
	if job == nil {
		return err
	}

	now := time.Now()
	if err := h.DB.Model(job).Updates(map[string]interface{}{
		"status":       models.JobStatusPublished,
		"published_at": now,
	}).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to publish job")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job published",
	})
}

func (h *JobHandler) Close(c *fiber.Ctx) error {
	job, err := h.jobOwnedBy(c)
	if job == nil {
		return err
	}

	if err := h.DB.Model(job).Updates(map[string]interface{}{
		"status":    models.JobStatusClosed,
		"is_active": false,
	}).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to close job")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job closed",
	})
}

func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	company, err := h.ownCompany(c)
	if company == nil {
		return err
	}

	var jobs []models.Job
	if err := h.DB.
		Where("company_id = ?", company.ID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load jobs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    jobs,
	})
}

// ==== SEEKER: APPLICATIONS & SAVED JOBS ====

type ApplyReq struct {
	CoverLetter string `json:"cover_letter"`
}

func (h *JobHandler) Apply(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	var req ApplyReq
	_ = c.BodyParser(&req)

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.Status != models.JobStatusPublished || !job.IsActive {
		return fail(c, fiber.StatusBadRequest, "This job is not accepting applications")
	}
	if job.ApplicationDeadline != nil && job.ApplicationDeadline.Before(time.Now()) {
		return fail(c, fiber.StatusBadRequest, "The application deadline has passed")
	}

	app := models.JobApplication{
		JobID:       jobID,
		UserID:      caller,
		CoverLetter: req.CoverLetter,
		Status:      models.ApplicationApplied,
	}
	if err := h.DB.Create(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, fiber.StatusConflict, "You already applied to this job")
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to submit application")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    app,
	})
}

func (h *JobHandler) ListApplications(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	var apps []models.JobApplication
	if err := h.DB.
		Preload("Job").
		Preload("Job.Company").
		Where("user_id = ?", caller).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load applications")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
	})
}

// ListApplicants shows an employer who applied to one of their jobs.
func (h *JobHandler) ListApplicants(c *fiber.Ctx) error {
	job, err := h.jobOwnedBy(c)
	if job == nil {
		return err
	}

	var apps []models.JobApplication
	if err := h.DB.
		Preload("User").
		Where("job_id = ?", job.ID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load applicants")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
	})
}

func (h *JobHandler) Save(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	saved := models.SavedJob{JobID: jobID, UserID: caller}
	if err := h.DB.Create(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, fiber.StatusConflict, "Job already saved")
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to save job")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Job saved",
	})
}

func (h *JobHandler) Unsave(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	res := h.DB.Where("job_id = ? AND user_id = ?", jobID, caller).Delete(&models.SavedJob{})
	if res.Error != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to unsave job")
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, "Job was not saved")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job removed from saved list",
	})
}

func (h *JobHandler) ListSaved(c *fiber.Ctx) error {
	caller, err := getAuth(c)
	if err != nil {
		return err
	}

	var saved []models.SavedJob
	if err := h.DB.
		Preload("Job").
		Preload("Job.Company").
		Where("user_id = ?", caller).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load saved jobs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    saved,
	})
}
