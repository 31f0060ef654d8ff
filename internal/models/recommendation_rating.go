// internal/models/recommendation_rating.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RatingReason string

const (
	ReasonPerfectMatch         RatingReason = "PERFECT_MATCH"
	ReasonGoodFit              RatingReason = "GOOD_FIT"
	ReasonSomeInterest         RatingReason = "SOME_INTEREST"
	ReasonNotRelevant          RatingReason = "NOT_RELEVANT"
	ReasonPoorMatch            RatingReason = "POOR_MATCH"
	ReasonAlreadyApplied       RatingReason = "ALREADY_APPLIED"
	ReasonLocationIssue        RatingReason = "LOCATION_ISSUE"
	ReasonSalaryMismatch       RatingReason = "SALARY_MISMATCH"
	ReasonSkillMismatch        RatingReason = "SKILL_MISMATCH"
	ReasonAccommodationConcern RatingReason = "ACCOMMODATION_CONCERN"
)

// ValidReason reports whether v is one of the known reason tags.
func ValidReason(v RatingReason) bool {
	switch v {
	case ReasonPerfectMatch, ReasonGoodFit, ReasonSomeInterest, ReasonNotRelevant,
		ReasonPoorMatch, ReasonAlreadyApplied, ReasonLocationIssue,
		ReasonSalaryMismatch, ReasonSkillMismatch, ReasonAccommodationConcern:
		return true
	}
	return false
}

// RecommendationRating holds one user's score for one job. At most one row
// may exist per (user_id, job_id); the composite unique index enforces it.
type RecommendationRating struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_job" json:"user_id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_job" json:"job_id"`

	Rating   int           `gorm:"not null" json:"rating"` // 1-10
	Feedback string        `gorm:"type:text" json:"feedback"`
	Reason   *RatingReason `gorm:"type:varchar(40);index" json:"reason,omitempty"`

	RecommendedBy string  `gorm:"type:varchar(40)" json:"recommended_by"` // e.g. "AI"
	MatchScore    float64 `gorm:"default:0" json:"match_score"`           // 0-100, scorer confidence

	IsHelpful *bool `json:"is_helpful,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Job  *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (r *RecommendationRating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
