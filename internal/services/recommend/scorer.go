// internal/services/recommend/scorer.go
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/abilitylink/jobboard_be/internal/models"
)

// Preferences tune one scoring call.
type Preferences struct {
	MaxRecommendations       int     `json:"max_recommendations"`
	MinMatchScore            float64 `json:"min_match_score"`
	PrioritizeAccommodations bool    `json:"prioritize_accommodations"`
	ExcludeAppliedJobs       bool    `json:"exclude_applied_jobs"`
}

type ScoreRequest struct {
	Profile     *models.SeekerProfile
	Jobs        []models.Job
	Preferences Preferences
}

// ScoredJob is one item of the scorer's answer.
type ScoredJob struct {
	JobID      uuid.UUID           `json:"job_id"`
	Rating     int                 `json:"rating"`      // 1-10
	MatchScore float64             `json:"match_score"` // 0-100
	Reason     models.RatingReason `json:"reason"`
	Feedback   string              `json:"feedback"`
}

type ScoreResult struct {
	Recommendations []ScoredJob `json:"recommendations"`
	Analysis        string      `json:"analysis"`
}

// Scorer ranks candidate jobs against a seeker profile. The generator treats
// it as a black box and does not retry its failures.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
}

const scoringPrompt = `You are an expert career-matching assistant for a job board focused on accessible employment.

Evaluate how well each candidate job matches the seeker profile below.

### INSTRUCTIONS:
1. Score every job you recommend with a "rating" from 1 to 10 and a "match_score" from 0 to 100.
2. Return at most %d recommendations and skip any job whose match_score would fall below %.0f.
3. %s
4. Pick "reason" from exactly this set: PERFECT_MATCH, GOOD_FIT, SOME_INTEREST, NOT_RELEVANT, POOR_MATCH, ALREADY_APPLIED, LOCATION_ISSUE, SALARY_MISMATCH, SKILL_MISMATCH, ACCOMMODATION_CONCERN.
5. "feedback" is one short sentence explaining the score to the seeker.
6. Use only job_id values that appear in the candidate list. Do not invent jobs.

Return only valid JSON, no markdown fences, no text around it:

{
  "recommendations": [
    {"job_id": string, "rating": number, "match_score": number, "reason": string, "feedback": string}
  ],
  "analysis": "two or three sentences summarising the overall fit"
}

### SEEKER PROFILE:
%s

### CANDIDATE JOBS:
%s
`

// GeminiScorer implements Scorer on top of Gemini via langchaingo.
type GeminiScorer struct {
	Client llms.Model
}

func NewGeminiScorer(apiKey, model string) (*GeminiScorer, error) {
	llm, err := googleai.New(context.Background(),
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiScorer{Client: llm}, nil
}

type promptJob struct {
	JobID          uuid.UUID `json:"job_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	WorkType       string    `json:"work_type"`
	SalaryMin      int64     `json:"salary_min"`
	SalaryMax      int64     `json:"salary_max"`
	Accommodations string    `json:"accommodations"`
	Description    string    `json:"description"`
}

type promptProfile struct {
	Headline           string `json:"headline"`
	Summary            string `json:"summary"`
	YearsExperience    int    `json:"years_experience"`
	WorkPreference     string `json:"work_preference"`
	Skills             string `json:"skills"`
	PreferredLocation  string `json:"preferred_location"`
	ExpectedSalaryMin  int64  `json:"expected_salary_min"`
	ExpectedSalaryMax  int64  `json:"expected_salary_max"`
	AccommodationNeeds string `json:"accommodation_needs"`
}

func (g *GeminiScorer) Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, g.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("gemini call: %w", err)
	}

	return ParseScoreResponse(resp)
}

func buildPrompt(req ScoreRequest) (string, error) {
	p := req.Profile
	profileJSON, err := json.Marshal(promptProfile{
		Headline:           p.Headline,
		Summary:            p.Summary,
		YearsExperience:    p.YearsExperience,
		WorkPreference:     string(p.WorkPreference),
		Skills:             string(p.Skills),
		PreferredLocation:  p.PreferredLocation,
		ExpectedSalaryMin:  p.ExpectedSalaryMin,
		ExpectedSalaryMax:  p.ExpectedSalaryMax,
		AccommodationNeeds: string(p.AccommodationNeeds),
	})
	if err != nil {
		return "", err
	}

	jobs := make([]promptJob, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		desc := j.Description
		if len(desc) > 1500 {
			desc = desc[:1500]
		}
		company := ""
		if j.Company != nil {
			company = j.Company.Name
		}
		jobs = append(jobs, promptJob{
			JobID:          j.ID,
			Title:          j.Title,
			Company:        company,
			Location:       j.Location,
			WorkType:       j.WorkType,
			SalaryMin:      j.SalaryMin,
			SalaryMax:      j.SalaryMax,
			Accommodations: string(j.Accommodations),
			Description:    desc,
		})
	}
	jobsJSON, err := json.Marshal(jobs)
	if err != nil {
		return "", err
	}

	accomRule := "Treat accommodation fit as a normal signal."
	if req.Preferences.PrioritizeAccommodations {
		accomRule = "Weight accommodation fit heavily: a job covering the seeker's accommodation needs should outrank an otherwise similar job that does not."
	}

	return fmt.Sprintf(scoringPrompt,
		req.Preferences.MaxRecommendations,
		req.Preferences.MinMatchScore,
		accomRule,
		string(profileJSON),
		string(jobsJSON),
	), nil
}

// ParseScoreResponse decodes the model's JSON answer, tolerating the
// markdown fences Gemini sometimes adds despite instructions.
func ParseScoreResponse(raw string) (*ScoreResult, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out ScoreResult
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse scorer response: %w", err)
	}
	return &out, nil
}
