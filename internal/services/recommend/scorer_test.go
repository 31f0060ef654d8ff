package recommend

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/abilitylink/jobboard_be/internal/models"
)

const sampleAnswer = `{
  "recommendations": [
    {"job_id": "4f9c3b1a-0000-4000-8000-000000000001", "rating": 9, "match_score": 88, "reason": "GOOD_FIT", "feedback": "Strong overlap with your Go experience."}
  ],
  "analysis": "Good overall fit."
}`

func TestParseScoreResponsePlainJSON(t *testing.T) {
	out, err := ParseScoreResponse(sampleAnswer)
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)
	require.Equal(t, 9, out.Recommendations[0].Rating)
	require.Equal(t, models.ReasonGoodFit, out.Recommendations[0].Reason)
	require.Equal(t, "Good overall fit.", out.Analysis)
}

func TestParseScoreResponseStripsFences(t *testing.T) {
	fenced := "```json\n" + sampleAnswer + "\n```"
	out, err := ParseScoreResponse(fenced)
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)

	bare := "```\n" + sampleAnswer + "\n```"
	out, err = ParseScoreResponse(bare)
	require.NoError(t, err)
	require.InDelta(t, 88.0, out.Recommendations[0].MatchScore, 1e-9)
}

func TestParseScoreResponseRejectsGarbage(t *testing.T) {
	_, err := ParseScoreResponse("I could not find any matching jobs, sorry!")
	require.Error(t, err)
}

func TestBuildPromptIncludesJobsAndProfile(t *testing.T) {
	jobID := uuid.New()
	profile := &models.SeekerProfile{
		Headline:       "Accessibility-minded Go developer",
		WorkPreference: models.WorkRemote,
	}

	prompt, err := buildPrompt(ScoreRequest{
		Profile: profile,
		Jobs: []models.Job{
			{ID: jobID, Title: "Backend Engineer", Location: "Jakarta"},
		},
		Preferences: Preferences{
			MaxRecommendations:       10,
			MinMatchScore:            50,
			PrioritizeAccommodations: true,
		},
	})
	require.NoError(t, err)

	require.Contains(t, prompt, jobID.String())
	require.Contains(t, prompt, "Accessibility-minded Go developer")
	require.Contains(t, prompt, "Weight accommodation fit heavily")
	require.Contains(t, prompt, "at most 10 recommendations")
}

func TestBuildPromptTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("x", 5000)
	prompt, err := buildPrompt(ScoreRequest{
		Profile: &models.SeekerProfile{},
		Jobs:    []models.Job{{ID: uuid.New(), Description: long}},
	})
	require.NoError(t, err)
	require.NotContains(t, prompt, strings.Repeat("x", 1501))
}
