package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRoadmap = `{
	"roadmap_title": "Path to Data Scientist",
	"phases": [{
		"phase": "Phase 1: Foundation",
		"duration": "2-3 months",
		"skills": ["Python", "Statistics"],
		"resources": [{"name": "Intro to Stats", "type": "course", "url": ""}],
		"projects": ["EDA notebook"],
		"milestones": ["Finish course"]
	}],
	"total_duration": "6 months",
	"difficulty_progression": "Beginner → Intermediate → Advanced"
}`

func TestParseRoadmap(t *testing.T) {
	encoded, err := json.Marshal(validRoadmap)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "object", data: validRoadmap},
		{name: "json string holding the document", data: string(encoded)},
		{name: "missing title", data: `{"phases": []}`, wantErr: true},
		{name: "skills not strings", data: `{"roadmap_title": "x", "phases": [{"phase": "p", "skills": [1, 2]}]}`, wantErr: true},
		{name: "resource without name", data: `{"roadmap_title": "x", "phases": [{"phase": "p", "resources": [{"type": "book"}]}]}`, wantErr: true},
		{name: "not json", data: `"roadmap: TBD"`, wantErr: true},
		{name: "null", data: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoadmap(json.RawMessage(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Path to Data Scientist", got.Title)
			require.Len(t, got.Phases, 1)
			assert.Equal(t, []string{"Python", "Statistics"}, got.Phases[0].Skills)
			assert.Equal(t, "course", got.Phases[0].Resources[0].Type)
		})
	}
}

func TestClient_Roadmaps_SkipsInvalid(t *testing.T) {
	c, api := setup(t, testToken)
	api.with(func(f *fakeAPI) {
		f.roadmaps = `[
			{"id": 2, "career_goal": "Data Scientist", "current_level": "beginner", "timeframe": "6 months", "roadmap_data": ` + validRoadmap + `},
			{"id": 1, "career_goal": "Chef", "roadmap_data": "{broken"}
		]`
	})

	got, err := c.Roadmaps(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Data Scientist", got[0].CareerGoal)
	assert.Equal(t, "6 months", got[0].Roadmap.TotalDuration)
}

func TestClient_GenerateRoadmap(t *testing.T) {
	c, api := setup(t, testToken)
	ctx := context.Background()
	api.with(func(f *fakeAPI) { f.generated = validRoadmap })

	req := RoadmapRequest{CareerGoal: "Data Scientist", CurrentLevel: "beginner", Timeframe: "6 months", Interests: "NLP"}
	got, err := c.GenerateRoadmap(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Path to Data Scientist", got.Title)
	assert.Equal(t, "6 months", got.TotalDuration)
	api.with(func(f *fakeAPI) { assert.Equal(t, req, f.lastRoadmap) })

	api.with(func(f *fakeAPI) { f.generated = `{"phases": []}` })
	_, err = c.GenerateRoadmap(ctx, req)
	assert.Error(t, err, "answers that fail the schema are rejected")

	_, err = c.GenerateRoadmap(ctx, RoadmapRequest{CareerGoal: "Chef", CurrentLevel: "beginner"})
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = c.WithToken("").GenerateRoadmap(ctx, req)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_CareerAdvice(t *testing.T) {
	c, api := setup(t, testToken)
	ctx := context.Background()
	api.with(func(f *fakeAPI) { f.advice = "1. Learn SQL" })

	got, err := c.CareerAdvice(ctx, "  I like data and biology  ")
	require.NoError(t, err)
	assert.Equal(t, "1. Learn SQL", got)
	api.with(func(f *fakeAPI) { assert.Equal(t, "I like data and biology", f.lastInput) })

	_, err = c.CareerAdvice(ctx, "   ")
	assert.ErrorIs(t, err, ErrIncomplete)

	api.with(func(f *fakeAPI) { f.advice = "" })
	_, err = c.CareerAdvice(ctx, "anything")
	assert.Error(t, err)
}
