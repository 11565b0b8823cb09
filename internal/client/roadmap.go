package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

const roadmapSchemaURL = "roadmap.schema.json"

const roadmapSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["roadmap_title", "phases"],
  "properties": {
    "roadmap_title": {"type": "string", "minLength": 1},
    "total_duration": {"type": "string"},
    "difficulty_progression": {"type": "string"},
    "phases": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["phase"],
        "properties": {
          "phase": {"type": "string"},
          "duration": {"type": "string"},
          "skills": {"type": "array", "items": {"type": "string"}},
          "projects": {"type": "array", "items": {"type": "string"}},
          "milestones": {"type": "array", "items": {"type": "string"}},
          "resources": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "url": {"type": "string"},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var roadmapSchema = jsonschema.MustCompileString(roadmapSchemaURL, roadmapSchemaJSON)

type rawRoadmapRecord struct {
	ID           model.ID        `json:"id"`
	CareerGoal   string          `json:"career_goal"`
	CurrentLevel string          `json:"current_level"`
	Timeframe    string          `json:"timeframe"`
	CreatedAt    string          `json:"created_at"`
	RoadmapData  json.RawMessage `json:"roadmap_data"`
}

// Roadmaps returns the saved learning roadmaps, newest first as the API
// orders them. Records whose roadmap document is not valid are skipped.
func (c *Client) Roadmaps(ctx context.Context) ([]model.RoadmapRecord, error) {
	var raw []rawRoadmapRecord
	if err := c.do(ctx, http.MethodGet, "/api/roadmap/user", nil, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]model.RoadmapRecord, 0, len(raw))
	for _, r := range raw {
		roadmap, err := ParseRoadmap(r.RoadmapData)
		if err != nil {
			c.logger.Warn("skipping invalid roadmap", zap.String("id", string(r.ID)), zap.Error(err))
			continue
		}
		out = append(out, model.RoadmapRecord{
			ID:           r.ID,
			CareerGoal:   r.CareerGoal,
			CurrentLevel: r.CurrentLevel,
			Timeframe:    r.Timeframe,
			CreatedAt:    r.CreatedAt,
			Roadmap:      roadmap,
		})
	}
	return out, nil
}

// ErrIncomplete is returned before any request when a required field is blank.
var ErrIncomplete = errors.New("missing required field")

// RoadmapRequest asks the API to generate a learning roadmap. Interests is
// optional.
type RoadmapRequest struct {
	CareerGoal   string `json:"career_goal"`
	CurrentLevel string `json:"current_level"`
	Timeframe    string `json:"timeframe"`
	Interests    string `json:"specific_interests"`
}

// GenerateRoadmap has the API build and save a new roadmap. The answer is
// checked against the same schema as saved roadmaps.
func (c *Client) GenerateRoadmap(ctx context.Context, req RoadmapRequest) (model.Roadmap, error) {
	switch {
	case strings.TrimSpace(req.CareerGoal) == "":
		return model.Roadmap{}, fmt.Errorf("career goal: %w", ErrIncomplete)
	case strings.TrimSpace(req.CurrentLevel) == "":
		return model.Roadmap{}, fmt.Errorf("current level: %w", ErrIncomplete)
	case strings.TrimSpace(req.Timeframe) == "":
		return model.Roadmap{}, fmt.Errorf("timeframe: %w", ErrIncomplete)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/roadmap/generate", req, nil, &raw); err != nil {
		return model.Roadmap{}, err
	}
	return ParseRoadmap(raw)
}

// CareerAdvice sends the student's interests and goals and returns the
// counsellor's answer as plain text.
func (c *Client) CareerAdvice(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("input: %w", ErrIncomplete)
	}

	var resp struct {
		Advice string `json:"advice"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/career-advice", map[string]string{"input": input}, nil, &resp); err != nil {
		return "", err
	}
	if resp.Advice == "" {
		return "", errors.New("career advice: empty answer")
	}
	return resp.Advice, nil
}

// ParseRoadmap validates and decodes a roadmap document. The API stores the
// document as a JSON string, so a string holding JSON is unwrapped first.
func ParseRoadmap(data json.RawMessage) (model.Roadmap, error) {
	var roadmap model.Roadmap

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return roadmap, fmt.Errorf("roadmap: %w", err)
		}
		data = json.RawMessage(inner)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return roadmap, fmt.Errorf("roadmap: %w", err)
	}
	if err := roadmapSchema.Validate(doc); err != nil {
		return roadmap, fmt.Errorf("roadmap: %w", err)
	}
	if err := json.Unmarshal(data, &roadmap); err != nil {
		return roadmap, fmt.Errorf("roadmap: %w", err)
	}
	return roadmap, nil
}
