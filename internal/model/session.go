package model

import "time"

// PomodoroSession is a finished work interval.
type PomodoroSession struct {
	ID          int64     `json:"id"`
	Phase       string    `json:"phase"`
	DurationSec int       `json:"duration_seconds"`
	FinishedAt  time.Time `json:"finished_at"`
}

type User struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	EducationLevel string  `json:"education_level,omitempty"`
	SchoolGrade    *string `json:"school_grade,omitempty"`
	AcademicYear   *string `json:"academic_year,omitempty"`
	FieldOfStudy   *string `json:"field_of_study,omitempty"`
	Institution    *string `json:"institution_name,omitempty"`
}

// Greeting renders the dashboard welcome line.
func (u User) Greeting() string {
	name := u.Name
	if name == "" {
		name = "User"
	}
	text := "Welcome, " + name + "!"
	switch {
	case u.EducationLevel == "school" && u.SchoolGrade != nil && *u.SchoolGrade != "":
		text += " (" + *u.SchoolGrade + ")"
	case u.EducationLevel == "college" && u.AcademicYear != nil && *u.AcademicYear != "":
		text += " (" + *u.AcademicYear + ")"
	}
	return text
}

type Resource struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type RoadmapPhase struct {
	Phase      string     `json:"phase"`
	Duration   string     `json:"duration"`
	Skills     []string   `json:"skills"`
	Resources  []Resource `json:"resources"`
	Projects   []string   `json:"projects"`
	Milestones []string   `json:"milestones,omitempty"`
}

type Roadmap struct {
	Title                 string         `json:"roadmap_title"`
	Phases                []RoadmapPhase `json:"phases"`
	TotalDuration         string         `json:"total_duration"`
	DifficultyProgression string         `json:"difficulty_progression,omitempty"`
}

type RoadmapRecord struct {
	ID           ID      `json:"id"`
	CareerGoal   string  `json:"career_goal"`
	CurrentLevel string  `json:"current_level"`
	Timeframe    string  `json:"timeframe"`
	CreatedAt    string  `json:"created_at"`
	Roadmap      Roadmap `json:"roadmap_data"`
}
