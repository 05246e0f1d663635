package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/intellilearn/backend/core"
)

// Assignment statuses
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

type Assignment struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Points      float64    `json:"points"`
	Difficulty  string     `json:"difficulty,omitempty"` // easy, medium, hard
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Attempts    int        `json:"attempts"`
	Score       *float64   `json:"score,omitempty"` // percentage; set on grading
}

type Course struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TeacherID   string       `json:"teacher_id"`
	Students    []string     `json:"students"`
	Assignments []Assignment `json:"assignments"`
	CreatedAt   time.Time    `json:"created_at"` // UTC
	UpdatedAt   time.Time    `json:"updated_at"` // UTC
}

func (c *Course) HasStudent(studentID string) bool {
	for _, id := range c.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

func (c *Course) FindAssignment(assignmentID string) (int, bool) {
	for i, a := range c.Assignments {
		if a.ID == assignmentID {
			return i, true
		}
	}
	return -1, false
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// NewAssignment contains information needed to add an Assignment to a Course.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Points      float64   `json:"points" validate:"omitempty,gte=0"`
	Difficulty  string    `json:"difficulty" validate:"omitempty,difficulty"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// Grade contains a teacher's grading of a submitted Assignment.
type Grade struct {
	Score float64 `json:"score" validate:"gte=0,lte=100"`
}

func (g Grade) Validate(validate *validator.Validate) error {
	return validate.Struct(g)
}

// AddStudent identifies the student to enroll in a Course.
type AddStudent struct {
	StudentID string `json:"student_id" validate:"required"`
}

func (as AddStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(as)
}
