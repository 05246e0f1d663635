package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAccessDenied       = errors.New("access denied")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		// UpdateCourse overwrites the whole course document (students and
		// assignments included).
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	// InteractionRecorder feeds learning interactions into the mastery engine.
	InteractionRecorder interface {
		RecordInteraction(ctx context.Context, learnerID string, in mastery.Interaction) (mastery.Profile, error)
	}

	Service interface {
		Create(ctx context.Context, usr user.User, nc NewCourse) (Course, error)
		GetForUser(ctx context.Context, usr user.User, id string) (Course, error)
		QueryForUser(ctx context.Context, usr user.User) ([]Course, error)
		AddStudent(ctx context.Context, usr user.User, courseID, studentID string) (Course, error)
		AddAssignment(ctx context.Context, usr user.User, courseID string, na NewAssignment) (Course, error)
		SubmitAssignment(ctx context.Context, usr user.User, courseID, assignmentID string) (Assignment, error)
		GradeAssignment(ctx context.Context, usr user.User, courseID, assignmentID string, grade Grade) (Assignment, error)
	}

	service struct {
		repo     Repository
		usrSvc   user.Service
		recorder InteractionRecorder
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, recorder InteractionRecorder, logger core.Logger) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		recorder: recorder,
		logger:   logger,
	}
}

func (svc *service) Create(ctx context.Context, usr user.User, nc NewCourse) (Course, error) {
	if !usr.IsTeacher() {
		return Course{}, ErrAccessDenied
	}
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		TeacherID:   usr.ID,
		Students:    make([]string, 0),
		Assignments: make([]Assignment, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

// GetForUser loads a course if the user may see it: the owning teacher, an
// enrolled student, or a parent of an enrolled student.
func (svc *service) GetForUser(ctx context.Context, usr user.User, id string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !svc.hasAccess(usr, crs) {
		return Course{}, ErrAccessDenied
	}
	return crs, nil
}

func (svc *service) hasAccess(usr user.User, crs Course) bool {
	switch usr.Role {
	case user.RoleTeacher:
		return crs.TeacherID == usr.ID
	case user.RoleStudent:
		return crs.HasStudent(usr.ID)
	case user.RoleParent:
		for _, childID := range usr.Children {
			if crs.HasStudent(childID) {
				return true
			}
		}
	}
	return false
}

// QueryForUser lists the courses a user is involved in: owned (teacher),
// enrolled in (student) or their children's (parent).
func (svc *service) QueryForUser(ctx context.Context, usr user.User) ([]Course, error) {
	switch usr.Role {
	case user.RoleTeacher:
		return svc.repo.QueryCoursesByTeacher(ctx, usr.ID)
	case user.RoleStudent:
		return svc.repo.QueryCoursesByStudent(ctx, usr.ID)
	case user.RoleParent:
		seen := make(map[string]bool)
		courses := make([]Course, 0)
		for _, childID := range usr.Children {
			childCourses, err := svc.repo.QueryCoursesByStudent(ctx, childID)
			if err != nil {
				return nil, err
			}
			for _, crs := range childCourses {
				if !seen[crs.ID] {
					seen[crs.ID] = true
					courses = append(courses, crs)
				}
			}
		}
		return courses, nil
	}
	return []Course{}, nil
}

func (svc *service) AddStudent(ctx context.Context, usr user.User, courseID, studentID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if crs.TeacherID != usr.ID {
		return Course{}, ErrAccessDenied
	}

	student, err := svc.usrSvc.GetByID(ctx, studentID)
	if err != nil {
		if err == user.ErrNotFound {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return Course{}, err
	}
	if !student.IsStudent() {
		return Course{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "user is not a student"})
	}

	if crs.HasStudent(studentID) {
		return crs, nil
	}
	crs.Students = append(crs.Students, studentID)
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) AddAssignment(ctx context.Context, usr user.User, courseID string, na NewAssignment) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if crs.TeacherID != usr.ID {
		return Course{}, ErrAccessDenied
	}

	crs.Assignments = append(crs.Assignments, Assignment{
		ID:          uuid.New().String(),
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		Points:      na.Points,
		Difficulty:  na.Difficulty,
		Status:      StatusPending,
	})
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// SubmitAssignment marks an assignment submitted by an enrolled student and
// records the engagement with the mastery engine.
func (svc *service) SubmitAssignment(ctx context.Context, usr user.User, courseID, assignmentID string) (Assignment, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Assignment{}, err
	}
	if !usr.IsStudent() || !crs.HasStudent(usr.ID) {
		return Assignment{}, ErrAccessDenied
	}

	i, ok := crs.FindAssignment(assignmentID)
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}

	now := time.Now().UTC()
	crs.Assignments[i].Status = StatusSubmitted
	crs.Assignments[i].SubmittedAt = &now
	crs.Assignments[i].Attempts++
	crs.UpdatedAt = now

	crs, err = svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Assignment{}, err
	}

	// a submission is engagement; the mastery gain/loss follows on grading
	if _, err = svc.recorder.RecordInteraction(ctx, usr.ID, mastery.Interaction{
		Type:    mastery.TypeContentView,
		Subject: crs.Title,
		Topic:   crs.Assignments[i].Title,
	}); err != nil {
		svc.logger.Error(fmt.Sprintf("recording submission interaction: %v", err), err)
	}
	return crs.Assignments[i], nil
}

// GradeAssignment sets a submitted assignment's score and feeds the result
// into the mastery profile of every enrolled student. Assignments live on the
// course document, so the grade applies to the whole roster.
func (svc *service) GradeAssignment(ctx context.Context, usr user.User, courseID, assignmentID string, grade Grade) (Assignment, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Assignment{}, err
	}
	if crs.TeacherID != usr.ID {
		return Assignment{}, ErrAccessDenied
	}

	i, ok := crs.FindAssignment(assignmentID)
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}

	score := grade.Score
	crs.Assignments[i].Score = &score
	crs.Assignments[i].Status = StatusGraded
	crs.UpdatedAt = time.Now().UTC()

	crs, err = svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Assignment{}, err
	}

	for _, studentID := range crs.Students {
		if _, err = svc.recorder.RecordInteraction(ctx, studentID, mastery.Interaction{
			Type:       mastery.TypeAssignment,
			Subject:    crs.Title,
			Topic:      crs.Assignments[i].Title,
			Score:      &score,
			Difficulty: crs.Assignments[i].Difficulty,
		}); err != nil {
			svc.logger.Error(fmt.Sprintf("recording grade interaction for %q: %v", studentID, err), err)
		}
	}
	return crs.Assignments[i], nil
}
