package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/intellilearn/backend/core/course"
)

type courseRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	TeacherID   string    `db:"teacher_id"`
	Students    []byte    `db:"students"`
	Assignments []byte    `db:"assignments"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type CourseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*CourseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *CourseRepository) row(crs course.Course) (courseRow, error) {
	students := crs.Students
	if students == nil {
		students = make([]string, 0)
	}
	studentsJSON, err := json.Marshal(students)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "marshaling students")
	}
	assignments := crs.Assignments
	if assignments == nil {
		assignments = make([]course.Assignment, 0)
	}
	assignmentsJSON, err := json.Marshal(assignments)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "marshaling assignments")
	}
	return courseRow{
		ID:          crs.ID,
		Title:       crs.Title,
		Description: crs.Description,
		TeacherID:   crs.TeacherID,
		Students:    studentsJSON,
		Assignments: assignmentsJSON,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}, nil
}

func (repo *CourseRepository) unrow(row courseRow) (course.Course, error) {
	crs := course.Course{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		TeacherID:   row.TeacherID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Students, &crs.Students); err != nil {
		return course.Course{}, errors.Wrap(err, "unmarshaling students")
	}
	if err := json.Unmarshal(row.Assignments, &crs.Assignments); err != nil {
		return course.Course{}, errors.Wrap(err, "unmarshaling assignments")
	}
	return crs, nil
}

func (repo *CourseRepository) unrowSlice(rows []courseRow) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs, err := repo.unrow(row)
		if err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo *CourseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row, err := repo.row(crs)
	if err != nil {
		return course.Course{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, description, teacher_id, students, assignments, created_at, updated_at)
		VALUES (:id, :title, :description, :teacher_id, :students, :assignments, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *CourseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return repo.unrow(row)
}

func (repo *CourseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM course WHERE teacher_id = $1 ORDER BY created_at ASC`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by teacher")
	}
	return repo.unrowSlice(rows)
}

func (repo *CourseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	var rows []courseRow
	// students is a JSONB array of student IDs
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM course WHERE students @> to_jsonb(ARRAY[$1::text]) ORDER BY created_at ASC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by student")
	}
	return repo.unrowSlice(rows)
}

func (repo *CourseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.UpdatedAt.IsZero() {
		crs.UpdatedAt = time.Now().UTC()
	}
	row, err := repo.row(crs)
	if err != nil {
		return course.Course{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET title = :title, description = :description, students = :students,
		    assignments = :assignments, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *CourseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}
