package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const courseColumns = `id, name, is_archived, created_at, updated_at, archived_at`

// CourseRepository persists course trees.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindActive loads the active course with its full tree.
func (r *CourseRepository) FindActive(ctx context.Context) (*models.Course, error) {
	var course models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE is_archived = FALSE LIMIT 1`
	if err := r.db.GetContext(ctx, &course, query); err != nil {
		return nil, fmt.Errorf("get active course: %w", err)
	}
	if err := r.loadTree(ctx, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByID loads any course, active or archived, with its full tree.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if err := r.loadTree(ctx, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListArchived returns archived course summaries, oldest archive first.
func (r *CourseRepository) ListArchived(ctx context.Context) ([]models.ArchivedCourse, error) {
	const query = `SELECT id, name, created_at, updated_at, archived_at FROM courses
WHERE is_archived = TRUE ORDER BY archived_at ASC NULLS FIRST, created_at ASC`
	courses := make([]models.ArchivedCourse, 0)
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list archived courses: %w", err)
	}
	return courses, nil
}

// ReplaceActive stores course as the active course. An existing active course
// keeps its id and created_at while its name, updated_at and entire tree are
// replaced. Identifiers of the stored tree are written back into course.
func (r *CourseRepository) ReplaceActive(ctx context.Context, course *models.Course) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing models.Course
	err = tx.GetContext(ctx, &existing, `SELECT `+courseColumns+` FROM courses WHERE is_archived = FALSE LIMIT 1 FOR UPDATE`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		course.ID = uuid.NewString()
		course.CreatedAt = course.UpdatedAt
		const insert = `INSERT INTO courses (id, name, is_archived, created_at, updated_at) VALUES (:id, :name, FALSE, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, course); err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lock active course: %w", err)
	default:
		course.ID = existing.ID
		course.CreatedAt = existing.CreatedAt
		if _, err := tx.ExecContext(ctx, `UPDATE courses SET name = $1, updated_at = $2 WHERE id = $3`, course.Name, course.UpdatedAt, course.ID); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM course_years WHERE course_id = $1`, course.ID); err != nil {
			return fmt.Errorf("clear course tree: %w", err)
		}
	}
	course.IsArchived = false
	course.ArchivedAt = nil

	if err := insertTree(ctx, tx, course); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace course: %w", err)
	}
	return nil
}

// UpdateComponentGrade sets or clears the grade of a component belonging to
// the active course and touches the course's updated_at. It returns
// sql.ErrNoRows when no such component exists.
func (r *CourseRepository) UpdateComponentGrade(ctx context.Context, componentID string, grade *float64, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update grade: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const update = `UPDATE course_components cc SET grade = $1
FROM course_modules m, course_years y, courses c
WHERE cc.id = $2 AND cc.module_id = m.id AND m.year_id = y.id AND y.course_id = c.id AND c.is_archived = FALSE
RETURNING c.id`
	var courseID string
	if err := tx.GetContext(ctx, &courseID, update, grade, componentID); err != nil {
		return fmt.Errorf("update component grade: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE courses SET updated_at = $1 WHERE id = $2`, at, courseID); err != nil {
		return fmt.Errorf("touch course: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update grade: %w", err)
	}
	return nil
}

// ResetActiveGrades clears every component grade of the active course and
// returns the course id with the number of components reset.
func (r *CourseRepository) ResetActiveGrades(ctx context.Context, at time.Time) (string, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("begin reset grades: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var courseID string
	if err := tx.GetContext(ctx, &courseID, `SELECT id FROM courses WHERE is_archived = FALSE LIMIT 1 FOR UPDATE`); err != nil {
		return "", 0, fmt.Errorf("lock active course: %w", err)
	}
	const reset = `UPDATE course_components SET grade = NULL WHERE module_id IN (
SELECT m.id FROM course_modules m JOIN course_years y ON y.id = m.year_id WHERE y.course_id = $1)`
	res, err := tx.ExecContext(ctx, reset, courseID)
	if err != nil {
		return "", 0, fmt.Errorf("reset grades: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return "", 0, fmt.Errorf("reset grades rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE courses SET updated_at = $1 WHERE id = $2`, at, courseID); err != nil {
		return "", 0, fmt.Errorf("touch course: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("commit reset grades: %w", err)
	}
	return courseID, count, nil
}

// ArchiveActive marks the active course archived at the given time and returns
// its id. created_at and updated_at are left untouched.
func (r *CourseRepository) ArchiveActive(ctx context.Context, at time.Time) (string, error) {
	const query = `UPDATE courses SET is_archived = TRUE, archived_at = $1 WHERE is_archived = FALSE RETURNING id`
	var id string
	if err := r.db.GetContext(ctx, &id, query, at); err != nil {
		return "", fmt.Errorf("archive course: %w", err)
	}
	return id, nil
}

func insertTree(ctx context.Context, tx *sqlx.Tx, course *models.Course) error {
	var (
		modules    []*models.Module
		components []*models.Component
	)
	for yi := range course.Years {
		year := &course.Years[yi]
		year.ID = uuid.NewString()
		year.CourseID = course.ID
		year.Position = yi
		for mi := range year.Modules {
			module := &year.Modules[mi]
			module.ID = uuid.NewString()
			module.YearID = year.ID
			module.Position = mi
			modules = append(modules, module)
			for ci := range module.Components {
				component := &module.Components[ci]
				component.ID = uuid.NewString()
				component.ModuleID = module.ID
				component.Position = ci
				components = append(components, component)
			}
		}
	}

	if len(course.Years) > 0 {
		const insertYears = `INSERT INTO course_years (id, course_id, year_number, weight, position)
VALUES (:id, :course_id, :year_number, :weight, :position)`
		if _, err := tx.NamedExecContext(ctx, insertYears, course.Years); err != nil {
			return fmt.Errorf("insert years: %w", err)
		}
	}
	if len(modules) > 0 {
		const insertModules = `INSERT INTO course_modules (id, year_id, module_name, credits, position)
VALUES (:id, :year_id, :module_name, :credits, :position)`
		if _, err := tx.NamedExecContext(ctx, insertModules, modules); err != nil {
			return fmt.Errorf("insert modules: %w", err)
		}
	}
	if len(components) > 0 {
		const insertComponents = `INSERT INTO course_components (id, module_id, name, weight, grade, position)
VALUES (:id, :module_id, :name, :weight, :grade, :position)`
		if _, err := tx.NamedExecContext(ctx, insertComponents, components); err != nil {
			return fmt.Errorf("insert components: %w", err)
		}
	}
	return nil
}

func (r *CourseRepository) loadTree(ctx context.Context, course *models.Course) error {
	var years []models.Year
	const yearsQuery = `SELECT id, course_id, year_number, weight, position FROM course_years
WHERE course_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &years, yearsQuery, course.ID); err != nil {
		return fmt.Errorf("list course years: %w", err)
	}

	var modules []models.Module
	const modulesQuery = `SELECT m.id, m.year_id, m.module_name, m.credits, m.position FROM course_modules m
JOIN course_years y ON y.id = m.year_id
WHERE y.course_id = $1 ORDER BY y.position ASC, m.position ASC`
	if err := r.db.SelectContext(ctx, &modules, modulesQuery, course.ID); err != nil {
		return fmt.Errorf("list course modules: %w", err)
	}

	var components []models.Component
	const componentsQuery = `SELECT c.id, c.module_id, c.name, c.weight, c.grade, c.position FROM course_components c
JOIN course_modules m ON m.id = c.module_id
JOIN course_years y ON y.id = m.year_id
WHERE y.course_id = $1 ORDER BY y.position ASC, m.position ASC, c.position ASC`
	if err := r.db.SelectContext(ctx, &components, componentsQuery, course.ID); err != nil {
		return fmt.Errorf("list course components: %w", err)
	}

	byModule := make(map[string][]models.Component, len(modules))
	for _, component := range components {
		byModule[component.ModuleID] = append(byModule[component.ModuleID], component)
	}
	byYear := make(map[string][]models.Module, len(years))
	for _, module := range modules {
		module.Components = byModule[module.ID]
		if module.Components == nil {
			module.Components = []models.Component{}
		}
		byYear[module.YearID] = append(byYear[module.YearID], module)
	}
	for i := range years {
		years[i].Modules = byYear[years[i].ID]
		if years[i].Modules == nil {
			years[i].Modules = []models.Module{}
		}
	}
	if years == nil {
		years = []models.Year{}
	}
	course.Years = years
	return nil
}
