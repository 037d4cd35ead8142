package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
)

var courseCols = []string{"id", "name", "is_archived", "created_at", "updated_at", "archived_at"}

func newCourseRepoMock(t *testing.T) (*CourseRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewCourseRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func expectTree(mock sqlmock.Sqlmock, courseID string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_years")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "year_number", "weight", "position"}).
			AddRow("year-1", courseID, 1, 40.0, 0).
			AddRow("year-2", courseID, 2, 60.0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_modules m")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "year_id", "module_name", "credits", "position"}).
			AddRow("mod-1", "year-1", "Algorithms", 20, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_components c")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "module_id", "name", "weight", "grade", "position"}).
			AddRow("comp-1", "mod-1", "Midterm", 40.0, 80.0, 0).
			AddRow("comp-2", "mod-1", "Final", 60.0, nil, 1))
}

func TestCourseRepositoryFindActiveLoadsTree(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE is_archived = FALSE")).
		WillReturnRows(sqlmock.NewRows(courseCols).AddRow("course-1", "BSc", false, now, now, nil))
	expectTree(mock, "course-1")

	course, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, course.Years, 2)
	assert.Equal(t, 1, course.Years[0].YearNumber)
	require.Len(t, course.Years[0].Modules, 1)
	components := course.Years[0].Modules[0].Components
	require.Len(t, components, 2)
	assert.Equal(t, "Midterm", components[0].Name)
	require.NotNil(t, components[0].Grade)
	assert.Equal(t, 80.0, *components[0].Grade)
	assert.Nil(t, components[1].Grade)
	assert.NotNil(t, course.Years[1].Modules)
	assert.Empty(t, course.Years[1].Modules)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindActiveNoRows(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE is_archived = FALSE")).
		WillReturnRows(sqlmock.NewRows(courseCols))

	_, err := repo.FindActive(context.Background())
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func treeCourse(now time.Time) *models.Course {
	return &models.Course{
		Name:      "BSc",
		UpdatedAt: now,
		Years: []models.Year{{
			YearNumber: 1,
			Weight:     100,
			Modules: []models.Module{{
				ModuleName: "Algorithms",
				Credits:    20,
				Components: []models.Component{{Name: "Exam", Weight: 100}},
			}},
		}},
	}
}

func TestCourseRepositoryReplaceActiveKeepsExistingID(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	created := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(courseCols).AddRow("course-1", "Old", false, created, created, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET name = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("BSc", now, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_years WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_years")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_modules")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_components")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := treeCourse(now)
	require.NoError(t, repo.ReplaceActive(context.Background(), course))
	assert.Equal(t, "course-1", course.ID)
	assert.Equal(t, created, course.CreatedAt)
	assert.NotEmpty(t, course.Years[0].ID)
	assert.Equal(t, course.Years[0].ID, course.Years[0].Modules[0].YearID)
	assert.Equal(t, course.Years[0].Modules[0].ID, course.Years[0].Modules[0].Components[0].ModuleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryReplaceActiveCreatesCourse(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(sqlmock.NewRows(courseCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_years")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_modules")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_components")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := treeCourse(now)
	require.NoError(t, repo.ReplaceActive(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, now, course.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryReplaceActiveRollsBackOnFailure(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(sqlmock.NewRows(courseCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_years")).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.ReplaceActive(context.Background(), treeCourse(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert years")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateComponentGrade(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE course_components cc SET grade = $1")).
		WithArgs(72.5, "comp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("course-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET updated_at = $1 WHERE id = $2")).
		WithArgs(now, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	g := 72.5
	require.NoError(t, repo.UpdateComponentGrade(context.Background(), "comp-1", &g, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateComponentGradeUnknown(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE course_components cc")).
		WithArgs(nil, "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.UpdateComponentGrade(context.Background(), "missing", nil, time.Now())
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryResetActiveGrades(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE is_archived = FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("course-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_components SET grade = NULL")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET updated_at")).
		WithArgs(now, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, count, err := repo.ResetActiveGrades(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "course-1", id)
	assert.Equal(t, int64(5), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryArchiveActive(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE courses SET is_archived = TRUE, archived_at = $1 WHERE is_archived = FALSE RETURNING id")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("course-1"))

	id, err := repo.ArchiveActive(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "course-1", id)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE courses SET is_archived = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.ArchiveActive(context.Background(), now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListArchived(t *testing.T) {
	repo, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_archived = TRUE ORDER BY archived_at ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at", "archived_at"}).
			AddRow("course-0", "Foundation", now, now, now))

	courses, err := repo.ListArchived(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Foundation", courses[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
