package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type courseStore interface {
	FindActive(ctx context.Context) (*models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListArchived(ctx context.Context) ([]models.ArchivedCourse, error)
	ReplaceActive(ctx context.Context, course *models.Course) error
	UpdateComponentGrade(ctx context.Context, componentID string, grade *float64, at time.Time) error
	ResetActiveGrades(ctx context.Context, at time.Time) (string, int64, error)
	ArchiveActive(ctx context.Context, at time.Time) (string, error)
}

type courseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CourseService owns the course tree lifecycle and its aggregated views.
type CourseService struct {
	store     courseStore
	cache     courseCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	// cacheMu orders cache writes of the current view against invalidation.
	// generation changes on every mutation.
	cacheMu    sync.Mutex
	generation uint64
}

// NewCourseService constructs the service. cache and metrics may be nil.
func NewCourseService(store courseStore, cache courseCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		store:     store,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the aggregated active course. The boolean reports a cache hit.
func (s *CourseService) Current(ctx context.Context) (*models.Course, bool, error) {
	if s.cache != nil {
		var cached models.Course
		if hit, _ := s.cache.Get(ctx, cacheKeyCurrentCourse, &cached); hit {
			return &cached, true, nil
		}
	}

	gen := s.currentGeneration()
	start := time.Now()
	course, err := s.store.FindActive(ctx)
	s.metrics.ObserveDBQuery("find_active_course", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.ErrNoActiveCourse
		}
		return nil, false, appErrors.Internal(err, "failed to load course")
	}
	Aggregate(course)

	if s.cache != nil {
		s.cacheMu.Lock()
		// A mutation committed during the read; its view may be newer than ours.
		if s.generation == gen {
			_ = s.cache.Set(ctx, cacheKeyCurrentCourse, course, 0)
		}
		s.cacheMu.Unlock()
	}
	return course, false, nil
}

func (s *CourseService) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// Setup replaces the active course tree, creating the course when none exists.
func (s *CourseService) Setup(ctx context.Context, req dto.SetupCourseRequest) (*dto.SetupCourseResponse, error) {
	if err := dto.ValidateCourseTree(req); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := courseFromRequest(req, s.now())
	start := time.Now()
	err := s.store.ReplaceActive(ctx, course)
	s.metrics.ObserveDBQuery("replace_course", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save course")
	}

	s.mutated(ctx, "setup", zap.String("course_id", course.ID), zap.Int("years", len(course.Years)))
	return &dto.SetupCourseResponse{Message: "Course setup successful", CourseID: course.ID}, nil
}

// UpdateComponentGrade sets or clears one grade of the active course.
func (s *CourseService) UpdateComponentGrade(ctx context.Context, componentID string, req dto.UpdateGradeRequest) (*dto.UpdateGradeResponse, error) {
	if err := dto.ValidateGrade(req.Grade); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(componentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "component not found")
	}

	start := time.Now()
	err := s.store.UpdateComponentGrade(ctx, componentID, req.Grade, s.now())
	s.metrics.ObserveDBQuery("update_component_grade", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "component not found")
		}
		return nil, appErrors.Internal(err, "failed to update grade")
	}

	s.mutated(ctx, "update_grade", zap.String("component_id", componentID))
	return &dto.UpdateGradeResponse{Message: "Grade updated successfully", ComponentID: componentID, Grade: req.Grade}, nil
}

// ResetGrades clears every grade of the active course, keeping its structure.
func (s *CourseService) ResetGrades(ctx context.Context) (*dto.ResetGradesResponse, error) {
	start := time.Now()
	courseID, count, err := s.store.ResetActiveGrades(ctx, s.now())
	s.metrics.ObserveDBQuery("reset_grades", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveCourse
		}
		return nil, appErrors.Internal(err, "failed to reset grades")
	}

	s.mutated(ctx, "reset_grades", zap.String("course_id", courseID), zap.Int64("count", count))
	return &dto.ResetGradesResponse{Message: fmt.Sprintf("Reset %d component grades", count), Count: int(count)}, nil
}

// Archive moves the active course to the archive.
func (s *CourseService) Archive(ctx context.Context) (*dto.ArchiveCourseResponse, error) {
	start := time.Now()
	courseID, err := s.store.ArchiveActive(ctx, s.now())
	s.metrics.ObserveDBQuery("archive_course", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveCourse
		}
		return nil, appErrors.Internal(err, "failed to archive course")
	}

	s.mutated(ctx, "archive", zap.String("course_id", courseID))
	return &dto.ArchiveCourseResponse{Message: "Course archived successfully", CourseID: courseID}, nil
}

// ListArchived returns archived course summaries, oldest archive first.
func (s *CourseService) ListArchived(ctx context.Context) ([]models.ArchivedCourse, error) {
	courses, err := s.store.ListArchived(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list archived courses")
	}
	return courses, nil
}

// GetArchived returns the aggregated tree of one archived course. Archived
// courses never change, so the view is cached without invalidation.
func (s *CourseService) GetArchived(ctx context.Context, id string) (*models.Course, bool, error) {
	key := cacheKeyArchivedPrefix + id
	if s.cache != nil {
		var cached models.Course
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !course.IsArchived {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "archived course not found")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, course, 0)
	}
	return course, false, nil
}

// Get returns the aggregated tree of any course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	start := time.Now()
	course, err := s.store.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("find_course", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	Aggregate(course)
	return course, nil
}

func (s *CourseService) mutated(ctx context.Context, operation string, fields ...zap.Field) {
	s.cacheMu.Lock()
	s.generation++
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cacheKeyCurrentCourse)
	}
	s.cacheMu.Unlock()
	s.metrics.RecordCourseMutation(operation)
	s.logger.Info("course "+strings.ReplaceAll(operation, "_", " "), fields...)
}

func courseFromRequest(req dto.SetupCourseRequest, now time.Time) *models.Course {
	course := &models.Course{
		Name:      strings.TrimSpace(req.Name),
		UpdatedAt: now,
		Years:     make([]models.Year, 0, len(req.Years)),
	}
	for _, y := range req.Years {
		year := models.Year{YearNumber: y.YearNumber, Weight: y.Weight, Modules: make([]models.Module, 0, len(y.Modules))}
		for _, m := range y.Modules {
			module := models.Module{
				ModuleName: strings.TrimSpace(m.ModuleName),
				Credits:    m.Credits,
				Components: make([]models.Component, 0, len(m.Components)),
			}
			for _, c := range m.Components {
				module.Components = append(module.Components, models.Component{
					Name:   strings.TrimSpace(c.Name),
					Weight: c.Weight,
					Grade:  c.Grade,
				})
			}
			year.Modules = append(year.Modules, module)
		}
		course.Years = append(course.Years, year)
	}
	return course
}
