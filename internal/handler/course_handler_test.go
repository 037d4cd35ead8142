package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type courseServiceMock struct {
	current    *models.Course
	cacheHit   bool
	err        error
	setupReq   dto.SetupCourseRequest
	gradeID    string
	gradeReq   dto.UpdateGradeRequest
	archived   []models.ArchivedCourse
	archivedID string
}

func (m *courseServiceMock) Current(context.Context) (*models.Course, bool, error) {
	return m.current, m.cacheHit, m.err
}

func (m *courseServiceMock) Setup(_ context.Context, req dto.SetupCourseRequest) (*dto.SetupCourseResponse, error) {
	m.setupReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SetupCourseResponse{Message: "Course setup successful", CourseID: "course-1"}, nil
}

func (m *courseServiceMock) UpdateComponentGrade(_ context.Context, id string, req dto.UpdateGradeRequest) (*dto.UpdateGradeResponse, error) {
	m.gradeID = id
	m.gradeReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UpdateGradeResponse{Message: "Grade updated successfully", ComponentID: id, Grade: req.Grade}, nil
}

func (m *courseServiceMock) ResetGrades(context.Context) (*dto.ResetGradesResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ResetGradesResponse{Message: "Reset 3 component grades", Count: 3}, nil
}

func (m *courseServiceMock) Archive(context.Context) (*dto.ArchiveCourseResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ArchiveCourseResponse{Message: "Course archived successfully", CourseID: "course-1"}, nil
}

func (m *courseServiceMock) ListArchived(context.Context) ([]models.ArchivedCourse, error) {
	return m.archived, m.err
}

func (m *courseServiceMock) GetArchived(_ context.Context, id string) (*models.Course, bool, error) {
	m.archivedID = id
	return m.current, m.cacheHit, m.err
}

func newCourseRouter(svc courseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCourseHandler(svc)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/course/current", h.Current)
	r.POST("/course/setup", h.Setup)
	r.PATCH("/course/component/:id", h.UpdateComponentGrade)
	r.POST("/course/reset-grades", h.ResetGrades)
	r.POST("/course/archive", h.Archive)
	r.GET("/course/archived", h.ListArchived)
	r.GET("/course/archived/:id", h.GetArchived)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestCourseHandlerCurrent(t *testing.T) {
	total := 74.0
	svc := &courseServiceMock{current: &models.Course{ID: "course-1", Name: "BSc", TotalPercentage: &total}, cacheHit: true}

	w := serve(newCourseRouter(svc), http.MethodGet, "/course/current", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])

	var course models.Course
	require.NoError(t, json.Unmarshal(env.Data, &course))
	assert.Equal(t, "course-1", course.ID)
	require.NotNil(t, course.TotalPercentage)
	assert.Equal(t, 74.0, *course.TotalPercentage)
}

func TestCourseHandlerCurrentWithoutCourse(t *testing.T) {
	svc := &courseServiceMock{err: appErrors.ErrNoActiveCourse}

	w := serve(newCourseRouter(svc), http.MethodGet, "/course/current", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_ACTIVE_COURSE", env.Error.Code)
}

func TestCourseHandlerSetup(t *testing.T) {
	svc := &courseServiceMock{}
	body := `{"name":"BSc","years":[{"year_number":1,"weight":100,"modules":[{"module_name":"Algorithms","credits":20,"components":[{"name":"Exam","weight":100,"grade":null}]}]}]}`

	w := serve(newCourseRouter(svc), http.MethodPost, "/course/setup", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"course_id":"course-1"`)
	assert.Equal(t, "BSc", svc.setupReq.Name)
	require.Len(t, svc.setupReq.Years, 1)
	assert.Equal(t, "Algorithms", svc.setupReq.Years[0].Modules[0].ModuleName)
	assert.Nil(t, svc.setupReq.Years[0].Modules[0].Components[0].Grade)
}

func TestCourseHandlerSetupRejectsMalformedJSON(t *testing.T) {
	w := serve(newCourseRouter(&courseServiceMock{}), http.MethodPost, "/course/setup", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestCourseHandlerSetupPropagatesWeightErrors(t *testing.T) {
	svc := &courseServiceMock{err: appErrors.Clone(appErrors.ErrInvalidWeights, "year weights must sum to 100 (currently 90)")}
	w := serve(newCourseRouter(svc), http.MethodPost, "/course/setup", `{"name":"x","years":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "INVALID_WEIGHTS", env.Error.Code)
	assert.Contains(t, env.Error.Message, "currently 90")
}

func TestCourseHandlerUpdateComponentGrade(t *testing.T) {
	svc := &courseServiceMock{}
	r := newCourseRouter(svc)

	w := serve(r, http.MethodPatch, "/course/component/comp-1", `{"grade":82.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "comp-1", svc.gradeID)
	require.NotNil(t, svc.gradeReq.Grade)
	assert.Equal(t, 82.5, *svc.gradeReq.Grade)

	w = serve(r, http.MethodPatch, "/course/component/comp-1", `{"grade":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.gradeReq.Grade)
	assert.Contains(t, w.Body.String(), `"grade":null`)
}

func TestCourseHandlerUpdateComponentGradeErrors(t *testing.T) {
	svc := &courseServiceMock{err: appErrors.Clone(appErrors.ErrInvalidGrade, "grade must be between 0 and 100")}
	w := serve(newCourseRouter(svc), http.MethodPatch, "/course/component/comp-1", `{"grade":101}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_GRADE", decode(t, w).Error.Code)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "component not found")
	w = serve(newCourseRouter(svc), http.MethodPatch, "/course/component/missing", `{"grade":50}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerResetAndArchive(t *testing.T) {
	r := newCourseRouter(&courseServiceMock{})

	w := serve(r, http.MethodPost, "/course/reset-grades", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	w = serve(r, http.MethodPost, "/course/archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Course archived successfully")

	r = newCourseRouter(&courseServiceMock{err: appErrors.ErrNoActiveCourse})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/course/reset-grades", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/course/archive", "").Code)
}

func TestCourseHandlerArchived(t *testing.T) {
	svc := &courseServiceMock{
		archived: []models.ArchivedCourse{{ID: "old-1", Name: "BA History"}},
		current:  &models.Course{ID: "old-1", Name: "BA History", IsArchived: true},
	}
	r := newCourseRouter(svc)

	w := serve(r, http.MethodGet, "/course/archived", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, float64(1), env.Meta["total"])
	assert.Contains(t, string(env.Data), "BA History")

	w = serve(r, http.MethodGet, "/course/archived/old-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old-1", svc.archivedID)
	assert.Equal(t, false, decode(t, w).Meta["cache_hit"])
}
