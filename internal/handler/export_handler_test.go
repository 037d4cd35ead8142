package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type exportServiceMock struct {
	req         dto.ExportRequest
	createErr   error
	status      *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportServiceMock) Create(_ context.Context, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	m.req = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}, nil
}

func (m *exportServiceMock) Status(context.Context, string) (*dto.ExportStatusResponse, error) {
	return m.status, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(context.Context, string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func newExportRouter(svc exportJobService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(svc)
	r := gin.New()
	r.POST("/course/exports", h.Create)
	r.GET("/course/exports/:id", h.Status)
	r.GET("/exports/:token", h.Download)
	return r
}

func TestExportHandlerCreate(t *testing.T) {
	svc := &exportServiceMock{}
	w := serve(newExportRouter(svc), http.MethodPost, "/course/exports", `{"format":"pdf"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"QUEUED"`)
	assert.Equal(t, models.ExportFormatPDF, svc.req.Format)
	assert.Nil(t, svc.req.CourseID)
}

func TestExportHandlerCreateWithoutCourse(t *testing.T) {
	svc := &exportServiceMock{createErr: appErrors.ErrNoActiveCourse}
	w := serve(newExportRouter(svc), http.MethodPost, "/course/exports", `{"format":"csv"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerStatus(t *testing.T) {
	url := "/exports/token"
	svc := &exportServiceMock{status: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100, ResultURL: &url}}
	w := serve(newExportRouter(svc), http.MethodGet, "/course/exports/job-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result_url":"/exports/token"`)

	svc.statusErr = appErrors.Clone(appErrors.ErrNotFound, "export not found")
	w = serve(newExportRouter(svc), http.MethodGet, "/course/exports/job-2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bsc.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,Module\n1,Algorithms\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	svc := &exportServiceMock{download: &service.ExportDownload{File: file, Filename: "bsc.csv", Format: models.ExportFormatCSV}}
	w := serve(newExportRouter(svc), http.MethodGet, "/exports/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="bsc.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Year,Module\n1,Algorithms\n", w.Body.String())
}

func TestExportHandlerDownloadRejectsBadToken(t *testing.T) {
	svc := &exportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	w := serve(newExportRouter(svc), http.MethodGet, "/exports/abc", "")
	require.Equal(t, http.StatusForbidden, w.Code)
}
