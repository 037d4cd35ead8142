package dto

import "github.com/noah-isme/gradebook-api/internal/models"

// ExportRequest queues a transcript export. CourseID defaults to the active course.
type ExportRequest struct {
	Format   models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	CourseID *string             `json:"course_id,omitempty" validate:"omitempty,uuid"`
}

// ExportJobResponse is returned when an export is queued.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, once finished, the download link.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	CourseID  string              `json:"course_id"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
