// Package client is a Go SDK for the gradebook REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/models"
)

// Request and response types shared with the server.
type (
	Course              = models.Course
	Year                = models.Year
	Module              = models.Module
	Component           = models.Component
	Progress            = models.Progress
	ArchivedCourse      = models.ArchivedCourse
	ExportFormat        = models.ExportFormat
	SetupCourseRequest  = dto.SetupCourseRequest
	YearInput           = dto.YearInput
	ModuleInput         = dto.ModuleInput
	ComponentInput      = dto.ComponentInput
	SetupCourseResponse = dto.SetupCourseResponse
	UpdateGradeResponse = dto.UpdateGradeResponse
	ResetGradesResponse = dto.ResetGradesResponse
	ArchiveResponse     = dto.ArchiveCourseResponse
	ExportJob           = dto.ExportJobResponse
	ExportStatus        = dto.ExportStatusResponse
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("gradebook: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gradebook: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client talks to a gradebook API instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CurrentCourse fetches the aggregated active course.
func (c *Client) CurrentCourse(ctx context.Context) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodGet, "/course/current", nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// SetupCourse validates the tree locally and submits it as a full replace.
func (c *Client) SetupCourse(ctx context.Context, req SetupCourseRequest) (*SetupCourseResponse, error) {
	if err := dto.ValidateCourseTree(req); err != nil {
		return nil, err
	}
	var resp SetupCourseResponse
	if err := c.do(ctx, http.MethodPost, "/course/setup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateComponentGrade sets a grade, or clears it when grade is nil.
func (c *Client) UpdateComponentGrade(ctx context.Context, componentID string, grade *float64) (*UpdateGradeResponse, error) {
	if err := dto.ValidateGrade(grade); err != nil {
		return nil, err
	}
	if strings.TrimSpace(componentID) == "" {
		return nil, fmt.Errorf("component id is required")
	}
	var resp UpdateGradeResponse
	path := "/course/component/" + url.PathEscape(componentID)
	if err := c.do(ctx, http.MethodPatch, path, dto.UpdateGradeRequest{Grade: grade}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetGrades clears every grade of the active course.
func (c *Client) ResetGrades(ctx context.Context) (*ResetGradesResponse, error) {
	var resp ResetGradesResponse
	if err := c.do(ctx, http.MethodPost, "/course/reset-grades", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ArchiveCourse archives the active course.
func (c *Client) ArchiveCourse(ctx context.Context) (*ArchiveResponse, error) {
	var resp ArchiveResponse
	if err := c.do(ctx, http.MethodPost, "/course/archive", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ArchivedCourses lists archived course summaries.
func (c *Client) ArchivedCourses(ctx context.Context) ([]ArchivedCourse, error) {
	var courses []ArchivedCourse
	if err := c.do(ctx, http.MethodGet, "/course/archived", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ArchivedCourse fetches the aggregated tree of one archived course.
func (c *Client) ArchivedCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodGet, "/course/archived/"+url.PathEscape(id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// CreateExport queues a transcript export. An empty courseID targets the active course.
func (c *Client) CreateExport(ctx context.Context, format ExportFormat, courseID string) (*ExportJob, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	req := dto.ExportRequest{Format: format}
	if courseID != "" {
		req.CourseID = &courseID
	}
	var job ExportJob
	if err := c.do(ctx, http.MethodPost, "/course/exports", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ExportStatus reports the state of an export job.
func (c *Client) ExportStatus(ctx context.Context, id string) (*ExportStatus, error) {
	var status ExportStatus
	if err := c.do(ctx, http.MethodGet, "/course/exports/"+url.PathEscape(id), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DownloadURL resolves a result_url returned by ExportStatus against the base URL.
func (c *Client) DownloadURL(resultURL string) string {
	if strings.HasPrefix(resultURL, "http://") || strings.HasPrefix(resultURL, "https://") {
		return resultURL
	}
	return c.baseURL + "/" + strings.TrimLeft(resultURL, "/")
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Error != nil {
			if env.Error.Status == 0 {
				env.Error.Status = resp.StatusCode
			}
			return env.Error
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
