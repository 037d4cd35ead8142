package service

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/export"
	"github.com/noah-isme/gradebook-api/pkg/storage"
)

type courseReader interface {
	Current(ctx context.Context) (*models.Course, bool, error)
	Get(ctx context.Context, id string) (*models.Course, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	// DownloadPath is the route prefix download links are built on.
	DownloadPath string
	ResultTTL    time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	File      string
	Token     string
	URL       string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportService renders aggregated course transcripts and stores them behind
// signed download links.
type ExportService struct {
	courses courseReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// default CSV and PDF exporters.
func NewExportService(courses courseReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/exports"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdfExporter := export.NewPDFExporter()
		pdfExporter.ColumnWeights = []float64{1, 3, 1, 3, 1, 1, 1.2}
		pdf = pdfExporter
	}
	return &ExportService{
		courses: courses,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the job's course in the requested format and stores it.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("export job nil")
	}
	course, err := s.courses.Get(ctx, job.CourseID)
	if err != nil {
		return nil, err
	}
	dataset := TranscriptDataset(course, s.now())

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported export format %q", job.Format)
	}
	if err != nil {
		return nil, err
	}

	file, err := s.storage.Save(s.filename(course, job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(job.ID, file)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("transcript rendered", zap.String("export_id", job.ID), zap.String("file", file), zap.Int("bytes", len(payload)))

	return &ExportResult{
		File:      file,
		Token:     token,
		URL:       strings.TrimRight(s.cfg.DownloadPath, "/") + "/" + token,
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken validates a download token.
func (s *ExportService) VerifyToken(token string, allowExpired bool) (*storage.DownloadToken, error) {
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to a stored export.
func (s *ExportService) Open(file string) (*os.File, error) {
	return s.storage.Open(file)
}

// Delete removes a stored export.
func (s *ExportService) Delete(file string) error {
	return s.storage.Delete(file)
}

// Cleanup removes files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func (s *ExportService) filename(course *models.Course, job *models.ExportJob) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(course.Name), "-"), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if slug == "" {
		slug = "course"
	}
	return fmt.Sprintf("transcripts/%s_%s_%s.%s", slug, s.now().Format("20060102_150405"), job.ID[:min(8, len(job.ID))], job.Format)
}

// TranscriptDataset flattens an aggregated course into one row per component.
// Years without modules produce a single row so they still appear.
func TranscriptDataset(course *models.Course, generatedAt time.Time) export.Dataset {
	data := export.Dataset{
		Title:   course.Name,
		Headers: []string{"Year", "Module", "Credits", "Component", "Weight (%)", "Grade", "Module Grade"},
		Rows:    make([][]string, 0),
	}

	data.Summary = append(data.Summary,
		export.SummaryLine{Label: "Overall", Value: formatPercent(course.TotalPercentage)},
		export.SummaryLine{Label: "Progress", Value: fmt.Sprintf("%d/%d components (%s%%)", course.Progress.Completed, course.Progress.Total, strconv.FormatFloat(course.Progress.Percentage, 'f', 1, 64))},
	)
	for _, year := range course.Years {
		data.Summary = append(data.Summary, export.SummaryLine{
			Label: fmt.Sprintf("Year %d (%s%%)", year.YearNumber, formatNumber(year.Weight)),
			Value: formatPercent(year.Grade),
		})

		yearLabel := strconv.Itoa(year.YearNumber)
		if len(year.Modules) == 0 {
			data.Rows = append(data.Rows, []string{yearLabel, "", "", "", "", "", ""})
			continue
		}
		for _, module := range year.Modules {
			for _, component := range module.Components {
				data.Rows = append(data.Rows, []string{
					yearLabel,
					module.ModuleName,
					strconv.Itoa(module.Credits),
					component.Name,
					formatNumber(component.Weight),
					formatGrade(component.Grade),
					formatGrade(module.Grade),
				})
			}
		}
	}
	data.Summary = append(data.Summary, export.SummaryLine{Label: "Generated", Value: generatedAt.UTC().Format(time.RFC3339)})
	return data
}

func formatGrade(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "incomplete"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
