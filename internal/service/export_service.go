package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/export"
	"github.com/frenillazo/acainfo-portal-api/pkg/storage"
)

// ExportService renders weekly schedules and attendance rosters into files
// and hands out signed, expiring download links.
type ExportService struct {
	schedule   *ScheduleService
	attendance *AttendanceService
	pdf        *export.PDFExporter
	csv        *export.CSVExporter
	store      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	cfg        config.ExportsConfig
	logger     *zap.Logger
}

// NewExportService wires the export pipeline.
func NewExportService(
	schedule *ScheduleService,
	attendance *AttendanceService,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	cfg config.ExportsConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedule:   schedule,
		attendance: attendance,
		pdf:        export.NewPDFExporter(),
		csv:        export.NewCSVExporter(),
		store:      store,
		signer:     signer,
		cfg:        cfg,
		logger:     logger,
	}
}

// WeeklySchedulePDF renders the student's week as a PDF and returns a signed
// download link.
func (s *ExportService) WeeklySchedulePDF(ctx context.Context, studentID string, weekOf time.Time) (*dto.ExportResponse, error) {
	week, err := s.schedule.Week(ctx, studentID, weekOf, false)
	if err != nil {
		return nil, err
	}

	days := make([]export.DaySection, 0, len(week.Days))
	for _, day := range week.Days {
		section := export.DaySection{
			Title: fmt.Sprintf("%s %s", day.Weekday.String()[:3], day.Date.Format("02 Jan")),
			Lines: make([]string, 0, len(day.Blocks)),
		}
		for _, block := range day.Blocks {
			marker := ""
			if block.IsOwnSession {
				marker = " *"
			}
			section.Lines = append(section.Lines, fmt.Sprintf("%s-%s %s%s",
				block.Session.StartTime, block.Session.EndTime, block.Session.GroupID, marker))
		}
		days = append(days, section)
	}

	title := fmt.Sprintf("Week of %s", week.WeekStart.Format("02 Jan 2006"))
	payload, err := s.pdf.RenderWeek(title, days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render schedule export")
	}

	filename := fmt.Sprintf("schedules/%s/%s.pdf", studentID, week.WeekStart.Format("2006-01-02"))
	return s.publish(filename, payload)
}

// RosterCSV renders the session's attendance roster as CSV.
func (s *ExportService) RosterCSV(ctx context.Context, actor models.Actor, sessionID string) (*dto.ExportResponse, error) {
	view, err := s.attendance.Roster(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	rows := make([]export.RosterRow, 0, len(view.Recorded)+len(view.Unrecorded))
	appendRows := func(entries []models.RosterEntry) {
		for _, entry := range entries {
			attendance := ""
			if entry.AttendanceStatus != nil {
				attendance = string(*entry.AttendanceStatus)
			}
			rows = append(rows, export.RosterRow{
				Student:    entry.StudentName,
				Email:      entry.StudentEmail,
				Mode:       string(entry.Mode),
				State:      string(entry.State()),
				Attendance: attendance,
			})
		}
	}
	appendRows(view.Recorded)
	appendRows(view.Unrecorded)

	payload, err := s.csv.RenderRoster(rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render roster export")
	}

	filename := fmt.Sprintf("rosters/%s/%s.csv", sessionID, view.Session.Date.Format("2006-01-02"))
	return s.publish(filename, payload)
}

// Download validates the signed token and streams the stored file.
func (s *ExportService) Download(token string, w io.Writer) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired")
	}
	if err := s.store.Copy(relPath, w); err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return relPath, nil
}

// CleanupLoop deletes expired export files on the configured interval until
// the context is cancelled.
func (s *ExportService) CleanupLoop(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(s.cfg.SignedURLTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ExportService) publish(filename string, payload []byte) (*dto.ExportResponse, error) {
	stored, err := s.store.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store export")
	}

	exportID := uuid.NewString()
	token, expiresAt, err := s.signer.Generate(exportID, stored)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign export link")
	}

	return &dto.ExportResponse{
		ExportID:    exportID,
		Filename:    strings.TrimPrefix(stored, "/"),
		DownloadURL: fmt.Sprintf("/exports/download?token=%s", token),
		ExpiresAt:   expiresAt,
	}, nil
}
