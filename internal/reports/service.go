package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tixly/internal/logger"
	"tixly/internal/models"
)

var ErrEmptyMessage = errors.New("report message is required")

type ReportDBLayer interface {
	GetReportByID(id string) (*models.Report, error)
	CreateReport(report models.Report) error
	DeleteReport(id string) error
	ListReports() ([]models.Report, error)
	ListReportsByOrganizer(organizerID string) ([]models.Report, error)
	ListReportsByEvent(eventID string) ([]models.Report, error)
}

type EventSource interface {
	GetEventByID(id string) (*models.Event, error)
}

// EventModerator and UserModerator are the admin actions a report can
// resolve into.
type EventModerator interface {
	BanEvent(id string) error
}

type UserModerator interface {
	BlockUser(id string) error
}

type ReportService struct {
	DB       ReportDBLayer
	Events   EventSource
	EventMod EventModerator
	UserMod  UserModerator
	Logger   *logger.Logger
}

func NewReportService(db ReportDBLayer, events EventSource, eventMod EventModerator, userMod UserModerator, log *logger.Logger) *ReportService {
	return &ReportService{DB: db, Events: events, EventMod: eventMod, UserMod: userMod, Logger: log}
}

type ReportInput struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *ReportService) FileReport(reporterID string, in ReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyMessage
	}

	event, err := s.Events.GetEventByID(in.EventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	report := models.Report{
		ID:          uuid.New().String(),
		EventID:     event.ID,
		OrganizerID: event.OrganizerID,
		ReporterID:  reporterID,
		Type:        in.Type,
		Message:     in.Message,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateReport(report); err != nil {
		s.Logger.Error("REPORT", fmt.Sprintf("Failed to file report on event %s: %v", event.ID, err))
		return nil, err
	}

	s.Logger.Info("REPORT", fmt.Sprintf("Report %s filed on event %s", report.ID, event.ID))
	return &report, nil
}

func (s *ReportService) ListAll() ([]models.Report, error) {
	return s.DB.ListReports()
}

func (s *ReportService) ListByOrganizer(organizerID string) ([]models.Report, error) {
	return s.DB.ListReportsByOrganizer(organizerID)
}

func (s *ReportService) ListByEvent(eventID string) ([]models.Report, error) {
	return s.DB.ListReportsByEvent(eventID)
}

// ResolveBanEvent bans the reported event and removes the report.
func (s *ReportService) ResolveBanEvent(reportID string) error {
	report, err := s.DB.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if err := s.EventMod.BanEvent(report.EventID); err != nil {
		return fmt.Errorf("failed to ban event %s: %w", report.EventID, err)
	}
	if err := s.DB.DeleteReport(reportID); err != nil {
		s.Logger.Warn("REPORT", fmt.Sprintf("Event %s banned but report %s not removed: %v", report.EventID, reportID, err))
	}
	s.Logger.Warn("REPORT", fmt.Sprintf("Report %s resolved: event %s banned", reportID, report.EventID))
	return nil
}

// ResolveBlockUser blocks the organizer behind the reported event and
// removes the report.
func (s *ReportService) ResolveBlockUser(reportID string) error {
	report, err := s.DB.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if report.OrganizerID == "" {
		return errors.New("report has no organizer to block")
	}
	if err := s.UserMod.BlockUser(report.OrganizerID); err != nil {
		return fmt.Errorf("failed to block user %s: %w", report.OrganizerID, err)
	}
	if err := s.DB.DeleteReport(reportID); err != nil {
		s.Logger.Warn("REPORT", fmt.Sprintf("User %s blocked but report %s not removed: %v", report.OrganizerID, reportID, err))
	}
	s.Logger.Warn("REPORT", fmt.Sprintf("Report %s resolved: user %s blocked", reportID, report.OrganizerID))
	return nil
}

// Dismiss removes a report without action.
func (s *ReportService) Dismiss(reportID string) error {
	return s.DB.DeleteReport(reportID)
}
