package notifications

import (
	"fmt"
	"strings"
	"time"

	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/observability"
	"tixly/internal/utils"
)

type NotificationDBLayer interface {
	CreateNotification(notification models.Notification) error
	GetNotificationsByUser(userID string) ([]models.Notification, error)
	MarkRead(notificationID, userID string) error
}

// OrderSource yields the orders whose buyers should hear about an event
// change.
type OrderSource interface {
	GetOrdersByEvent(eventID string, statuses ...string) ([]models.Order, error)
}

type UpdateMailer interface {
	SendEventUpdate(to, eventName string, changes []models.EventChange) error
}

type NotificationService struct {
	DB     NotificationDBLayer
	Orders OrderSource
	Mailer UpdateMailer
	Logger *logger.Logger
}

func NewNotificationService(db NotificationDBLayer, orders OrderSource, mailer UpdateMailer, log *logger.Logger) *NotificationService {
	return &NotificationService{DB: db, Orders: orders, Mailer: mailer, Logger: log}
}

// FanOutResult summarizes one event-update broadcast.
type FanOutResult struct {
	Success       bool `json:"success"`
	Notified      int  `json:"notified"`
	InAppCreated  int  `json:"inAppCreated"`
	EmailFailures int  `json:"emailFailures"`
}

// NotifyEventUpdate emails every distinct buyer of the event and records an
// in-app notification per distinct user. Individual email failures are
// logged and counted but never abort the fan-out; zero matching orders is a
// success with zero sends.
func (s *NotificationService) NotifyEventUpdate(eventID, eventName string, changes []models.EventChange, onlyConfirmed bool) (*FanOutResult, error) {
	statuses := []string{models.OrderPending, models.OrderConfirmed}
	if onlyConfirmed {
		statuses = []string{models.OrderConfirmed}
	}
	orders, err := s.Orders.GetOrdersByEvent(eventID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for event %s: %w", eventID, err)
	}

	result := &FanOutResult{Success: true}
	if len(orders) == 0 {
		s.Logger.Info("NOTIFY", fmt.Sprintf("No orders for event %s, nothing to notify", eventID))
		return result, nil
	}

	if eventName == "" {
		eventName = orders[0].EventName
	}

	seenEmails := make(map[string]bool)
	seenUsers := make(map[string]bool)
	for _, order := range orders {
		email := strings.ToLower(strings.TrimSpace(order.UserEmail))
		if email != "" && !seenEmails[email] {
			seenEmails[email] = true
			if err := s.Mailer.SendEventUpdate(email, eventName, changes); err != nil {
				s.Logger.Error("NOTIFY", fmt.Sprintf("Failed to email %s about event %s: %v", email, eventID, err))
				observability.EmailSendFailures.Inc()
				result.EmailFailures++
			} else {
				result.Notified++
			}
		}

		if !seenUsers[order.UserID] {
			seenUsers[order.UserID] = true
			notification := models.Notification{
				ID:        utils.GenerateNotificationID(),
				UserID:    order.UserID,
				EventID:   eventID,
				Title:     fmt.Sprintf("%s has been updated", eventName),
				Message:   summarizeChanges(changes),
				CreatedAt: time.Now(),
			}
			if err := s.DB.CreateNotification(notification); err != nil {
				s.Logger.Error("NOTIFY", fmt.Sprintf("Failed to store notification for user %s: %v", order.UserID, err))
			} else {
				result.InAppCreated++
			}
		}
	}

	s.Logger.Info("NOTIFY", fmt.Sprintf("Event %s update fan-out: %d emailed, %d in-app, %d failures",
		eventID, result.Notified, result.InAppCreated, result.EmailFailures))
	return result, nil
}

func summarizeChanges(changes []models.EventChange) string {
	if len(changes) == 0 {
		return "Event details were updated."
	}
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	return "Changed: " + strings.Join(fields, ", ")
}

func (s *NotificationService) GetNotifications(userID string) ([]models.Notification, error) {
	return s.DB.GetNotificationsByUser(userID)
}

func (s *NotificationService) MarkRead(notificationID, userID string) error {
	return s.DB.MarkRead(notificationID, userID)
}
