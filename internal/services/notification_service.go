// internal/services/notification_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Emit appends a notification row inside the caller's transaction. Emission
// is part of the triggering transition's contract: if the insert fails the
// caller must treat the whole transition as failed.
func (s *NotificationService) Emit(tx *gorm.DB, userID uuid.UUID, notificationType models.NotificationType, title, content string, relatedID *uuid.UUID) error {
	if tx == nil {
		tx = s.db
	}

	notification := &models.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Content:   content,
		RelatedID: relatedID,
	}

	if err := tx.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForUser returns the user's mailbox, newest first.
func (s *NotificationService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(notificationID, userID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Delete removes a notification. Only the recipient may delete their rows.
func (s *NotificationService) Delete(notificationID, userID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// Email notifications
func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":         user.FullName(),
		"PlatformName": "IGX Marketplace",
		"DashboardURL": fmt.Sprintf("%s/dashboard", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendAccessRequestEmail(seller *models.User, buyer *models.User, listing *models.Listing) error {
	tmpl := s.getEmailTemplate("access_request")

	data := map[string]interface{}{
		"SellerName":   seller.FullName(),
		"BuyerName":    buyer.FullName(),
		"ListingTitle": listing.Title,
		"RequestsURL":  fmt.Sprintf("%s/dashboard/requests", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(seller.Email, "New Access Request - "+listing.Title, body)
}

func (s *NotificationService) SendEscrowCompletedEmail(user *models.User, listing *models.Listing, amount float64) error {
	tmpl := s.getEmailTemplate("escrow_completed")

	data := map[string]interface{}{
		"Name":         user.FullName(),
		"ListingTitle": listing.Title,
		"Amount":       amount,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Transaction Completed - "+listing.Title, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to IGX Marketplace",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thank you for joining {{.PlatformName}}, the marketplace for iGaming business assets.</p>
	<a href="{{.DashboardURL}}">Go to your dashboard</a>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"access_request": {
			Subject: "New Access Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>New Access Request</h2>
	<p>Hello {{.SellerName}},</p>
	<p>{{.BuyerName}} has requested access to the private details of "{{.ListingTitle}}".</p>
	<a href="{{.RequestsURL}}">Review the request</a>
	<p>Best regards,<br>IGX Marketplace Team</p>
</body>
</html>`,
		},
		"escrow_completed": {
			Subject: "Transaction Completed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Transaction Completed</h2>
	<p>Hello {{.Name}},</p>
	<p>The escrow transaction for "{{.ListingTitle}}" (${{.Amount}}) has been completed.</p>
	<p>Best regards,<br>IGX Marketplace Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
