// internal/services/message_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type MessageService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id" validate:"required"`
	ListingID  *uuid.UUID `json:"listing_id,omitempty"`
	Content    string     `json:"content" validate:"required,max=5000"`
}

// ConversationSummary is one row of the inbox: the counterparty plus the most
// recent message either side sent.
type ConversationSummary struct {
	Partner     models.User    `json:"partner"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

func NewMessageService(db *gorm.DB, notifications *NotificationService) *MessageService {
	return &MessageService{
		db:            db,
		notifications: notifications,
	}
}

func (s *MessageService) Send(senderID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.ReceiverID == senderID {
		return nil, errors.New("cannot send a message to yourself")
	}

	var receiver models.User
	if err := s.db.First(&receiver, req.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("receiver not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.ListingID != nil {
		var count int64
		if err := s.db.Model(&models.Listing{}).Where("id = ?", *req.ListingID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return nil, ErrListingNotFound
		}
	}

	var sender models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		ListingID:  req.ListingID,
		Content:    req.Content,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		return s.notifications.Emit(tx, req.ReceiverID, models.NotificationTypeNewMessage,
			"New Message",
			fmt.Sprintf("You have a new message from %s.", sender.FullName()),
			&message.ID)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// Conversation returns the thread between the user and a partner, oldest
// first, and marks the partner's messages as read.
func (s *MessageService) Conversation(userID, partnerID uuid.UUID, params utils.PaginationParams) ([]models.Message, int64, error) {
	query := s.db.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var messages []models.Message
	err := query.Order("created_at ASC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	err = s.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Update("is_read", true).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return messages, total, nil
}

// Conversations builds the inbox view. One row per counterparty, ordered by
// the latest exchange.
func (s *MessageService) Conversations(userID uuid.UUID) ([]ConversationSummary, error) {
	var messages []models.Message
	err := s.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	seen := make(map[uuid.UUID]*ConversationSummary)
	order := make([]uuid.UUID, 0)

	for i := range messages {
		partnerID := messages[i].SenderID
		if partnerID == userID {
			partnerID = messages[i].ReceiverID
		}

		summary, ok := seen[partnerID]
		if !ok {
			summary = &ConversationSummary{LastMessage: messages[i]}
			seen[partnerID] = summary
			order = append(order, partnerID)
		}
		if messages[i].ReceiverID == userID && !messages[i].IsRead {
			summary.UnreadCount++
		}
	}

	summaries := make([]ConversationSummary, 0, len(order))
	for _, partnerID := range order {
		var partner models.User
		if err := s.db.First(&partner, partnerID).Error; err != nil {
			continue
		}
		summary := seen[partnerID]
		summary.Partner = partner
		summaries = append(summaries, *summary)
	}

	return summaries, nil
}

// MarkRead flags a single message as read. Only the receiver may do so.
func (s *MessageService) MarkRead(messageID, userID uuid.UUID) error {
	result := s.db.Model(&models.Message{}).
		Where("id = ? AND receiver_id = ?", messageID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("message not found")
	}
	return nil
}

func (s *MessageService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
