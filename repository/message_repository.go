package repository

import (
	"context"
	"errors"
	"time"

	"messenger-backend/apperrors"
	"messenger-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pageSize bounds a single history page. Older messages are reached by
// passing the last returned message id as the cursor.
const pageSize = 100

// DeletedMessage carries the identity of a removed message so callers can
// route the deletion notification without re-reading the row.
type DeletedMessage struct {
	ID        uuid.UUID `json:"id"`
	Sender    uuid.UUID `json:"sender"`
	Recipient uuid.UUID `json:"recipient"`
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// betweenUsers is the one symmetric conversation predicate. A conversation is
// the unordered pair of participants: a message belongs to it no matter which
// side was the sender, so every conversation query must go through here.
func betweenUsers(db *gorm.DB, userA, userB uuid.UUID) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		userA, userB, userB, userA,
	)
}

// Insert persists a new message after validating that both participants exist.
// The failing side is identified in the returned error.
func (r *MessageRepository) Insert(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*models.Message, error) {
	db := r.db.WithContext(ctx)

	if err := requireUser(db, senderID, apperrors.ErrSenderNotFound); err != nil {
		return nil, err
	}
	if err := requireUser(db, recipientID, apperrors.ErrRecipientNotFound); err != nil {
		return nil, err
	}

	message := models.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	return &message, nil
}

// FindPage returns up to pageSize messages of the conversation, newest first.
// With a cursor it returns messages strictly older than the cursor message,
// ordering and comparing on (created_at, id) so colliding timestamps neither
// repeat nor skip rows across pages.
func (r *MessageRepository) FindPage(ctx context.Context, userA, userB uuid.UUID, beforeMessageID *uuid.UUID) ([]models.Message, error) {
	db := r.db.WithContext(ctx)
	query := betweenUsers(db.Model(&models.Message{}), userA, userB)

	if beforeMessageID != nil {
		var cursor models.Message
		if err := db.First(&cursor, "id = ?", *beforeMessageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrMessageNotFound
			}
			return nil, apperrors.ErrStoreFailure(err)
		}
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var messages []models.Message
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	return messages, nil
}

// FindAll returns the complete conversation history, oldest first. There is no
// limit: this backs the one-shot history download, not interactive paging.
func (r *MessageRepository) FindAll(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := betweenUsers(r.db.WithContext(ctx).Model(&models.Message{}), userA, userB).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	return messages, nil
}

// Update replaces the content of a message. Sender, recipient and creation
// time are immutable.
func (r *MessageRepository) Update(ctx context.Context, messageID uuid.UUID, newContent string) (*models.Message, error) {
	db := r.db.WithContext(ctx)

	var message models.Message
	if err := db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, apperrors.ErrStoreFailure(err)
	}

	if err := db.Model(&message).Update("content", newContent).Error; err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	message.Content = newContent
	return &message, nil
}

// Remove deletes a message and returns its pre-deletion identity triple.
func (r *MessageRepository) Remove(ctx context.Context, messageID uuid.UUID) (*DeletedMessage, error) {
	db := r.db.WithContext(ctx)

	var message models.Message
	if err := db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, apperrors.ErrStoreFailure(err)
	}

	if err := db.Delete(&models.Message{}, "id = ?", messageID).Error; err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	return &DeletedMessage{
		ID:        message.ID,
		Sender:    message.SenderID,
		Recipient: message.RecipientID,
	}, nil
}

// PurgeForUser deletes every message the user sent or received. Deleting by
// predicate makes the account-deletion cascade naturally idempotent.
func (r *MessageRepository) PurgeForUser(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Delete(&models.Message{}).Error
	if err != nil {
		return apperrors.ErrStoreFailure(err)
	}
	return nil
}

// Owns reports whether the message exists and subjectID is its sender.
// Recipients never gain edit/delete rights.
func (r *MessageRepository) Owns(ctx context.Context, messageID, subjectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND sender_id = ?", messageID, subjectID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrStoreFailure(err)
	}
	return count > 0, nil
}

func requireUser(db *gorm.DB, userID uuid.UUID, notFound error) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.ErrStoreFailure(err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}
