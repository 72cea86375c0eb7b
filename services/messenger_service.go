package services

import (
	"context"

	"messenger-backend/apperrors"
	"messenger-backend/models"
	"messenger-backend/repository"

	"github.com/google/uuid"
)

// Broadcaster interface to avoid an import cycle with the websocket hub.
// Delivery is best-effort: a mutation that already committed to the store is
// the source of truth whether or not anyone was listening.
type Broadcaster interface {
	PublishCreated(message models.Message)
	PublishEdited(message models.Message)
	PublishDeleted(messageID, sender, recipient uuid.UUID)
}

// Person is a user-search result: the id a client needs to open a
// conversation plus the display login.
type Person struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MessengerService struct {
	messages *repository.MessageRepository
	users    *repository.UserRepository
	hub      Broadcaster
}

func NewMessengerService(messages *repository.MessageRepository, users *repository.UserRepository, hub Broadcaster) *MessengerService {
	return &MessengerService{messages: messages, users: users, hub: hub}
}

// Send persists a message between two existing users and fans the created
// event out to the conversation's room.
func (s *MessengerService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}

	message, err := s.messages.Insert(ctx, senderID, recipientID, content)
	if err != nil {
		return nil, err
	}

	s.hub.PublishCreated(*message)
	return message, nil
}

// Edit replaces a message's content after the ownership gate. A failed gate is
// always Forbidden — whether the message is missing or simply not the
// subject's is not leaked to the caller.
func (s *MessengerService) Edit(ctx context.Context, messageID, subjectID uuid.UUID, newContent string) (*models.Message, error) {
	if newContent == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if err := s.requireOwnership(ctx, messageID, subjectID); err != nil {
		return nil, err
	}

	message, err := s.messages.Update(ctx, messageID, newContent)
	if err != nil {
		return nil, err
	}

	s.hub.PublishEdited(*message)
	return message, nil
}

// Delete removes a message after the ownership gate and returns its identity
// triple so the transport can acknowledge without another read.
func (s *MessengerService) Delete(ctx context.Context, messageID, subjectID uuid.UUID) (*repository.DeletedMessage, error) {
	if err := s.requireOwnership(ctx, messageID, subjectID); err != nil {
		return nil, err
	}

	deleted, err := s.messages.Remove(ctx, messageID)
	if err != nil {
		return nil, err
	}

	s.hub.PublishDeleted(deleted.ID, deleted.Sender, deleted.Recipient)
	return deleted, nil
}

// GetMessages returns one page of conversation history, newest first.
func (s *MessengerService) GetMessages(ctx context.Context, userA, userB uuid.UUID, beforeMessageID *uuid.UUID) ([]models.Message, error) {
	return s.messages.FindPage(ctx, userA, userB, beforeMessageID)
}

// GetFullHistory returns the whole conversation, oldest first. Export only;
// interactive clients should page through GetMessages instead.
func (s *MessengerService) GetFullHistory(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error) {
	return s.messages.FindAll(ctx, userA, userB)
}

// FindPerson searches users by login substring for the contact picker.
func (s *MessengerService) FindPerson(ctx context.Context, name string) ([]Person, error) {
	users, err := s.users.SearchByLogin(ctx, name)
	if err != nil {
		return nil, err
	}

	persons := make([]Person, 0, len(users))
	for _, user := range users {
		persons = append(persons, Person{ID: user.ID, Name: user.Login})
	}
	return persons, nil
}

// PurgeUserMessages runs the account-deletion cascade. The deletion event is
// delivered at least once, so this must stay idempotent.
func (s *MessengerService) PurgeUserMessages(ctx context.Context, userID uuid.UUID) error {
	return s.messages.PurgeForUser(ctx, userID)
}

func (s *MessengerService) requireOwnership(ctx context.Context, messageID, subjectID uuid.UUID) error {
	owns, err := s.messages.Owns(ctx, messageID, subjectID)
	if err != nil {
		return err
	}
	if !owns {
		return apperrors.ErrNotMessageOwner
	}
	return nil
}
