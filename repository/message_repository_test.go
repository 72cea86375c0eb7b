package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"messenger-backend/apperrors"
	"messenger-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "messenger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, login string) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Login: login, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createMessage(t *testing.T, db *gorm.DB, sender, recipient uuid.UUID, content string, at time.Time) uuid.UUID {
	t.Helper()
	message := models.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(&message).Error)
	return message.ID
}

func Test_Insert_Assigns_Id_And_Timestamp(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	message, err := repo.Insert(context.Background(), alice, bob, "hi")
	req.NoError(err)
	req.NotEqual(uuid.Nil, message.ID)
	req.Equal(alice, message.SenderID)
	req.Equal(bob, message.RecipientID)
	req.False(message.CreatedAt.IsZero())
}

func Test_Insert_Identifies_Missing_Side(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")

	_, err := repo.Insert(context.Background(), uuid.New(), alice, "hi")
	req.ErrorIs(err, apperrors.ErrSenderNotFound)

	_, err = repo.Insert(context.Background(), alice, uuid.New(), "hi")
	req.ErrorIs(err, apperrors.ErrRecipientNotFound)
}

func Test_Insert_Allows_Self_Message(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")

	message, err := repo.Insert(context.Background(), alice, alice, "note to self")
	req.NoError(err)

	page, err := repo.FindPage(context.Background(), alice, alice, nil)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal(message.ID, page[0].ID)
}

// The conversation identity is the unordered pair: messages flow in both
// directions but every query must see the same rows regardless of which
// participant is passed first. Filtering only one direction is the classic
// bug this test pins down.
func Test_FindPage_Symmetric_Query(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, db, alice, bob, "a to b", base)
	createMessage(t, db, bob, alice, "b to a", base.Add(1*time.Minute))
	createMessage(t, db, alice, carol, "a to c", base.Add(2*time.Minute))

	pageAB, err := repo.FindPage(context.Background(), alice, bob, nil)
	req.NoError(err)
	pageBA, err := repo.FindPage(context.Background(), bob, alice, nil)
	req.NoError(err)

	req.Len(pageAB, 2)
	req.Equal(pageAB, pageBA)
	req.Equal("b to a", pageAB[0].Content)
	req.Equal("a to b", pageAB[1].Content)
}

func Test_FindPage_Paginates_Without_Overlap_Or_Gaps(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// 230 messages over 23 distinct timestamps, 10 per timestamp, so every
	// page boundary is likely to fall inside a collision group.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	all := make(map[uuid.UUID]struct{})
	for i := 0; i < 230; i++ {
		sender, recipient := alice, bob
		if i%2 == 1 {
			sender, recipient = bob, alice
		}
		id := createMessage(t, db, sender, recipient, "msg", base.Add(time.Duration(i/10)*time.Second))
		all[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{})
	var cursor *uuid.UUID
	var pages int
	for {
		page, err := repo.FindPage(context.Background(), alice, bob, cursor)
		req.NoError(err)
		for i, message := range page {
			if i > 0 {
				prev := page[i-1]
				older := message.CreatedAt.Before(prev.CreatedAt) ||
					(message.CreatedAt.Equal(prev.CreatedAt) && message.ID.String() < prev.ID.String())
				req.True(older, "page must be newest first with id tie-break")
			}
			_, dup := seen[message.ID]
			req.False(dup, "no message may appear on two pages")
			seen[message.ID] = struct{}{}
		}
		pages++
		if len(page) < 100 {
			break
		}
		last := page[len(page)-1].ID
		cursor = &last
	}

	req.Equal(3, pages)
	req.Len(seen, len(all))
}

func Test_FindPage_Unknown_Cursor(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	missing := uuid.New()
	_, err := repo.FindPage(context.Background(), alice, bob, &missing)
	req.ErrorIs(err, apperrors.ErrMessageNotFound)
}

func Test_FindAll_Oldest_First(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		createMessage(t, db, alice, bob, "msg", base.Add(time.Duration(i)*time.Second))
	}

	history, err := repo.FindAll(context.Background(), bob, alice)
	req.NoError(err)
	req.Len(history, 150)
	for i := 1; i < len(history); i++ {
		req.False(history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}

func Test_Update_Changes_Content_Only(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	original, err := repo.Insert(context.Background(), alice, bob, "hi")
	req.NoError(err)

	updated, err := repo.Update(context.Background(), original.ID, "hello")
	req.NoError(err)
	req.Equal(original.ID, updated.ID)
	req.Equal("hello", updated.Content)
	req.Equal(original.SenderID, updated.SenderID)
	req.Equal(original.RecipientID, updated.RecipientID)

	_, err = repo.Update(context.Background(), uuid.New(), "nope")
	req.ErrorIs(err, apperrors.ErrMessageNotFound)
}

func Test_Remove_Returns_Identity_Triple(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	message, err := repo.Insert(context.Background(), alice, bob, "hi")
	req.NoError(err)

	deleted, err := repo.Remove(context.Background(), message.ID)
	req.NoError(err)
	req.Equal(message.ID, deleted.ID)
	req.Equal(alice, deleted.Sender)
	req.Equal(bob, deleted.Recipient)

	_, err = repo.Remove(context.Background(), message.ID)
	req.ErrorIs(err, apperrors.ErrMessageNotFound)
}

func Test_PurgeForUser_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, db, alice, bob, "sent by alice", base)
	createMessage(t, db, bob, alice, "received by alice", base.Add(time.Second))
	createMessage(t, db, bob, carol, "unrelated", base.Add(2*time.Second))

	req.NoError(repo.PurgeForUser(context.Background(), alice))
	req.NoError(repo.PurgeForUser(context.Background(), alice))

	var count int64
	req.NoError(db.Model(&models.Message{}).
		Where("sender_id = ? OR recipient_id = ?", alice, alice).
		Count(&count).Error)
	req.Zero(count)

	req.NoError(db.Model(&models.Message{}).Count(&count).Error)
	req.EqualValues(1, count)
}

func Test_Owns_Is_Sender_Only(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	message, err := repo.Insert(context.Background(), alice, bob, "hi")
	req.NoError(err)

	owns, err := repo.Owns(context.Background(), message.ID, alice)
	req.NoError(err)
	req.True(owns)

	owns, err = repo.Owns(context.Background(), message.ID, bob)
	req.NoError(err)
	req.False(owns)

	owns, err = repo.Owns(context.Background(), uuid.New(), alice)
	req.NoError(err)
	req.False(owns)
}
