package service

import (
	"context"
	"testing"
	"time"

	"github.com/plazamkt/storefront-backend/internal/closure"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	buyerUID  = "buyer-1"
	vendorUID = "vendor-1"
)

func newConversationFixture(t *testing.T) (ConversationService, repository.ConversationRepository, *gorm.DB, *testClock) {
	t.Helper()
	db := newTestDB(t)
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	convRepo := repository.NewConversationRepository(db)
	productRepo := repository.NewProductRepository(db)
	svc := NewConversationService(convRepo, productRepo, closure.DefaultWindows(), clk)
	return svc, convRepo, db, clk
}

func seedConversation(t *testing.T, db *gorm.DB, convRepo repository.ConversationRepository) *model.Conversation {
	t.Helper()
	ctx := context.Background()
	p := model.Product{VendorUID: vendorUID, Title: "old camera", Description: "works fine", Price: 4000, CategorySlug: "electronics"}
	require.NoError(t, db.Create(&p).Error)
	cv, err := convRepo.FindOrCreateForProduct(ctx, p.ID, vendorUID, buyerUID)
	require.NoError(t, err)
	require.NoError(t, convRepo.CreateMessage(ctx, &model.Message{ConversationID: cv.ID, SenderUID: buyerUID, Body: "is this still available?"}))
	return cv
}

func TestCloseConversation(t *testing.T) {
	svc, convRepo, db, clk := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	closed, err := svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.ClosedAt.Equal(clk.now))
	require.NotNil(t, closed.ClosedByUID)
	assert.Equal(t, buyerUID, *closed.ClosedByUID)
	assert.Equal(t, ClosedReasonEndedByUser, closed.ClosedReason)

	// Second close is a benign no-op: same stamp, sentinel error.
	clk.Advance(time.Hour)
	again, err := svc.Close(ctx, cv.ID, vendorUID, "changed my mind", false)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	require.NotNil(t, again.ClosedAt)
	assert.True(t, again.ClosedAt.Equal(*closed.ClosedAt), "closed_at must not be re-stamped")
	assert.Equal(t, buyerUID, *again.ClosedByUID)
}

func TestCloseByNonParticipant(t *testing.T) {
	svc, convRepo, db, _ := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	_, err := svc.Close(ctx, cv.ID, "stranger", "", false)
	assert.ErrorIs(t, err, ErrForbidden)

	// Admins may close on behalf of support staff workflows.
	_, err = svc.Close(ctx, cv.ID, "staff-1", "resolved_by_staff", true)
	assert.NoError(t, err)
}

func TestCloseMissingConversation(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)
	_, err := svc.Close(context.Background(), 999, buyerUID, "", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupportConversationAsymmetry(t *testing.T) {
	// Support conversations can be cleared but never closed.
	svc, convRepo, _, _ := newConversationFixture(t)
	ctx := context.Background()

	cv, err := svc.OpenSupport(ctx, buyerUID)
	require.NoError(t, err)
	require.True(t, cv.IsSupport())
	require.NoError(t, convRepo.CreateMessage(ctx, &model.Message{ConversationID: cv.ID, SenderUID: buyerUID, Body: "I need help with a refund"}))

	_, err = svc.Close(ctx, cv.ID, buyerUID, "", false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Close(ctx, cv.ID, "staff-1", "", true)
	assert.ErrorIs(t, err, ErrForbidden, "not even admins can close support conversations")

	require.NoError(t, svc.Clear(ctx, cv.ID, buyerUID, false))
	msgs, err := convRepo.ListMessages(ctx, cv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	fetched, err := convRepo.FindByID(ctx, cv.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetched.ClearedAt)
	assert.Nil(t, fetched.ClosedAt)
}

func TestClearKeepsClosureMetadata(t *testing.T) {
	svc, convRepo, db, _ := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	_, err := svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, cv.ID, buyerUID, false))

	fetched, err := convRepo.FindByID(ctx, cv.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetched.ClosedAt, "clearing must not undo closure")
	assert.NotNil(t, fetched.ClearedAt)
	msgs, err := convRepo.ListMessages(ctx, cv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestClosedConversationReadOnly(t *testing.T) {
	svc, convRepo, db, _ := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	_, err := svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)

	// Read-only for everyone, including staff, even while visible.
	err = svc.CreateMessage(ctx, cv.ID, closure.Viewer{UID: vendorUID}, "one last thing")
	assert.ErrorIs(t, err, ErrConversationClosed)
	err = svc.CreateMessage(ctx, cv.ID, closure.Viewer{UID: "staff-1", IsAdmin: true}, "staff note")
	assert.ErrorIs(t, err, ErrConversationClosed)

	msgs, err := svc.ListMessages(ctx, cv.ID, closure.Viewer{UID: buyerUID})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestVisibilityWindows(t *testing.T) {
	svc, convRepo, db, clk := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	_, err := svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)

	participant := closure.Viewer{UID: buyerUID}
	admin := closure.Viewer{UID: "staff-1", IsAdmin: true}

	// T0 + 3 days: both still see it; participant gets the notice.
	clk.Advance(3 * 24 * time.Hour)
	view, err := svc.Get(ctx, cv.ID, participant)
	require.NoError(t, err)
	assert.True(t, view.State.IsClosed)
	assert.NotEmpty(t, view.State.ParticipantNotice)
	_, err = svc.Get(ctx, cv.ID, admin)
	assert.NoError(t, err)

	// T0 + 10 days: gone for the participant, retained for staff.
	clk.Advance(7 * 24 * time.Hour)
	_, err = svc.Get(ctx, cv.ID, participant)
	assert.ErrorIs(t, err, ErrNotFound)
	adminView, err := svc.Get(ctx, cv.ID, admin)
	require.NoError(t, err)
	assert.Empty(t, adminView.State.ParticipantNotice)

	// T0 + 31 days: outside retention for everyone.
	clk.Advance(21 * 24 * time.Hour)
	_, err = svc.Get(ctx, cv.ID, admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByUserFiltersExpired(t *testing.T) {
	svc, convRepo, db, clk := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	open, err := svc.OpenSupport(ctx, buyerUID)
	require.NoError(t, err)

	_, err = svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)
	clk.Advance(10 * 24 * time.Hour)

	views, err := svc.ListByUser(ctx, closure.Viewer{UID: buyerUID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, open.ID, views[0].Conversation.ID)
}

func TestPurgeExpiredClosed(t *testing.T) {
	svc, convRepo, db, clk := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)
	keep, err := svc.OpenSupport(ctx, buyerUID)
	require.NoError(t, err)

	_, err = svc.Close(ctx, cv.ID, buyerUID, "", false)
	require.NoError(t, err)

	// Inside retention: sweep is a no-op.
	clk.Advance(10 * 24 * time.Hour)
	svc.PurgeExpiredClosed(ctx)
	_, err = convRepo.FindByID(ctx, cv.ID)
	assert.NoError(t, err)

	// Past retention: conversation and messages are gone for good.
	clk.Advance(21 * 24 * time.Hour)
	svc.PurgeExpiredClosed(ctx)
	_, err = convRepo.FindByID(ctx, cv.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var msgCount int64
	require.NoError(t, db.Model(&model.Message{}).Where("conversation_id = ?", cv.ID).Count(&msgCount).Error)
	assert.Zero(t, msgCount)

	// Idempotent: a second sweep finds nothing and changes nothing.
	svc.PurgeExpiredClosed(ctx)
	_, err = convRepo.FindByID(ctx, keep.ID)
	assert.NoError(t, err, "open conversations are never purged")
}

func TestFutureClosedAtTreatedAsOpen(t *testing.T) {
	svc, convRepo, db, clk := newConversationFixture(t)
	ctx := context.Background()
	cv := seedConversation(t, db, convRepo)

	future := clk.now.Add(time.Hour)
	require.NoError(t, db.Model(&model.Conversation{}).
		Where("id = ?", cv.ID).
		Update("closed_at", future).Error)

	view, err := svc.Get(ctx, cv.ID, closure.Viewer{UID: buyerUID})
	require.NoError(t, err)
	assert.False(t, view.State.IsClosed)
	assert.True(t, view.State.CanSend)

	// And the sweep must leave it alone.
	svc.PurgeExpiredClosed(ctx)
	_, err = convRepo.FindByID(ctx, cv.ID)
	assert.NoError(t, err)
}

func TestOpenForProduct(t *testing.T) {
	svc, _, db, _ := newConversationFixture(t)
	ctx := context.Background()
	p := model.Product{VendorUID: vendorUID, Title: "desk lamp", Description: "warm light", Price: 1500, CategorySlug: "home"}
	require.NoError(t, db.Create(&p).Error)

	cv, err := svc.OpenForProduct(ctx, p.ID, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, vendorUID, cv.VendorUID)
	assert.False(t, cv.IsSupport())

	// Reopening resolves to the same conversation.
	cv2, err := svc.OpenForProduct(ctx, p.ID, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, cv.ID, cv2.ID)

	_, err = svc.OpenForProduct(ctx, p.ID, vendorUID)
	assert.EqualError(t, err, "cannot chat with yourself")

	_, err = svc.OpenForProduct(ctx, 999, buyerUID)
	assert.ErrorIs(t, err, ErrNotFound)
}
