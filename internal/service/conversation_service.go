package service

import (
	"context"
	"errors"

	"github.com/plazamkt/storefront-backend/internal/clock"
	"github.com/plazamkt/storefront-backend/internal/closure"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/repository"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ClosedReasonEndedByUser is the stock reason stamped when a participant
// ends the conversation without supplying one.
const ClosedReasonEndedByUser = "ended_by_user"

// ConversationView pairs a conversation with its evaluated closure state
// for the requesting viewer.
type ConversationView struct {
	Conversation model.Conversation `json:"conversation"`
	State        closure.State      `json:"state"`
}

type ConversationService interface {
	OpenForProduct(ctx context.Context, productID uint64, customerUID string) (*model.Conversation, error)
	OpenSupport(ctx context.Context, customerUID string) (*model.Conversation, error)
	ListByUser(ctx context.Context, viewer closure.Viewer) ([]ConversationView, error)
	Get(ctx context.Context, convID uint64, viewer closure.Viewer) (*ConversationView, error)
	ListMessages(ctx context.Context, convID uint64, viewer closure.Viewer) ([]model.Message, error)
	CreateMessage(ctx context.Context, convID uint64, viewer closure.Viewer, body string) error
	Close(ctx context.Context, convID uint64, closedByUID, reason string, isAdmin bool) (*model.Conversation, error)
	Clear(ctx context.Context, convID uint64, uid string, isAdmin bool) error
	ListClosedForAdmin(ctx context.Context) ([]ConversationView, error)
	PurgeExpiredClosed(ctx context.Context)
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	productRepo repository.ProductRepository
	windows     closure.Windows
	clk         clock.Clock
}

func NewConversationService(convRepo repository.ConversationRepository, productRepo repository.ProductRepository, windows closure.Windows, clk clock.Clock) ConversationService {
	return &conversationService{convRepo: convRepo, productRepo: productRepo, windows: windows, clk: clk}
}

func (s *conversationService) OpenForProduct(ctx context.Context, productID uint64, customerUID string) (*model.Conversation, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.VendorUID == "" {
		return nil, errors.New("product has no vendor")
	}
	if p.VendorUID == customerUID {
		return nil, errors.New("cannot chat with yourself")
	}
	return s.convRepo.FindOrCreateForProduct(ctx, productID, p.VendorUID, customerUID)
}

func (s *conversationService) OpenSupport(ctx context.Context, customerUID string) (*model.Conversation, error) {
	return s.convRepo.FindOrCreateSupport(ctx, customerUID)
}

func (s *conversationService) ListByUser(ctx context.Context, viewer closure.Viewer) ([]ConversationView, error) {
	convs, err := s.convRepo.FindByUser(ctx, viewer.UID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	views := make([]ConversationView, 0, len(convs))
	for _, cv := range convs {
		st := closure.Evaluate(&cv, viewer, now, s.windows)
		if !st.CanView {
			continue
		}
		views = append(views, ConversationView{Conversation: cv, State: st})
	}
	return views, nil
}

// fetch loads a conversation and evaluates it for the viewer. A
// conversation outside the viewer's visibility window answers NotFound
// rather than Forbidden so participants cannot tell that staff still
// retain it.
func (s *conversationService) fetch(ctx context.Context, convID uint64, viewer closure.Viewer) (*model.Conversation, closure.State, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, closure.State{}, ErrNotFound
		}
		return nil, closure.State{}, err
	}
	if !viewer.IsAdmin && !cv.HasParticipant(viewer.UID) {
		return nil, closure.State{}, ErrForbidden
	}
	st := closure.Evaluate(cv, viewer, s.clk.Now(), s.windows)
	if !st.CanView {
		return nil, closure.State{}, ErrNotFound
	}
	return cv, st, nil
}

func (s *conversationService) Get(ctx context.Context, convID uint64, viewer closure.Viewer) (*ConversationView, error) {
	cv, st, err := s.fetch(ctx, convID, viewer)
	if err != nil {
		return nil, err
	}
	return &ConversationView{Conversation: *cv, State: st}, nil
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, viewer closure.Viewer) ([]model.Message, error) {
	cv, _, err := s.fetch(ctx, convID, viewer)
	if err != nil {
		return nil, err
	}
	return s.convRepo.ListMessages(ctx, cv.ID)
}

func (s *conversationService) CreateMessage(ctx context.Context, convID uint64, viewer closure.Viewer, body string) error {
	if body == "" {
		return errors.New("body is required")
	}
	cv, st, err := s.fetch(ctx, convID, viewer)
	if err != nil {
		return err
	}
	if !st.CanSend {
		return ErrConversationClosed
	}
	return s.convRepo.CreateMessage(ctx, &model.Message{
		ConversationID: cv.ID,
		SenderUID:      viewer.UID,
		Body:           body,
	})
}

// Close ends a conversation. Help Center conversations are never
// closable, only clearable; the asymmetry is deliberate product policy.
// A second closer gets ErrAlreadyClosed with the untouched record, so
// racing closers never double-stamp closed_at.
func (s *conversationService) Close(ctx context.Context, convID uint64, closedByUID, reason string, isAdmin bool) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isAdmin && !cv.HasParticipant(closedByUID) {
		return nil, ErrForbidden
	}
	if cv.IsSupport() {
		return nil, ErrSupportNotClosable
	}
	if cv.ClosedAt != nil {
		return cv, ErrAlreadyClosed
	}
	if reason == "" {
		reason = ClosedReasonEndedByUser
	}
	affected, err := s.convRepo.MarkClosed(ctx, convID, closedByUID, reason, s.clk.Now())
	if err != nil {
		return nil, err
	}
	cv, ferr := s.convRepo.FindByID(ctx, convID)
	if ferr != nil {
		return nil, ferr
	}
	if affected == 0 {
		// Lost the race to another closer.
		return cv, ErrAlreadyClosed
	}
	return cv, nil
}

// Clear wipes the message history for both parties while keeping the
// conversation shell and any closure metadata. Unlike Close, it is
// permitted on Help Center conversations.
func (s *conversationService) Clear(ctx context.Context, convID uint64, uid string, isAdmin bool) error {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !isAdmin && !cv.HasParticipant(uid) {
		return ErrForbidden
	}
	if err := s.convRepo.DeleteMessages(ctx, cv.ID); err != nil {
		return err
	}
	return s.convRepo.MarkCleared(ctx, cv.ID, s.clk.Now())
}

func (s *conversationService) ListClosedForAdmin(ctx context.Context) ([]ConversationView, error) {
	convs, err := s.convRepo.ListClosed(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	admin := closure.Viewer{IsAdmin: true}
	views := make([]ConversationView, 0, len(convs))
	for _, cv := range convs {
		st := closure.Evaluate(&cv, admin, now, s.windows)
		if !st.CanView {
			continue
		}
		views = append(views, ConversationView{Conversation: cv, State: st})
	}
	return views, nil
}

// PurgeExpiredClosed hard-deletes conversations past the admin retention
// window, messages included. It runs as a lazy sweep at the top of chat
// endpoints, so it must swallow errors: losing a sweep only delays the
// purge until the next request.
func (s *conversationService) PurgeExpiredClosed(ctx context.Context) {
	cutoff := s.clk.Now().Add(-s.windows.AdminRetention)
	purged, err := s.convRepo.DeleteClosedBefore(ctx, cutoff)
	if err != nil {
		log.WithError(err).Warn("retention sweep failed; will retry on a later request")
		return
	}
	if purged > 0 {
		log.WithField("conversations", purged).Info("purged expired closed conversations")
	}
}
