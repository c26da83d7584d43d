package repository

import (
	"context"
	"time"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	FindOrCreateForProduct(ctx context.Context, productID uint64, vendorUID, customerUID string) (*model.Conversation, error)
	FindOrCreateSupport(ctx context.Context, customerUID string) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByUser(ctx context.Context, uid string) ([]model.Conversation, error)
	ListClosed(ctx context.Context) ([]model.Conversation, error)
	MarkClosed(ctx context.Context, id uint64, closedByUID, reason string, at time.Time) (int64, error)
	MarkCleared(ctx context.Context, id uint64, at time.Time) error
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64) ([]model.Message, error)
	DeleteMessages(ctx context.Context, convID uint64) error
	DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindOrCreateForProduct(ctx context.Context, productID uint64, vendorUID, customerUID string) (*model.Conversation, error) {
	cv := model.Conversation{ProductID: &productID, VendorUID: vendorUID, CustomerUID: customerUID}
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND customer_uid = ?", productID, customerUID).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindOrCreateSupport(ctx context.Context, customerUID string) (*model.Conversation, error) {
	cv := model.Conversation{VendorUID: model.SupportUID, CustomerUID: customerUID}
	if err := r.db.WithContext(ctx).
		Where("product_id IS NULL AND customer_uid = ? AND vendor_uid = ?", customerUID, model.SupportUID).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByUser(ctx context.Context, uid string) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("vendor_uid = ? OR customer_uid = ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) ListClosed(ctx context.Context) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("closed_at IS NOT NULL").
		Order("closed_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkClosed stamps closure only on a still-open row so two racing
// closers cannot overwrite each other's timestamp. Returns rows affected.
func (r *conversationRepository) MarkClosed(ctx context.Context, id uint64, closedByUID, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND closed_at IS NULL", id).
		Updates(map[string]interface{}{
			"closed_at":     at,
			"closed_by_uid": closedByUID,
			"closed_reason": reason,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *conversationRepository) MarkCleared(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("cleared_at", at).Error
}

func (r *conversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *conversationRepository) DeleteMessages(ctx context.Context, convID uint64) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Delete(&model.Message{}).Error
}

// DeleteClosedBefore removes conversations closed at or before cutoff,
// messages first. Safe to run concurrently: a row already gone simply is
// not matched again.
func (r *conversationRepository) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("closed_at IS NOT NULL AND closed_at <= ?", cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", ids).
		Delete(&model.Message{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.Conversation{})
	return res.RowsAffected, res.Error
}
