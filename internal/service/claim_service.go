package service

import (
	"context"
	"errors"
	"strings"

	"github.com/plazamkt/storefront-backend/internal/clock"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"gorm.io/gorm"
)

type ClaimService interface {
	File(ctx context.Context, orderID uint64, claimantUID, reason string) (*model.ProtectionClaim, error)
	Resolve(ctx context.Context, claimID uint64, adminUID string, approve bool) (*model.ProtectionClaim, error)
	ListOpen(ctx context.Context) ([]model.ProtectionClaim, error)
}

type claimService struct {
	claimRepo repository.ClaimRepository
	orderRepo repository.OrderRepository
	clk       clock.Clock
}

func NewClaimService(claimRepo repository.ClaimRepository, orderRepo repository.OrderRepository, clk clock.Clock) ClaimService {
	return &claimService{claimRepo: claimRepo, orderRepo: orderRepo, clk: clk}
}

func (s *claimService) File(ctx context.Context, orderID uint64, claimantUID, reason string) (*model.ProtectionClaim, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New("reason is required")
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != claimantUID {
		return nil, ErrForbidden
	}
	if !o.Protected() {
		return nil, errors.New("order is not protected")
	}
	if existing, err := s.claimRepo.FindByOrder(ctx, orderID); err == nil && existing != nil {
		return existing, ErrAlreadyClaimed
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &model.ProtectionClaim{
		OrderID:     orderID,
		ClaimantUID: claimantUID,
		Reason:      reason,
		Status:      model.ClaimStatusOpen,
	}
	if err := s.claimRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *claimService) Resolve(ctx context.Context, claimID uint64, adminUID string, approve bool) (*model.ProtectionClaim, error) {
	c, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.Status != model.ClaimStatusOpen {
		return c, ErrAlreadyResolved
	}
	now := s.clk.Now()
	if approve {
		c.Status = model.ClaimStatusApproved
	} else {
		c.Status = model.ClaimStatusDenied
	}
	c.ResolvedByUID = &adminUID
	c.ResolvedAt = &now
	if err := s.claimRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *claimService) ListOpen(ctx context.Context) ([]model.ProtectionClaim, error) {
	return s.claimRepo.ListOpen(ctx)
}
