package services

import (
	"context"
	"strings"

	"saudagar/models"

	"gorm.io/gorm"
)

// BidFilter holds the optional predicates of a bid listing. Zero values are
// ignored.
type BidFilter struct {
	Date      string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	GameID    uint             `json:"game_id"`
	Session   string           `json:"session_type"`
	Status    models.BidStatus `json:"status" validate:"omitempty,oneof=submitted won lost"`
	BidType   models.BidType   `json:"bid_type"`
	UserID    uint             `json:"user_id"`
	AgentID   uint             `json:"agent_id"`
	ReceiptID string           `json:"receipt_id" validate:"omitempty,max=36"`
}

func (f BidFilter) check() error {
	if err := Validate(&f); err != nil {
		return err
	}
	if f.Session != "" {
		if _, ok := models.ParseSession(f.Session); !ok {
			return invalid("session_type", "must be open or close")
		}
	}
	if f.BidType != 0 && !f.BidType.Valid() {
		return invalid("bid_type", "unknown bid type %d", uint(f.BidType))
	}
	return nil
}

// Apply adds the filter predicates to a query over bids.
func (f BidFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.Date != "" {
		q = q.Where("bids.bid_date = ?", f.Date)
	}
	if f.GameID != 0 {
		q = q.Where("bids.game_id = ?", f.GameID)
	}
	if s, ok := models.ParseSession(f.Session); ok {
		q = q.Where("bids.session_type = ?", s)
	}
	if f.Status != "" {
		q = q.Where("bids.status = ?", f.Status)
	}
	if f.BidType != 0 {
		q = q.Where("bids.bid_type = ?", f.BidType)
	}
	if f.UserID != 0 {
		q = q.Where("bids.user_id = ?", f.UserID)
	}
	if id := strings.TrimSpace(f.ReceiptID); id != "" {
		q = q.Where("bids.receipt_id = ?", id)
	}
	if f.AgentID != 0 {
		q = q.Joins("JOIN receipts ON receipts.id = bids.receipt_id").
			Where("receipts.agent_id = ?", f.AgentID)
	}
	return q
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Pagination) normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

type BidPage struct {
	Bids       []models.Bid `json:"bids"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int64        `json:"total_pages"`
}

func (s *BidService) FetchBids(ctx context.Context, f BidFilter, p Pagination) (*BidPage, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	p = p.normalize()

	base := func() *gorm.DB {
		return f.Apply(s.db.WithContext(ctx).Model(&models.Bid{}))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, persist("count bids", err)
	}

	bids := []models.Bid{}
	err := base().
		Select("bids.*").
		Order("bids.created_at DESC").Order("bids.id DESC").
		Limit(p.Limit).Offset((p.Page - 1) * p.Limit).
		Find(&bids).Error
	if err != nil {
		return nil, persist("list bids", err)
	}

	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return &BidPage{Bids: bids, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}, nil
}

func (s *BidService) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("id", "is required")
	}

	var receipt models.Receipt
	err := s.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		return nil, lookup("receipt", id, err)
	}
	return &receipt, nil
}
