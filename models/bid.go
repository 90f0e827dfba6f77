package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bid struct {
	ID uint `gorm:"primarykey" json:"id"`

	UserID       uint    `gorm:"not null;index" json:"user_id"`
	GameID       uint    `gorm:"not null;index:idx_bids_settle,priority:1" json:"game_id"`
	GameResultID *uint   `gorm:"index:idx_bids_settle,priority:2" json:"game_result_id"`
	BidType      BidType `gorm:"column:bid_type;not null;index:idx_bids_settle,priority:3" json:"bid_type"`
	Session      Session `gorm:"column:session_type;size:8;not null;index:idx_bids_settle,priority:4" json:"session_type"`
	BidNumber    string  `gorm:"size:32;not null" json:"bid_number"`

	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Rate        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"rate"`
	TotalPayout decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_payout"`

	Status           BidStatus           `gorm:"size:16;not null;index" json:"status"`
	IsWinner         bool                `gorm:"not null" json:"is_winner"`
	WinningAmount    decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"winning_amount"`
	ResultDeclaredAt *time.Time          `json:"result_declared_at"`

	ReceiptID string `gorm:"size:36;index" json:"receipt_id"`
	BidDate   string `gorm:"size:10;not null;index" json:"bid_date"`
	CreatedBy uint   `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Receipt groups the bids an agent books in one submission. TotalAmount and
// TotalBids are stored as declared by the caller.
type Receipt struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	SeqNo       int             `gorm:"not null;uniqueIndex:uk_receipt_seq,priority:3" json:"seq_no"`
	AgentID     uint            `gorm:"not null;uniqueIndex:uk_receipt_seq,priority:1" json:"agent_id"`
	ReceiptDate string          `gorm:"size:10;not null;uniqueIndex:uk_receipt_seq,priority:2" json:"receipt_date"`
	Session     Session         `gorm:"column:session_type;size:8;not null" json:"session_type"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	TotalBids   int             `gorm:"not null" json:"total_bids"`

	Bids []Bid `gorm:"foreignKey:ReceiptID;references:ID" json:"bids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
