package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Game struct {
	gorm.Model

	Name         string          `gorm:"column:game_name;size:64;not null" json:"game_name"`
	Description  string          `gorm:"size:255" json:"description"`
	OpenTime     string          `gorm:"size:5" json:"open_time"`
	CloseTime    string          `gorm:"size:5" json:"close_time"`
	IsActive     bool            `gorm:"default:true;index" json:"is_active"`
	MinBetAmount decimal.Decimal `gorm:"type:numeric(12,2)" json:"min_bet_amount"`
	MaxBetAmount decimal.Decimal `gorm:"type:numeric(12,2)" json:"max_bet_amount"`
	CreatedBy    uint            `json:"created_by"`
}

// GameResult is the single result row of a game for one date. Declaration
// upserts it on (game_id, result_date).
type GameResult struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	GameID     uint   `gorm:"not null;uniqueIndex:uk_game_result_date,priority:1" json:"game_id"`
	ResultDate string `gorm:"size:10;not null;uniqueIndex:uk_game_result_date,priority:2;index" json:"result_date"`

	OpenResult    string       `gorm:"size:3;not null;default:''" json:"open_result"`
	CloseResult   string       `gorm:"size:3;not null;default:''" json:"close_result"`
	WinningNumber string       `gorm:"size:2;not null;default:''" json:"winning_number"`
	OpenStatus    ResultStatus `gorm:"size:16;not null;default:pending" json:"open_status"`
	CloseStatus   ResultStatus `gorm:"size:16;not null;default:pending" json:"close_status"`

	OpenDeclaredAt  *time.Time `json:"open_declared_at"`
	CloseDeclaredAt *time.Time `json:"close_declared_at"`
	DeclaredBy      *uint      `json:"declared_by"`

	SettlementReport datatypes.JSON `json:"settlement_report,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BidTypeRecord is the catalog row behind BidType.
type BidTypeRecord struct {
	ID          BidType `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TypeCode    string  `gorm:"size:32;uniqueIndex;not null" json:"type_code"`
	DisplayName string  `gorm:"size:64;not null" json:"display_name"`
	IsActive    bool    `gorm:"not null" json:"is_active"`
}

func (BidTypeRecord) TableName() string { return "bid_types" }

// BidRate is the current payout multiplier of a bid type in a game. Bids copy
// the rate at placement, so edits here never touch existing bids.
type BidRate struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	GameID      uint            `gorm:"not null;uniqueIndex:uk_bid_rate,priority:1" json:"game_id"`
	BidTypeID   BidType         `gorm:"not null;uniqueIndex:uk_bid_rate,priority:2" json:"bid_type_id"`
	RatePerUnit decimal.Decimal `gorm:"column:rate_per_unit;type:numeric(10,2);not null" json:"rate_per_unit"`
	MinAmount   decimal.Decimal `gorm:"column:min_bid_amount;type:numeric(12,2);not null" json:"min_bid_amount"`
	MaxAmount   decimal.Decimal `gorm:"column:max_bid_amount;type:numeric(12,2);not null" json:"max_bid_amount"`
	IsActive    bool            `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
