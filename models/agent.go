package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgentLedgerEntry is one locked khatabook row. Rows are appended by the daily
// settlement of an agent and never updated.
type AgentLedgerEntry struct {
	ID uint `gorm:"primarykey" json:"id"`

	AgentID   uint   `gorm:"not null;uniqueIndex:uk_khatabook_day,priority:1;index:idx_khatabook_lookup,priority:1" json:"agent_id"`
	GameID    uint   `gorm:"not null;uniqueIndex:uk_khatabook_day,priority:2;index:idx_khatabook_lookup,priority:2" json:"game_id"`
	EntryDate string `gorm:"size:10;not null;uniqueIndex:uk_khatabook_day,priority:3;index:idx_khatabook_lookup,priority:3" json:"entry_date"`

	Debit          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"credit"`
	SettledAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"settled_amount"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"current_balance"`
	Locked         bool            `gorm:"not null" json:"locked"`
	CreatedBy      uint            `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
}

func (AgentLedgerEntry) TableName() string { return "agent_khatabook" }
