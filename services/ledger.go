package services

import (
	"context"
	"errors"
	"time"

	"saudagar/events"
	"saudagar/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerService struct {
	db        *gorm.DB
	log       *logrus.Logger
	publisher events.Publisher
	loc       *time.Location
}

func NewLedgerService(db *gorm.DB, log *logrus.Logger, publisher events.Publisher, loc *time.Location) *LedgerService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{db: db, log: log, publisher: publisher, loc: loc}
}

type AgentLedger struct {
	AgentID uint   `json:"agent_id"`
	GameID  uint   `json:"game_id"`
	Date    string `json:"date"`

	OpenCollection   decimal.Decimal `json:"open_collection"`
	CloseCollection  decimal.Decimal `json:"close_collection"`
	Collection       decimal.Decimal `json:"collection"`
	TotalWinningPaid decimal.Decimal `json:"total_winning_paid"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	Commission       decimal.Decimal `json:"commission"`
	Net              decimal.Decimal `json:"net"`
	ToTake           decimal.Decimal `json:"to_take"`
	ToGive           decimal.Decimal `json:"to_give"`

	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CreditToday     decimal.Decimal `json:"credit_today"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Settled         bool            `json:"settled"`
}

var hundred = decimal.NewFromInt(100)

// ComputeAgentLedger derives the day position of an agent in a game from the
// bids booked under the agent's receipts. The carried balance comes from the
// latest entry strictly before date, which need not be the previous day.
func (s *LedgerService) ComputeAgentLedger(ctx context.Context, agentID, gameID uint, date string) (*AgentLedger, error) {
	if agentID == 0 {
		return nil, invalid("agent_id", "is required")
	}
	if gameID == 0 {
		return nil, invalid("game_id", "is required")
	}
	if date == "" {
		date = models.Today(s.loc)
	}
	if !models.ValidDate(date) {
		return nil, invalid("date", "must be a YYYY-MM-DD date")
	}

	var agent models.User
	if err := s.db.WithContext(ctx).First(&agent, agentID).Error; err != nil {
		return nil, lookup("agent", agentID, err)
	}

	out := &AgentLedger{
		AgentID:        agentID,
		GameID:         gameID,
		Date:           date,
		CommissionRate: agent.CommissionRate,
	}

	var (
		bySession []struct {
			Session string
			Total   decimal.Decimal
		}
		winnings struct{ Total decimal.Decimal }
		previous []models.AgentLedgerEntry
		today    struct {
			Credit  decimal.Decimal
			Entries int64
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.agentBids(gctx, agentID, gameID, date).
			Select("b.session_type AS session, COALESCE(SUM(b.amount), 0) AS total").
			Group("b.session_type").
			Scan(&bySession).Error
	})
	g.Go(func() error {
		return s.agentBids(gctx, agentID, gameID, date).
			Where("b.status = ?", models.BidWon).
			Select("COALESCE(SUM(b.winning_amount), 0) AS total").
			Scan(&winnings).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("agent_id = ? AND game_id = ? AND entry_date < ?", agentID, gameID, date).
			Order("entry_date DESC").Order("id DESC").
			Limit(1).
			Find(&previous).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.AgentLedgerEntry{}).
			Where("agent_id = ? AND game_id = ? AND entry_date = ?", agentID, gameID, date).
			Select("COALESCE(SUM(credit), 0) AS credit, COUNT(*) AS entries").
			Scan(&today).Error
	})
	if err := g.Wait(); err != nil {
		return nil, persist("compute agent ledger", err)
	}

	// sqlite sums numeric columns as floats; every aggregate is cut back to
	// paise before it is used.
	for _, row := range bySession {
		switch models.Session(row.Session) {
		case models.SessionOpen:
			out.OpenCollection = out.OpenCollection.Add(money(row.Total))
		case models.SessionClose:
			out.CloseCollection = out.CloseCollection.Add(money(row.Total))
		}
	}
	if len(previous) > 0 {
		out.PreviousBalance = money(previous[0].CurrentBalance)
	}
	out.TotalWinningPaid = money(winnings.Total)
	out.CreditToday = money(today.Credit)
	out.Settled = today.Entries > 0

	out.Collection = out.OpenCollection.Add(out.CloseCollection)
	out.Commission = out.Collection.Mul(out.CommissionRate).Div(hundred).Round(0)
	out.Net = out.Collection.Sub(out.TotalWinningPaid).Sub(out.Commission)
	if out.Net.IsNegative() {
		out.ToGive = out.Net.Neg()
	} else {
		out.ToTake = out.Net
	}
	out.Outstanding = out.PreviousBalance.Add(out.Net).Sub(out.CreditToday)

	return out, nil
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func (s *LedgerService) agentBids(ctx context.Context, agentID, gameID uint, date string) *gorm.DB {
	return s.db.WithContext(ctx).Table("bids AS b").
		Joins("JOIN receipts r ON r.id = b.receipt_id").
		Where("r.agent_id = ? AND b.game_id = ? AND b.bid_date = ?", agentID, gameID, date)
}

type SettleInput struct {
	AgentID        uint            `json:"agent_id" validate:"required"`
	GameID         uint            `json:"game_id" validate:"required"`
	Date           string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	SettledAmount  decimal.Decimal `json:"settled_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedBy      uint            `json:"-"`
}

// SettleAgentDay appends the locked khatabook row of (agent, game, date).
// Rows are never updated; a second settlement of the same day is rejected.
func (s *LedgerService) SettleAgentDay(ctx context.Context, in SettleInput) (*models.AgentLedgerEntry, error) {
	if err := Validate(&in); err != nil {
		return nil, err
	}
	if in.Debit.IsNegative() {
		return nil, invalid("debit", "cannot be negative")
	}
	if in.Credit.IsNegative() {
		return nil, invalid("credit", "cannot be negative")
	}
	if in.Date == "" {
		in.Date = models.Today(s.loc)
	}

	entry := models.AgentLedgerEntry{
		AgentID:        in.AgentID,
		GameID:         in.GameID,
		EntryDate:      in.Date,
		Debit:          in.Debit,
		Credit:         in.Credit,
		SettledAmount:  in.SettledAmount,
		CurrentBalance: in.CurrentBalance,
		Locked:         true,
		CreatedBy:      in.CreatedBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agent models.User
		if err := tx.First(&agent, in.AgentID).Error; err != nil {
			return lookup("agent", in.AgentID, err)
		}
		var game models.Game
		if err := tx.First(&game, in.GameID).Error; err != nil {
			return lookup("game", in.GameID, err)
		}

		var existing []models.AgentLedgerEntry
		if err := lockingRead(tx).
			Where("agent_id = ? AND game_id = ? AND entry_date = ? AND locked = ?", in.AgentID, in.GameID, in.Date, true).
			Limit(1).Find(&existing).Error; err != nil {
			return persist("check khatabook entry", err)
		}
		if len(existing) > 0 {
			return invalid("date", "agent %d is already settled for game %d on %s", in.AgentID, in.GameID, in.Date)
		}

		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return invalid("date", "agent %d is already settled for game %d on %s", in.AgentID, in.GameID, in.Date)
			}
			return persist("insert khatabook entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"agent_id":        entry.AgentID,
		"game_id":         entry.GameID,
		"entry_date":      entry.EntryDate,
		"debit":           entry.Debit.String(),
		"credit":          entry.Credit.String(),
		"current_balance": entry.CurrentBalance.String(),
	}).Info("agent day settled")

	if err := s.publisher.Publish(ctx, events.RoutingLedgerSettled, entry); err != nil {
		s.log.WithError(err).WithField("entry_id", entry.ID).Warn("failed to publish ledger event")
	}
	return &entry, nil
}

// lockingRead takes row locks where the dialect supports them.
func lockingRead(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *LedgerService) LedgerHistory(ctx context.Context, agentID, gameID uint, limit int) ([]models.AgentLedgerEntry, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}

	var entries []models.AgentLedgerEntry
	err := s.db.WithContext(ctx).
		Where("agent_id = ? AND game_id = ?", agentID, gameID).
		Order("entry_date DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, persist("list khatabook entries", err)
	}
	return entries, nil
}
