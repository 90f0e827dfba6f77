package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"saudagar/cache"
	"saudagar/database"
	"saudagar/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const day = "2025-03-01"

type env struct {
	db      *gorm.DB
	bids    *BidService
	results *ResultService
	ledger  *LedgerService
	pub     *recordingPublisher
}

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.events = append(p.events, published{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "saudagar.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logrus.New()
	log.SetOutput(io.Discard)

	pub := &recordingPublisher{}
	return &env{
		db:      db,
		bids:    NewBidService(db, cache.NewMemory(), log, time.UTC, time.Minute),
		results: NewResultService(db, log, pub, time.UTC),
		ledger:  NewLedgerService(db, log, pub, time.UTC),
		pub:     pub,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *env) game(t *testing.T, name string) models.Game {
	t.Helper()
	g := models.Game{Name: name, OpenTime: "10:00", CloseTime: "12:00", IsActive: true}
	require.NoError(t, e.db.Create(&g).Error)
	return g
}

func (e *env) agent(t *testing.T, commission string) models.User {
	t.Helper()
	u := models.User{FullName: "agent", Role: models.RoleAgent, CommissionRate: dec(commission)}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *env) rate(t *testing.T, gameID uint, bt models.BidType, rate string) {
	t.Helper()
	r := models.BidRate{GameID: gameID, BidTypeID: bt, RatePerUnit: dec(rate), IsActive: true}
	require.NoError(t, e.db.Create(&r).Error)
}

// allRates prices every bid type at 10 except single digit at 9.5.
func (e *env) allRates(t *testing.T, gameID uint) {
	t.Helper()
	for _, bt := range models.AllBidTypes {
		r := "10"
		if bt == models.SingleDigit {
			r = "9.5"
		}
		e.rate(t, gameID, bt, r)
	}
}

func bidIn(gameID uint, bt models.BidType, session, number, amount string) BidInput {
	return BidInput{
		UserID:    1,
		GameID:    gameID,
		BidType:   bt,
		BidNumber: number,
		Amount:    dec(amount),
		Session:   session,
		BidDate:   day,
	}
}

// place books bids under one receipt of agentID and returns the stored bids
// keyed by "session/type/number".
func (e *env) place(t *testing.T, agentID uint, bids ...BidInput) map[string]models.Bid {
	t.Helper()
	out, err := e.bids.PlaceBids(context.Background(), ReceiptInput{
		AgentID:     agentID,
		Session:     "open",
		ReceiptDate: day,
		TotalBids:   len(bids),
	}, bids)
	require.NoError(t, err)

	m := make(map[string]models.Bid, len(out.Bids))
	for _, b := range out.Bids {
		m[bidKey(b)] = b
	}
	return m
}

func bidKey(b models.Bid) string {
	return string(b.Session) + "/" + b.BidType.Code() + "/" + b.BidNumber
}

func (e *env) reload(t *testing.T, b models.Bid) models.Bid {
	t.Helper()
	var got models.Bid
	require.NoError(t, e.db.First(&got, b.ID).Error)
	return got
}
