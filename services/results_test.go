package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"saudagar/events"
	"saudagar/models"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (e *env) declare(t *testing.T, in DeclareInput) *Declaration {
	t.Helper()
	if in.ResultDate == "" {
		in.ResultDate = day
	}
	out, err := e.results.DeclareResult(context.Background(), in)
	require.NoError(t, err)
	require.Zero(t, out.Report.Failed(), "%+v", out.Report.Steps)
	return out
}

func (e *env) assertStatus(t *testing.T, bids map[string]models.Bid, want map[string]models.BidStatus) {
	t.Helper()
	for key, status := range want {
		b, ok := bids[key]
		require.True(t, ok, "fixture %s", key)
		got := e.reload(t, b)
		assert.Equal(t, status, got.Status, key)

		switch status {
		case models.BidWon:
			assert.True(t, got.IsWinner, key)
			require.True(t, got.WinningAmount.Valid, key)
			assert.True(t, got.WinningAmount.Decimal.Equal(got.Amount.Mul(got.Rate)), "%s winning %s", key, got.WinningAmount.Decimal)
			assert.NotNil(t, got.ResultDeclaredAt, key)
		case models.BidLost:
			assert.False(t, got.IsWinner, key)
			assert.False(t, got.WinningAmount.Valid, key)
		case models.BidSubmitted:
			assert.Nil(t, got.ResultDeclaredAt, key)
		}
	}
}

func TestDeclareOpenSingleDigit(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.SingleDigit, "open", "5", "10"),
		bidIn(g.ID, models.SingleDigit, "open", "3", "10"),
		bidIn(g.ID, models.SingleDigit, "close", "5", "10"),
	)

	out := e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "5"})
	assert.Equal(t, int64(3), out.Report.Linked)
	assert.Equal(t, models.ResultPending, out.Result.OpenStatus)

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/single_digit/5":  models.BidWon,
		"Open/single_digit/3":  models.BidLost,
		"Close/single_digit/5": models.BidSubmitted,
	})

	won := e.reload(t, bids["Open/single_digit/5"])
	assert.True(t, won.WinningAmount.Decimal.Equal(dec("95")))
}

func TestDeclareOpenSinglePanna(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.SinglePanna, "open", "123", "10"),
		bidIn(g.ID, models.SinglePanna, "open", "124", "10"),
		bidIn(g.ID, models.DoublePanna, "open", "112", "10"),
		bidIn(g.ID, models.TriplePanna, "open", "111", "10"),
		bidIn(g.ID, models.SinglePanna, "open", "6", "10"),
		bidIn(g.ID, models.SinglePanna, "open", "5", "10"),
		bidIn(g.ID, models.DoublePanna, "open", "6", "10"),
		bidIn(g.ID, models.TriplePanna, "open", "6", "10"),
		bidIn(g.ID, models.SinglePanna, "close", "123", "10"),
	)

	out := e.declare(t, DeclareInput{GameID: g.ID, OpenResult: "123"})
	assert.Equal(t, models.ResultDeclared, out.Result.OpenStatus)
	assert.Equal(t, models.ResultPending, out.Result.CloseStatus)
	assert.NotNil(t, out.Result.OpenDeclaredAt)

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/single_panna/123":  models.BidWon,
		"Open/single_panna/124":  models.BidLost,
		"Open/double_panna/112":  models.BidLost,
		"Open/triple_panna/111":  models.BidLost,
		"Open/single_panna/6":    models.BidWon,
		"Open/single_panna/5":    models.BidLost,
		"Open/double_panna/6":    models.BidLost,
		"Open/triple_panna/6":    models.BidLost,
		"Close/single_panna/123": models.BidSubmitted,
	})
}

func TestDeclareDoubleAndTriplePannaPoints(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Milan Day")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.DoublePanna, "open", "112", "10"),
		bidIn(g.ID, models.DoublePanna, "open", "4", "10"),
		bidIn(g.ID, models.SinglePanna, "open", "4", "10"),
		bidIn(g.ID, models.TriplePanna, "close", "555", "10"),
		bidIn(g.ID, models.TriplePanna, "close", "5", "10"),
		bidIn(g.ID, models.DoublePanna, "close", "5", "10"),
	)

	e.declare(t, DeclareInput{GameID: g.ID, OpenResult: "112", CloseResult: "555"})

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/double_panna/112":  models.BidWon,
		"Open/double_panna/4":    models.BidWon,
		"Open/single_panna/4":    models.BidLost,
		"Close/triple_panna/555": models.BidWon,
		"Close/triple_panna/5":   models.BidWon,
		"Close/double_panna/5":   models.BidLost,
	})
}

func TestDeclareJodiJugarAndCloseDigit(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Rajdhani Night")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.JodiDigit, "open", "27", "10"),
		bidIn(g.ID, models.JodiDigit, "open", "72", "10"),
		bidIn(g.ID, models.SingleDigit, "close", "7", "10"),
		bidIn(g.ID, models.SingleDigit, "close", "2", "10"),
		bidIn(g.ID, models.Jugar, "open", "12345/067", "10"),
		bidIn(g.ID, models.Jugar, "open", "12345/089", "10"),
		bidIn(g.ID, models.SingleDigit, "open", "2", "10"),
	)

	out := e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "27"})

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/jodi_digit/27":    models.BidWon,
		"Open/jodi_digit/72":    models.BidLost,
		"Close/single_digit/7":  models.BidWon,
		"Close/single_digit/2":  models.BidLost,
		"Open/jugar/12345/067":  models.BidWon,
		"Open/jugar/12345/089":  models.BidLost,
		"Open/single_digit/2":   models.BidSubmitted,
	})

	steps := map[string]StepOutcome{}
	for _, st := range out.Report.Steps {
		steps[st.Step] = st
	}
	assert.Equal(t, int64(1), steps["open_jugar"].Won)
	assert.Equal(t, int64(1), steps["open_jugar"].Lost)
	assert.Equal(t, "7", steps["close_single_digit"].Winner)
}

// failUpdatesOf makes every bid update scoped to bidType fail.
func failUpdatesOf(t *testing.T, db *gorm.DB, bidType models.BidType) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_bid_type", func(tx *gorm.DB) {
		c, ok := tx.Statement.Clauses["WHERE"]
		if !ok {
			return
		}
		where, ok := c.Expression.(clause.Where)
		if !ok {
			return
		}
		for _, expr := range where.Exprs {
			e, ok := expr.(clause.Expr)
			if !ok {
				continue
			}
			for _, v := range e.Vars {
				if bt, ok := v.(models.BidType); ok && bt == bidType {
					tx.AddError(errors.New("bids table is read only"))
					return
				}
			}
		}
	})
	require.NoError(t, err)
}

func TestFailingStepDoesNotStopSettlement(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan Night")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.JodiDigit, "open", "27", "10"),
		bidIn(g.ID, models.JodiDigit, "open", "72", "10"),
		bidIn(g.ID, models.SingleDigit, "close", "7", "10"),
		bidIn(g.ID, models.Jugar, "open", "12/67", "10"),
		bidIn(g.ID, models.SinglePanna, "open", "123", "10"),
		bidIn(g.ID, models.SinglePanna, "close", "467", "10"),
	)

	failUpdatesOf(t, e.db, models.JodiDigit)

	log, hook := logtest.NewNullLogger()
	results := NewResultService(e.db, log, events.Noop{}, time.UTC)

	out, err := results.DeclareResult(context.Background(), DeclareInput{
		GameID: g.ID, OpenResult: "123", CloseResult: "467", WinningNumber: "27", ResultDate: day,
	})
	require.NoError(t, err)

	require.Equal(t, 1, out.Report.Failed(), "%+v", out.Report.Steps)
	var failed StepOutcome
	for _, st := range out.Report.Steps {
		if st.Error != "" {
			failed = st
		}
	}
	assert.Equal(t, "open_jodi_digit", failed.Step)
	assert.Contains(t, failed.Error, "read only")

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/jodi_digit/27":     models.BidSubmitted,
		"Open/jodi_digit/72":     models.BidSubmitted,
		"Close/single_digit/7":   models.BidWon,
		"Open/jugar/12/67":       models.BidWon,
		"Open/single_panna/123":  models.BidWon,
		"Close/single_panna/467": models.BidWon,
	})

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "settlement step failed" {
			logged = true
			assert.Equal(t, "open_jodi_digit", entry.Data["step"])
		}
	}
	assert.True(t, logged)
}

func TestRedeclareIsFixedPoint(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.SinglePanna, "open", "123", "10"),
		bidIn(g.ID, models.JodiDigit, "open", "62", "10"),
		bidIn(g.ID, models.Jugar, "open", "6/2", "10"),
		bidIn(g.ID, models.SingleDigit, "close", "9", "10"),
	)

	in := DeclareInput{GameID: g.ID, OpenResult: "123", CloseResult: "480", WinningNumber: "62"}
	e.declare(t, in)

	before := map[string]models.Bid{}
	for k, b := range bids {
		before[k] = e.reload(t, b)
	}

	again := e.declare(t, in)
	for _, st := range again.Report.Steps {
		assert.Zero(t, st.Won, st.Step)
		assert.Zero(t, st.Lost, st.Step)
	}
	assert.Zero(t, again.Report.Linked)

	for k, b := range before {
		got := e.reload(t, b)
		assert.Equal(t, b.Status, got.Status, k)
		assert.Equal(t, b.WinningAmount, got.WinningAmount, k)
		assert.True(t, b.UpdatedAt.Equal(got.UpdatedAt), k)
	}

	var results int64
	require.NoError(t, e.db.Model(&models.GameResult{}).Count(&results).Error)
	assert.Equal(t, int64(1), results)
}

func TestRedeclareCorrectsWinner(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)

	bids := e.place(t, 5,
		bidIn(g.ID, models.SingleDigit, "open", "5", "10"),
		bidIn(g.ID, models.SingleDigit, "open", "3", "10"),
	)

	e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "5"})
	e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "3"})

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/single_digit/5": models.BidLost,
		"Open/single_digit/3": models.BidWon,
	})
}

func TestOmittedFieldResetsSessionOnly(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)

	bids := e.place(t, 5, bidIn(g.ID, models.SinglePanna, "open", "123", "10"))

	first := e.declare(t, DeclareInput{GameID: g.ID, OpenResult: "123"})
	second := e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "6"})

	assert.Equal(t, first.Result.ID, second.Result.ID)
	assert.Equal(t, models.ResultPending, second.Result.OpenStatus)
	assert.Empty(t, second.Result.OpenResult)
	assert.Equal(t, "6", second.Result.WinningNumber)

	e.assertStatus(t, bids, map[string]models.BidStatus{
		"Open/single_panna/123": models.BidWon,
	})
}

func TestDeclareValidation(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	ctx := context.Background()

	for _, in := range []DeclareInput{
		{},
		{GameID: g.ID, OpenResult: "12a"},
		{GameID: g.ID, OpenResult: "1234"},
		{GameID: g.ID, WinningNumber: "123"},
		{GameID: g.ID, ResultDate: "01-03-2025"},
	} {
		_, err := e.results.DeclareResult(ctx, in)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "%+v: %v", in, err)
	}

	_, err := e.results.DeclareResult(ctx, DeclareInput{GameID: 404, OpenResult: "123"})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDeclareStoresAndPublishesReport(t *testing.T) {
	e := newEnv(t)
	g := e.game(t, "Kalyan")
	e.allRates(t, g.ID)
	e.place(t, 5, bidIn(g.ID, models.SingleDigit, "open", "5", "10"))

	out := e.declare(t, DeclareInput{GameID: g.ID, WinningNumber: "5", DeclaredBy: 1})

	var stored models.GameResult
	require.NoError(t, e.db.First(&stored, out.Result.ID).Error)
	require.NotEmpty(t, stored.SettlementReport)
	require.NotNil(t, stored.DeclaredBy)
	assert.Equal(t, uint(1), *stored.DeclaredBy)

	var report SettlementReport
	require.NoError(t, json.Unmarshal(stored.SettlementReport, &report))
	require.Len(t, report.Steps, 1)
	assert.Equal(t, "open_single_digit", report.Steps[0].Step)
	assert.Equal(t, int64(1), report.Steps[0].Won)

	require.Len(t, e.pub.events, 1)
	assert.Equal(t, events.RoutingResultDeclared, e.pub.events[0].key)
}

func TestCreateResultShells(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.game(t, "Kalyan")
	b := e.game(t, "Milan")
	off := e.game(t, "Closed Market")
	require.NoError(t, e.db.Model(&off).Update("is_active", false).Error)
	e.allRates(t, a.ID)

	bids := e.place(t, 5, bidIn(a.ID, models.SingleDigit, "open", "1", "10"))

	created, err := e.results.CreateResultShells(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	created, err = e.results.CreateResultShells(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, created)

	var shells []models.GameResult
	require.NoError(t, e.db.Order("game_id").Find(&shells).Error)
	require.Len(t, shells, 2)
	assert.Equal(t, a.ID, shells[0].GameID)
	assert.Equal(t, b.ID, shells[1].GameID)
	assert.Equal(t, models.ResultPending, shells[0].OpenStatus)

	linked := e.reload(t, bids["Open/single_digit/1"])
	require.NotNil(t, linked.GameResultID)
	assert.Equal(t, shells[0].ID, *linked.GameResultID)

	history, err := e.results.ResultHistory(ctx, a.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
