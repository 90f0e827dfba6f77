package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"saudagar/events"
	"saudagar/models"
	"saudagar/panna"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultService struct {
	db        *gorm.DB
	log       *logrus.Logger
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

func NewResultService(db *gorm.DB, log *logrus.Logger, publisher events.Publisher, loc *time.Location) *ResultService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ResultService{db: db, log: log, publisher: publisher, loc: loc, now: time.Now}
}

type DeclareInput struct {
	GameID        uint   `json:"game_id" validate:"required"`
	OpenResult    string `json:"open_result" validate:"omitempty,max=3"`
	CloseResult   string `json:"close_result" validate:"omitempty,max=3"`
	WinningNumber string `json:"winning_number" validate:"omitempty,max=2"`
	ResultDate    string `json:"result_date" validate:"omitempty,datetime=2006-01-02"`
	DeclaredBy    uint   `json:"-"`
}

type Declaration struct {
	Result models.GameResult `json:"result"`
	Report SettlementReport  `json:"settlement"`
}

// DeclareResult upserts the (game, date) result and settles its bids. Each
// session status follows the fields present in this call only, so omitting
// a field reverts that session to pending while already settled bids stay
// as they are.
func (s *ResultService) DeclareResult(ctx context.Context, in DeclareInput) (*Declaration, error) {
	in.OpenResult = strings.TrimSpace(in.OpenResult)
	in.CloseResult = strings.TrimSpace(in.CloseResult)
	in.WinningNumber = strings.TrimSpace(in.WinningNumber)

	if err := Validate(&in); err != nil {
		return nil, err
	}
	for field, v := range map[string]string{
		"open_result":    in.OpenResult,
		"close_result":   in.CloseResult,
		"winning_number": in.WinningNumber,
	} {
		if v != "" && !panna.IsDigits(v) {
			return nil, invalid(field, "must contain digits only")
		}
	}

	db := s.db.WithContext(ctx)

	var game models.Game
	if err := db.First(&game, in.GameID).Error; err != nil {
		return nil, lookup("game", in.GameID, err)
	}

	date := in.ResultDate
	if date == "" {
		date = models.Today(s.loc)
	}

	now := s.now()
	row := models.GameResult{
		GameID:        in.GameID,
		ResultDate:    date,
		OpenResult:    in.OpenResult,
		CloseResult:   in.CloseResult,
		WinningNumber: in.WinningNumber,
		OpenStatus:    statusOf(in.OpenResult),
		CloseStatus:   statusOf(in.CloseResult),
	}
	set := map[string]any{
		"open_result":    in.OpenResult,
		"close_result":   in.CloseResult,
		"winning_number": in.WinningNumber,
		"open_status":    row.OpenStatus,
		"close_status":   row.CloseStatus,
		"updated_at":     now,
	}
	if in.OpenResult != "" {
		row.OpenDeclaredAt = &now
		set["open_declared_at"] = now
	}
	if in.CloseResult != "" {
		row.CloseDeclaredAt = &now
		set["close_declared_at"] = now
	}
	if in.DeclaredBy != 0 {
		row.DeclaredBy = &in.DeclaredBy
		set["declared_by"] = in.DeclaredBy
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "result_date"}},
		DoUpdates: clause.Assignments(set),
	}).Create(&row).Error
	if err != nil {
		return nil, persist("upsert game result", err)
	}

	var result models.GameResult
	if err := db.Where("game_id = ? AND result_date = ?", in.GameID, date).First(&result).Error; err != nil {
		return nil, lookup("game result", date, err)
	}

	report := s.Settle(ctx, &result)

	if data, err := json.Marshal(report); err == nil {
		result.SettlementReport = datatypes.JSON(data)
		if err := db.Model(&models.GameResult{}).Where("id = ?", result.ID).
			Update("settlement_report", result.SettlementReport).Error; err != nil {
			s.log.WithError(err).WithField("game_result_id", result.ID).Warn("failed to store settlement report")
		}
	}

	if err := s.publisher.Publish(ctx, events.RoutingResultDeclared, Declaration{Result: result, Report: report}); err != nil {
		s.log.WithError(err).WithField("game_result_id", result.ID).Warn("failed to publish settlement event")
	}

	return &Declaration{Result: result, Report: report}, nil
}

func statusOf(v string) models.ResultStatus {
	if v != "" {
		return models.ResultDeclared
	}
	return models.ResultPending
}

type StepOutcome struct {
	Step    string         `json:"step"`
	BidType string         `json:"bid_type"`
	Session models.Session `json:"session_type"`
	Winner  string         `json:"winner,omitempty"`
	Won     int64          `json:"won"`
	Lost    int64          `json:"lost"`
	Error   string         `json:"error,omitempty"`
}

type SettlementReport struct {
	GameID       uint          `json:"game_id"`
	GameResultID uint          `json:"game_result_id"`
	ResultDate   string        `json:"result_date"`
	Linked       int64         `json:"linked"`
	Steps        []StepOutcome `json:"steps"`
	SettledAt    time.Time     `json:"settled_at"`
}

func (r SettlementReport) Failed() int {
	n := 0
	for _, st := range r.Steps {
		if st.Error != "" {
			n++
		}
	}
	return n
}

// Settle resolves every bid governed by the fields of result. Steps run as
// independent statements; a failing step is recorded in the report and the
// remaining steps still run.
func (s *ResultService) Settle(ctx context.Context, result *models.GameResult) SettlementReport {
	p := &pass{
		db:     s.db.WithContext(ctx),
		result: result,
		now:    s.now(),
		report: SettlementReport{
			GameID:       result.GameID,
			GameResultID: result.ID,
			ResultDate:   result.ResultDate,
		},
	}
	p.report.SettledAt = p.now

	p.link()

	if len(result.WinningNumber) == 1 {
		p.exact("open_single_digit", models.SingleDigit, models.SessionOpen, result.WinningNumber, nil)
	}
	if len(result.OpenResult) == 3 {
		p.pannaSteps("open", models.SessionOpen, result.OpenResult)
	}
	if len(result.WinningNumber) == 2 {
		p.exact("close_single_digit", models.SingleDigit, models.SessionClose, result.WinningNumber[1:], nil)
		p.exact("open_jodi_digit", models.JodiDigit, models.SessionOpen, result.WinningNumber, nil)
		p.jugar(result.WinningNumber)
	}
	if len(result.CloseResult) == 3 {
		p.pannaSteps("close", models.SessionClose, result.CloseResult)
	}

	fields := logrus.Fields{
		"game_id":        result.GameID,
		"game_result_id": result.ID,
		"result_date":    result.ResultDate,
		"open_result":    result.OpenResult,
		"close_result":   result.CloseResult,
		"winning_number": result.WinningNumber,
		"linked":         p.report.Linked,
		"steps":          len(p.report.Steps),
	}
	for _, st := range p.report.Steps {
		if st.Error != "" {
			s.log.WithFields(logrus.Fields{
				"game_result_id": result.ID,
				"step":           st.Step,
				"bid_type":       st.BidType,
				"error":          st.Error,
			}).Error("settlement step failed")
		}
	}
	if failed := p.report.Failed(); failed > 0 {
		s.log.WithFields(fields).WithField("failed", failed).Warn("settlement finished with errors")
	} else {
		s.log.WithFields(fields).Info("settlement finished")
	}
	return p.report
}

type pass struct {
	db     *gorm.DB
	result *models.GameResult
	now    time.Time
	report SettlementReport
}

// link attaches bids booked before the result row existed.
func (p *pass) link() {
	res := p.db.Model(&models.Bid{}).
		Where("game_id = ? AND bid_date = ? AND game_result_id IS NULL", p.result.GameID, p.result.ResultDate).
		Update("game_result_id", p.result.ID)
	if res.Error != nil {
		p.report.Steps = append(p.report.Steps, StepOutcome{Step: "link_bids", Error: res.Error.Error()})
		return
	}
	p.report.Linked = res.RowsAffected
}

func (p *pass) pannaSteps(prefix string, session models.Session, value string) {
	threeDigit := func(q *gorm.DB) *gorm.DB { return q.Where("LENGTH(bid_number) = 3") }
	point := func(q *gorm.DB) *gorm.DB { return q.Where("LENGTH(bid_number) = 1") }

	category := panna.Classify(value)
	for _, t := range []models.BidType{models.SinglePanna, models.DoublePanna, models.TriplePanna} {
		winner := ""
		if t.Category() == category {
			winner = value
		}
		p.exact(prefix+"_panna_exact", t, session, winner, threeDigit)
	}

	digit := panna.Reduce(value)
	for _, t := range []models.BidType{models.SinglePanna, models.DoublePanna, models.TriplePanna} {
		winner := ""
		if panna.Contains(t.Category(), digit, value) {
			winner = strconv.Itoa(digit)
		}
		p.exact(prefix+"_"+t.Code()+"_point", t, session, winner, point)
	}
}

// exact settles one (bid type, session) batch: bid_number == winner wins,
// everything else loses. An empty winner means nobody in the batch wins.
func (p *pass) exact(step string, t models.BidType, session models.Session, winner string, narrow func(*gorm.DB) *gorm.DB) {
	out := StepOutcome{Step: step, BidType: t.Code(), Session: session, Winner: winner}

	batch := func() *gorm.DB {
		q := p.scope(t, session)
		if narrow != nil {
			q = narrow(q)
		}
		return q
	}

	if winner != "" {
		res := p.markWon(batch().Where("bid_number = ?", winner))
		if res.Error != nil {
			out.Error = res.Error.Error()
			p.report.Steps = append(p.report.Steps, out)
			return
		}
		out.Won = res.RowsAffected
	}

	res := p.markLost(batch().Where("bid_number <> ?", winner))
	if res.Error != nil {
		out.Error = res.Error.Error()
	} else {
		out.Lost = res.RowsAffected
	}
	p.report.Steps = append(p.report.Steps, out)
}

// jugar loads the open jugar bids once and resolves them in memory.
func (p *pass) jugar(winning string) {
	out := StepOutcome{Step: "open_jugar", BidType: models.Jugar.Code(), Session: models.SessionOpen, Winner: winning}

	var rows []struct {
		ID        uint
		BidNumber string
	}
	if err := p.scope(models.Jugar, models.SessionOpen).Select("id", "bid_number").Find(&rows).Error; err != nil {
		out.Error = err.Error()
		p.report.Steps = append(p.report.Steps, out)
		return
	}

	var won, lost []uint
	for _, r := range rows {
		if panna.MatchJugar(r.BidNumber, winning) {
			won = append(won, r.ID)
		} else {
			lost = append(lost, r.ID)
		}
	}

	if len(won) > 0 {
		res := p.markWon(p.scope(models.Jugar, models.SessionOpen).Where("id IN ?", won))
		if res.Error != nil {
			out.Error = res.Error.Error()
			p.report.Steps = append(p.report.Steps, out)
			return
		}
		out.Won = res.RowsAffected
	}
	if len(lost) > 0 {
		res := p.markLost(p.scope(models.Jugar, models.SessionOpen).Where("id IN ?", lost))
		if res.Error != nil {
			out.Error = res.Error.Error()
		} else {
			out.Lost = res.RowsAffected
		}
	}
	p.report.Steps = append(p.report.Steps, out)
}

func (p *pass) scope(t models.BidType, session models.Session) *gorm.DB {
	return p.db.Model(&models.Bid{}).Where(
		"game_id = ? AND game_result_id = ? AND bid_type = ? AND session_type = ? AND status IN ?",
		p.result.GameID, p.result.ID, t, session, models.SettleableStatuses,
	)
}

// markWon only touches rows not already won so a repeated pass is a no-op.
func (p *pass) markWon(q *gorm.DB) *gorm.DB {
	return q.Where("status <> ?", models.BidWon).Updates(map[string]any{
		"status":             models.BidWon,
		"is_winner":          true,
		"winning_amount":     gorm.Expr("amount * rate"),
		"result_declared_at": p.now,
	})
}

func (p *pass) markLost(q *gorm.DB) *gorm.DB {
	return q.Where("status <> ?", models.BidLost).Updates(map[string]any{
		"status":             models.BidLost,
		"is_winner":          false,
		"winning_amount":     gorm.Expr("NULL"),
		"result_declared_at": p.now,
	})
}

// ResultHistory lists the results of a game newest first, optionally for one
// date only.
func (s *ResultService) ResultHistory(ctx context.Context, gameID uint, date string, limit int) ([]models.GameResult, error) {
	if date != "" && !models.ValidDate(date) {
		return nil, invalid("date", "must be a YYYY-MM-DD date")
	}
	if limit <= 0 || limit > 365 {
		limit = 30
	}

	q := s.db.WithContext(ctx).Where("game_id = ?", gameID)
	if date != "" {
		q = q.Where("result_date = ?", date)
	}

	var results []models.GameResult
	if err := q.Order("result_date DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, persist("list game results", err)
	}
	return results, nil
}
