package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saudagar/cache"
	"saudagar/models"
	"saudagar/panna"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BidService struct {
	db       *gorm.DB
	cache    cache.Cache
	log      *logrus.Logger
	loc      *time.Location
	cacheTTL time.Duration
}

func NewBidService(db *gorm.DB, c cache.Cache, log *logrus.Logger, loc *time.Location, cacheTTL time.Duration) *BidService {
	if c == nil {
		c = cache.NewMemory()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BidService{db: db, cache: c, log: log, loc: loc, cacheTTL: cacheTTL}
}

type ReceiptInput struct {
	ID          string          `json:"receipt_id" validate:"omitempty,max=36"`
	AgentID     uint            `json:"agent_id" validate:"required"`
	Session     string          `json:"session_type" validate:"required"`
	ReceiptDate string          `json:"receipt_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalBids   int             `json:"total_bids" validate:"gte=0"`
}

type BidInput struct {
	UserID       uint            `json:"user_id" validate:"required"`
	GameID       uint            `json:"game_id" validate:"required"`
	GameResultID *uint           `json:"game_result_id"`
	BidType      models.BidType  `json:"bid_type" validate:"required"`
	BidNumber    string          `json:"bid_number" validate:"required,max=32"`
	Amount       decimal.Decimal `json:"amount"`
	Session      string          `json:"session_type" validate:"required"`
	BidDate      string          `json:"bid_date" validate:"omitempty,datetime=2006-01-02"`
}

type Placement struct {
	Receipt models.Receipt `json:"receipt"`
	Bids    []models.Bid   `json:"bids"`
}

// PlaceBids stores the receipt and all of its bids in one transaction. Each
// bid copies the active rate of its (game, bid type); a missing rate rolls
// back the whole batch.
func (s *BidService) PlaceBids(ctx context.Context, in ReceiptInput, bids []BidInput) (*Placement, error) {
	receiptSession, err := s.checkPlacement(&in, bids)
	if err != nil {
		return nil, err
	}

	receiptDate := in.ReceiptDate
	if receiptDate == "" {
		receiptDate = models.Today(s.loc)
	}
	receiptID := in.ID
	if receiptID == "" {
		receiptID = uuid.NewString()
	}

	out := &Placement{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lastSeq int
		if err := tx.Model(&models.Receipt{}).
			Where("agent_id = ? AND receipt_date = ?", in.AgentID, receiptDate).
			Select("COALESCE(MAX(seq_no), 0)").
			Scan(&lastSeq).Error; err != nil {
			return persist("next receipt sequence", err)
		}

		receipt := models.Receipt{
			ID:          receiptID,
			SeqNo:       lastSeq + 1,
			AgentID:     in.AgentID,
			ReceiptDate: receiptDate,
			Session:     receiptSession,
			TotalAmount: in.TotalAmount,
			TotalBids:   in.TotalBids,
		}
		if in.ID != "" {
			var taken int64
			if err := tx.Model(&models.Receipt{}).Where("id = ?", receiptID).Count(&taken).Error; err != nil {
				return persist("check receipt id", err)
			}
			if taken > 0 {
				return invalid("receipt_id", "receipt %s already exists", receiptID)
			}
		}
		if err := tx.Create(&receipt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return invalid("receipt_id", "receipt %s conflicts with an existing receipt, retry", receiptID)
			}
			return persist("insert receipt", err)
		}

		games, err := activeGames(tx, bids)
		if err != nil {
			return err
		}

		rows := make([]models.Bid, 0, len(bids))
		rates := map[rateKey]models.BidRate{}
		for i, b := range bids {
			game, ok := games[b.GameID]
			if !ok {
				return notFound("game", b.GameID)
			}

			key := rateKey{gameID: b.GameID, bidType: b.BidType}
			rate, ok := rates[key]
			if !ok {
				err := tx.Where("game_id = ? AND bid_type_id = ? AND is_active = ?", b.GameID, b.BidType, true).
					First(&rate).Error
				if err != nil {
					return lookup("bid rate", fmt.Sprintf("game=%d type=%s", b.GameID, b.BidType), err)
				}
				rates[key] = rate
			}

			if err := checkAmount(i, b.Amount, game, rate); err != nil {
				return err
			}

			session, _ := models.ParseSession(b.Session)
			bidDate := b.BidDate
			if bidDate == "" {
				bidDate = receiptDate
			}

			rows = append(rows, models.Bid{
				UserID:       b.UserID,
				GameID:       b.GameID,
				GameResultID: b.GameResultID,
				BidType:      b.BidType,
				Session:      session,
				BidNumber:    b.BidNumber,
				Amount:       b.Amount,
				Rate:         rate.RatePerUnit,
				TotalPayout:  b.Amount.Mul(rate.RatePerUnit),
				Status:       models.BidSubmitted,
				ReceiptID:    receipt.ID,
				BidDate:      bidDate,
				CreatedBy:    in.AgentID,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return persist("insert bids", err)
		}

		out.Receipt = receipt
		out.Bids = rows
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"agent_id":   in.AgentID,
			"receipt_id": receiptID,
			"bids":       len(bids),
		}).WithError(err).Warn("bid placement rolled back")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"agent_id":   in.AgentID,
		"receipt_id": out.Receipt.ID,
		"seq_no":     out.Receipt.SeqNo,
		"bids":       len(out.Bids),
	}).Info("bids placed")
	return out, nil
}

type rateKey struct {
	gameID  uint
	bidType models.BidType
}

func (s *BidService) checkPlacement(in *ReceiptInput, bids []BidInput) (models.Session, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := Validate(in); err != nil {
		return "", err
	}
	session, ok := models.ParseSession(in.Session)
	if !ok {
		return "", invalid("session_type", "must be open or close")
	}
	if len(bids) == 0 {
		return "", invalid("bids", "at least one bid is required")
	}

	for i := range bids {
		b := &bids[i]
		b.BidNumber = strings.TrimSpace(b.BidNumber)
		if err := Validate(b); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("bids[%d].%s", i, ve.Field)
			}
			return "", err
		}
		bidSession, ok := models.ParseSession(b.Session)
		if !ok {
			return "", invalid(fmt.Sprintf("bids[%d].session_type", i), "must be open or close")
		}
		if !b.BidType.Valid() {
			return "", invalid(fmt.Sprintf("bids[%d].bid_type", i), "unknown bid type %d", uint(b.BidType))
		}
		if b.BidType.OpenOnly() && bidSession != models.SessionOpen {
			return "", invalid(fmt.Sprintf("bids[%d].session_type", i), "%s bids are only taken for the open session", b.BidType)
		}
		if !b.Amount.IsPositive() {
			return "", invalid(fmt.Sprintf("bids[%d].amount", i), "must be greater than zero")
		}
		if err := CheckBidNumber(b.BidType, b.BidNumber); err != nil {
			return "", invalid(fmt.Sprintf("bids[%d].bid_number", i), "%s", err.Error())
		}
	}
	return session, nil
}

// CheckBidNumber validates the stored form of a bid number for its type.
// Panna types accept either the 3-digit combination or a 1-digit point.
func CheckBidNumber(t models.BidType, number string) error {
	switch t {
	case models.SingleDigit:
		if len(number) != 1 || !panna.IsDigits(number) {
			return errors.New("single digit bid must be one digit")
		}
	case models.JodiDigit:
		if len(number) != 2 || !panna.IsDigits(number) {
			return errors.New("jodi bid must be two digits")
		}
	case models.SinglePanna, models.TriplePanna:
		if len(number) == 1 && panna.IsDigits(number) {
			return nil
		}
		if panna.Classify(number) != t.Category() {
			return fmt.Errorf("%s bid must be a %s combination or a point digit", t, t.Category())
		}
	case models.DoublePanna:
		if len(number) == 1 && panna.IsDigits(number) {
			return nil
		}
		if !panna.IsStrictDoublePanna(number) {
			return errors.New("double panna must be 3 digits with exactly one digit repeated twice")
		}
	case models.Jugar:
		if _, err := panna.ParseJugar(number); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown bid type %d", uint(t))
	}
	return nil
}

// checkAmount applies the non-zero min/max of the game and of the rate. The
// tighter bound wins.
func checkAmount(i int, amount decimal.Decimal, game models.Game, rate models.BidRate) error {
	field := fmt.Sprintf("bids[%d].amount", i)
	for _, lo := range []decimal.Decimal{game.MinBetAmount, rate.MinAmount} {
		if lo.IsPositive() && amount.LessThan(lo) {
			return invalid(field, "must be at least %s", lo.StringFixed(2))
		}
	}
	for _, hi := range []decimal.Decimal{game.MaxBetAmount, rate.MaxAmount} {
		if hi.IsPositive() && amount.GreaterThan(hi) {
			return invalid(field, "must be at most %s", hi.StringFixed(2))
		}
	}
	return nil
}

func activeGames(tx *gorm.DB, bids []BidInput) (map[uint]models.Game, error) {
	ids := make([]uint, 0, len(bids))
	seen := map[uint]bool{}
	for _, b := range bids {
		if !seen[b.GameID] {
			seen[b.GameID] = true
			ids = append(ids, b.GameID)
		}
	}

	var games []models.Game
	if err := tx.Where("id IN ? AND is_active = ?", ids, true).Find(&games).Error; err != nil {
		return nil, persist("load games", err)
	}

	out := make(map[uint]models.Game, len(games))
	for _, g := range games {
		out[g.ID] = g
	}
	return out, nil
}

func (s *BidService) ListBidTypes(ctx context.Context) ([]models.BidTypeRecord, error) {
	var types []models.BidTypeRecord
	if s.fromCache(ctx, cache.KeyBidTypes, &types) {
		return types, nil
	}

	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&types).Error; err != nil {
		return nil, persist("list bid types", err)
	}
	s.toCache(ctx, cache.KeyBidTypes, types)
	return types, nil
}

func (s *BidService) ListBidRates(ctx context.Context, gameID uint) ([]models.BidRate, error) {
	key := fmt.Sprintf(cache.KeyBidRates, gameID)

	var rates []models.BidRate
	if s.fromCache(ctx, key, &rates) {
		return rates, nil
	}

	if err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("bid_type_id").Find(&rates).Error; err != nil {
		return nil, persist("list bid rates", err)
	}
	s.toCache(ctx, key, rates)
	return rates, nil
}

type RateUpdate struct {
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	MinAmount   decimal.Decimal `json:"min_bid_amount"`
	MaxAmount   decimal.Decimal `json:"max_bid_amount"`
	IsActive    *bool           `json:"is_active"`
}

// UpdateBidRate creates or replaces the rate of a bid type in a game. Bids
// already placed keep the rate they were booked at.
func (s *BidService) UpdateBidRate(ctx context.Context, gameID uint, bidType models.BidType, in RateUpdate) (*models.BidRate, error) {
	if !bidType.Valid() {
		return nil, invalid("bid_type", "unknown bid type %d", uint(bidType))
	}
	if !in.RatePerUnit.IsPositive() {
		return nil, invalid("rate_per_unit", "must be greater than zero")
	}
	if in.MinAmount.IsNegative() || in.MaxAmount.IsNegative() {
		return nil, invalid("min_bid_amount", "amount limits cannot be negative")
	}
	if in.MaxAmount.IsPositive() && in.MinAmount.GreaterThan(in.MaxAmount) {
		return nil, invalid("max_bid_amount", "must not be below min_bid_amount")
	}

	db := s.db.WithContext(ctx)

	var game models.Game
	if err := db.First(&game, gameID).Error; err != nil {
		return nil, lookup("game", gameID, err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	row := models.BidRate{
		GameID:      gameID,
		BidTypeID:   bidType,
		RatePerUnit: in.RatePerUnit,
		MinAmount:   in.MinAmount,
		MaxAmount:   in.MaxAmount,
		IsActive:    active,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "bid_type_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_per_unit", "min_bid_amount", "max_bid_amount", "is_active", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, persist("upsert bid rate", err)
	}

	var saved models.BidRate
	if err := db.Where("game_id = ? AND bid_type_id = ?", gameID, bidType).First(&saved).Error; err != nil {
		return nil, lookup("bid rate", fmt.Sprintf("game=%d type=%s", gameID, bidType), err)
	}

	if err := s.cache.Delete(ctx, fmt.Sprintf(cache.KeyBidRates, gameID)); err != nil {
		s.log.WithError(err).WithField("game_id", gameID).Warn("failed to invalidate bid rate cache")
	}

	s.log.WithFields(logrus.Fields{
		"game_id":  gameID,
		"bid_type": bidType.String(),
		"rate":     saved.RatePerUnit.String(),
		"active":   saved.IsActive,
	}).Info("bid rate updated")
	return &saved, nil
}

func (s *BidService) fromCache(ctx context.Context, key string, dst any) bool {
	err := s.cache.Get(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	return false
}

func (s *BidService) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
