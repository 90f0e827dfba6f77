package services

import (
	"context"
	"strings"

	"saudagar/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	defaultMinBet = decimal.NewFromInt(10)
	defaultMaxBet = decimal.NewFromInt(1000)
)

type GameService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGameService(db *gorm.DB, log *logrus.Logger) *GameService {
	return &GameService{db: db, log: log}
}

type GameInput struct {
	Name         string          `json:"game_name" validate:"required,max=64"`
	Description  string          `json:"description" validate:"max=255"`
	OpenTime     string          `json:"open_time" validate:"required,datetime=15:04"`
	CloseTime    string          `json:"close_time" validate:"required,datetime=15:04"`
	MinBetAmount decimal.Decimal `json:"min_bet_amount"`
	MaxBetAmount decimal.Decimal `json:"max_bet_amount"`
	IsActive     *bool           `json:"is_active"`
	CreatedBy    uint            `json:"-"`
}

// AddGame registers a game. Bet limits default to 10 and 1000 when omitted.
func (s *GameService) AddGame(ctx context.Context, in GameInput) (*models.Game, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.OpenTime = strings.TrimSpace(in.OpenTime)
	in.CloseTime = strings.TrimSpace(in.CloseTime)
	if err := Validate(&in); err != nil {
		return nil, err
	}

	if in.MinBetAmount.IsZero() {
		in.MinBetAmount = defaultMinBet
	}
	if in.MaxBetAmount.IsZero() {
		in.MaxBetAmount = defaultMaxBet
	}
	if in.MinBetAmount.IsNegative() {
		return nil, invalid("min_bet_amount", "cannot be negative")
	}
	if in.MaxBetAmount.LessThan(in.MinBetAmount) {
		return nil, invalid("max_bet_amount", "must not be below min_bet_amount")
	}

	game := models.Game{
		Name:         in.Name,
		Description:  in.Description,
		OpenTime:     in.OpenTime,
		CloseTime:    in.CloseTime,
		IsActive:     true,
		MinBetAmount: in.MinBetAmount,
		MaxBetAmount: in.MaxBetAmount,
		CreatedBy:    in.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, persist("insert game", err)
	}
	// is_active has a column default, so false is written explicitly.
	if in.IsActive != nil && !*in.IsActive {
		if err := s.db.WithContext(ctx).Model(&game).Update("is_active", false).Error; err != nil {
			return nil, persist("deactivate game", err)
		}
		game.IsActive = false
	}

	s.log.WithFields(logrus.Fields{
		"game_id":    game.ID,
		"game_name":  game.Name,
		"open_time":  game.OpenTime,
		"close_time": game.CloseTime,
		"active":     game.IsActive,
	}).Info("game added")
	return &game, nil
}

// ListGames returns games newest first. Inactive games are left out unless
// all is set.
func (s *GameService) ListGames(ctx context.Context, all bool) ([]models.Game, error) {
	q := s.db.WithContext(ctx)
	if !all {
		q = q.Where("is_active = ?", true)
	}

	games := []models.Game{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&games).Error; err != nil {
		return nil, persist("list games", err)
	}
	return games, nil
}
