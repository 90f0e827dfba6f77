package services

import (
	"context"

	"saudagar/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateResultShells makes sure every active game has a pending result row
// for date and attaches that day's unlinked bids to it. Existing rows are
// left untouched.
func (s *ResultService) CreateResultShells(ctx context.Context, date string) (int64, error) {
	if date == "" {
		date = models.Today(s.loc)
	}
	if !models.ValidDate(date) {
		return 0, invalid("date", "must be a YYYY-MM-DD date")
	}

	db := s.db.WithContext(ctx)

	var games []models.Game
	if err := db.Where("is_active = ?", true).Order("id").Find(&games).Error; err != nil {
		return 0, persist("load active games", err)
	}
	if len(games) == 0 {
		return 0, nil
	}

	shells := make([]models.GameResult, 0, len(games))
	for _, g := range games {
		shells = append(shells, models.GameResult{
			GameID:      g.ID,
			ResultDate:  date,
			OpenStatus:  models.ResultPending,
			CloseStatus: models.ResultPending,
		})
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "result_date"}},
		DoNothing: true,
	}).Create(&shells)
	if res.Error != nil {
		return 0, persist("insert result shells", res.Error)
	}
	created := res.RowsAffected

	linked, err := s.linkShells(db, date)
	if err != nil {
		return created, err
	}

	s.log.WithFields(logrus.Fields{
		"date":    date,
		"games":   len(games),
		"created": created,
		"linked":  linked,
	}).Info("result shells ready")
	return created, nil
}

func (s *ResultService) linkShells(db *gorm.DB, date string) (int64, error) {
	var rows []models.GameResult
	if err := db.Select("id", "game_id").Where("result_date = ?", date).Find(&rows).Error; err != nil {
		return 0, persist("load result shells", err)
	}

	var linked int64
	for _, r := range rows {
		res := db.Model(&models.Bid{}).
			Where("game_id = ? AND bid_date = ? AND game_result_id IS NULL", r.GameID, date).
			Update("game_result_id", r.ID)
		if res.Error != nil {
			return linked, persist("link bids to result", res.Error)
		}
		linked += res.RowsAffected
	}
	return linked, nil
}
