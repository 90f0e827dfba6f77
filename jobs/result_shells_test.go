package jobs

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"saudagar/database"
	"saudagar/models"
	"saudagar/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSchedulerCreatesTodaysShellOnStart(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	game := models.Game{Name: "Kalyan", IsActive: true}
	require.NoError(t, db.Create(&game).Error)

	results := services.NewResultService(db, log, nil, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartResultShellScheduler(ctx, results, time.Hour, log)

	today := models.Today(time.UTC)
	require.Eventually(t, func() bool {
		var n int64
		db.Model(&models.GameResult{}).Where("game_id = ? AND result_date = ?", game.ID, today).Count(&n)
		return n == 1
	}, 5*time.Second, 20*time.Millisecond)

	var shell models.GameResult
	require.NoError(t, db.Where("game_id = ? AND result_date = ?", game.ID, today).First(&shell).Error)
	require.Equal(t, models.ResultPending, shell.OpenStatus)
	require.Equal(t, models.ResultPending, shell.CloseStatus)
	require.Empty(t, shell.OpenResult)
}
