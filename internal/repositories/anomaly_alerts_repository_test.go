package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/storage/storagetest"
)

func TestAnomalyAlertsRepository_lifecycle(t *testing.T) {
	strg := storagetest.New(t)
	rep := NewAnomalyAlertsRepository(strg, logging.NewFromZap(zaptest.NewLogger(t)))
	ctx := context.Background()

	alert := &models.AnomalyAlert{
		UUID:  uuid.NewSHA1(uuid.NameSpaceOID, []byte("high_value:1")).String(),
		Kind:  models.AnomalyKindHighValue,
		State: models.AnomalyAlertNewState,
		Meta: &models.AnomalyAlertMeta{
			TransactionID: 1,
			Amount:        decimal.RequireFromString("25000.00"),
			CustomerID:    7,
			CustomerName:  "Ana",
			Threshold:     "10000",
			DetectedAt:    time.Now().UTC().Truncate(time.Second),
		},
	}

	saved, err := rep.Save(ctx, alert)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = rep.Save(ctx, alert)
	require.NoError(t, err)
	assert.False(t, saved, "same uuid is stored once")

	reserved, err := rep.ReserveNew(ctx)
	require.NoError(t, err)
	require.NotNil(t, reserved)
	assert.Equal(t, alert.UUID, reserved.UUID)
	assert.Equal(t, models.AnomalyAlertProcessingState, reserved.State)
	assert.Equal(t, "Ana", reserved.Meta.CustomerName)
	assert.True(t, alert.Meta.Amount.Equal(reserved.Meta.Amount))

	empty, err := rep.ReserveNew(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	require.NoError(t, rep.SetState(ctx, reserved.UUID, models.AnomalyAlertFinishedState))

	var state string
	require.NoError(t, strg.DB.QueryRow(ctx, `SELECT state FROM anomaly_alerts WHERE uuid = $1`, alert.UUID).Scan(&state))
	assert.Equal(t, models.AnomalyAlertFinishedState, state)
}
