package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type fakeAlerts struct {
	queue      []*models.AnomalyAlert
	reserveErr error
	states     map[string]string
}

func (f *fakeAlerts) ReserveNew(context.Context) (*models.AnomalyAlert, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	if len(f.queue) == 0 {
		return nil, nil
	}

	a := f.queue[0]
	f.queue = f.queue[1:]
	f.states[a.UUID] = models.AnomalyAlertProcessingState
	return a, nil
}

func (f *fakeAlerts) SetState(_ context.Context, uuid string, newState string) error {
	f.states[uuid] = newState
	return nil
}

type fakeWriter struct {
	err  error
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}

	w.msgs = append(w.msgs, msgs...)
	return nil
}

func newDaemon(t *testing.T, alerts *fakeAlerts, writer *fakeWriter) *Daemon {
	t.Helper()

	return &Daemon{
		lg:     logging.NewFromZap(zaptest.NewLogger(t)),
		cfg:    &anomaly_outbox.Config{},
		alerts: alerts,
		writer: writer,
	}
}

func alert() *models.AnomalyAlert {
	return &models.AnomalyAlert{
		UUID:      "1b4e28ba-2fa1-51d2-883f-0016d3cca427",
		Kind:      models.AnomalyKindHighValue,
		State:     models.AnomalyAlertNewState,
		CreatedAt: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		Meta: &models.AnomalyAlertMeta{
			TransactionID: 101,
			Amount:        decimal.RequireFromString("25000.00"),
			CustomerID:    7,
			CustomerName:  "Ana Souza",
			Threshold:     "10000",
		},
	}
}

func TestDaemon_ProcessAlert(t *testing.T) {
	a := alert()
	alerts := &fakeAlerts{queue: []*models.AnomalyAlert{a}, states: map[string]string{}}
	writer := &fakeWriter{}
	dmn := newDaemon(t, alerts, writer)

	require.NoError(t, dmn.processAlert(context.Background()))

	assert.Equal(t, models.AnomalyAlertFinishedState, alerts.states[a.UUID])
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, a.UUID, string(writer.msgs[0].Key))

	payload := &structpb.Struct{}
	require.NoError(t, proto.Unmarshal(writer.msgs[0].Value, payload))
	assert.Equal(t, models.AnomalyKindHighValue, payload.Fields["kind"].GetStringValue())

	msg := payload.Fields["message"].GetStructValue().GetFields()
	assert.Equal(t, 101.0, msg["transaction_id"].GetNumberValue())
	assert.Equal(t, "25000", msg["amount"].GetStringValue())
	assert.Equal(t, "Ana Souza", msg["customer_name"].GetStringValue())
}

func TestDaemon_ProcessAlertEmptyOutbox(t *testing.T) {
	writer := &fakeWriter{}
	dmn := newDaemon(t, &fakeAlerts{states: map[string]string{}}, writer)

	require.NoError(t, dmn.processAlert(context.Background()))
	assert.Empty(t, writer.msgs)
}

func TestDaemon_ProcessAlertWriteFailure(t *testing.T) {
	a := alert()
	alerts := &fakeAlerts{queue: []*models.AnomalyAlert{a}, states: map[string]string{}}
	dmn := newDaemon(t, alerts, &fakeWriter{err: errors.New("leader not available")})

	err := dmn.processAlert(context.Background())

	assert.ErrorContains(t, err, "publish alert")
	assert.Equal(t, models.AnomalyAlertFailedState, alerts.states[a.UUID])
}

func TestDaemon_ProcessAlertReserveFailure(t *testing.T) {
	dmn := newDaemon(t, &fakeAlerts{reserveErr: errors.New("timeout"), states: map[string]string{}}, &fakeWriter{})

	assert.ErrorContains(t, dmn.processAlert(context.Background()), "reserve alert")
}
