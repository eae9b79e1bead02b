package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/toko-voucher/internal/db/gen"
	"github.com/noah-isme/toko-voucher/internal/events"
)

type stubStore struct {
	lastParams dbgen.InsertDomainEventParams
	err        error
}

func (s *stubStore) InsertDomainEvent(_ context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error) {
	s.lastParams = arg
	if s.err != nil {
		return dbgen.DomainEvent{}, s.err
	}
	return dbgen.DomainEvent{
		ID:          pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     arg.Payload,
		OccurredAt:  pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}, nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	event, err := bus.Emit(context.Background(), events.TopicVoucherClaimed, aggregate.String(), map[string]any{"code": "HEMAT10"})
	require.NoError(t, err)
	require.Equal(t, events.TopicVoucherClaimed, store.lastParams.Topic)
	require.Equal(t, aggregate, uuid.UUID(store.lastParams.AggregateID.Bytes))
	require.JSONEq(t, `{"code":"HEMAT10"}`, string(store.lastParams.Payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)
	require.NotEmpty(t, event.ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "HEMAT10", decoded["code"])
}

func TestEmitRejectsInvalidInput(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), " ", uuid.NewString(), nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicVoucherUsed, "not-a-uuid", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicVoucherUsed, uuid.NewString(), "{broken")
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	store := &stubStore{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{&captureNotifier{err: errors.New("boom")}}}
	event, err := bus.Emit(context.Background(), events.TopicVoucherRedeemed, uuid.NewString(), nil)
	require.Error(t, err)
	require.Equal(t, events.TopicVoucherRedeemed, event.Topic)
	require.JSONEq(t, `{}`, string(store.lastParams.Payload))
}

func TestLogNotifierFiltersTopics(t *testing.T) {
	var buf bytes.Buffer
	n := events.NewLogNotifier(zerolog.New(&buf), events.TopicVoucherRedeemed)

	require.NoError(t, n.Notify(context.Background(), events.Event{Topic: events.TopicVoucherClaimed, Payload: json.RawMessage(`{}`)}))
	require.Zero(t, buf.Len())

	require.NoError(t, n.Notify(context.Background(), events.Event{Topic: events.TopicVoucherRedeemed, Payload: json.RawMessage(`{"discount":5}`)}))
	require.Contains(t, buf.String(), `"topic":"voucher.redeemed"`)
	require.Contains(t, buf.String(), `"discount":5`)
}
