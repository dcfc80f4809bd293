package journal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, logger.New(logger.Options{Output: io.Discard}))
	ctx := context.Background()

	saleID := uuid.New()
	actor := ActorRef{UserID: uuid.New(), Role: "seller"}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:  enums.SaleEventCreated,
			SaleID:     saleID,
			Actor:      actor,
			Data:       map[string]string{"total": "30"},
			OccurredAt: at,
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.SaleEventCreated, rows[0].EventType)
	assert.Equal(t, actor.UserID, rows[0].ActorUserID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.True(t, envelope.OccurredAt.Equal(at))
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, "seller", envelope.Actor.Role)
	assert.JSONEq(t, `{"total":"30"}`, string(envelope.Data))
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()
	saleID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{EventType: enums.SaleEventDeleted, SaleID: saleID, Data: struct{}{}}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	rows, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEmitValidates(t *testing.T) {
	svc := NewService(NewRepository(dbtest.Open(t)), nil)
	assert.Error(t, svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.SaleEventCreated}))
}

func TestDeleteOlderThan(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()
	saleID := uuid.New()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{now.AddDate(0, 0, -120), now.AddDate(0, 0, -10)} {
		require.NoError(t, svc.Emit(ctx, conn, DomainEvent{EventType: enums.SaleEventUpdated, SaleID: saleID, Data: struct{}{}, OccurredAt: at}))
	}

	removed, err := repo.DeleteOlderThan(ctx, nil, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	rows, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
