package inventory_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/memstore"
)

func newService(t *testing.T) *inventory.Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return inventory.NewService(memstore.New(), log)
}

func TestAddDosesCreatesAndTopsUp(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.AddDoses(ctx, "Moderna", 10))

	doses, err := svc.GetDoses(ctx, "Moderna")
	require.NoError(t, err)
	assert.Equal(t, 10, doses)

	require.NoError(t, svc.AddDoses(ctx, "Moderna", 5))

	doses, err = svc.GetDoses(ctx, "Moderna")
	require.NoError(t, err)
	assert.Equal(t, 15, doses)

	require.NoError(t, svc.Decrement(ctx, "Moderna", 3))

	doses, err = svc.GetDoses(ctx, "Moderna")
	require.NoError(t, err)
	assert.Equal(t, 12, doses)
}

func TestAddDosesNegativeRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := svc.AddDoses(ctx, "Moderna", -1)
	assert.ErrorIs(t, err, inventory.ErrInvalidAmount)

	_, err = svc.GetDoses(ctx, "Moderna")
	assert.ErrorIs(t, err, inventory.ErrUnknownVaccine)
}

func TestGetDosesUnknownVaccine(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.GetDoses(ctx, "Nope")
	assert.ErrorIs(t, err, inventory.ErrUnknownVaccine)
}

func TestDecrementInsufficientLeavesCountUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.AddDoses(ctx, "Pfizer", 2))

	err := svc.Decrement(ctx, "Pfizer", 3)
	assert.ErrorIs(t, err, inventory.ErrInsufficientDoses)

	doses, err := svc.GetDoses(ctx, "Pfizer")
	require.NoError(t, err)
	assert.Equal(t, 2, doses)
}

func TestDecrementUnknownVaccine(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := svc.Decrement(ctx, "Nope", 1)
	assert.ErrorIs(t, err, inventory.ErrUnknownVaccine)
}

func TestDecrementZeroRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.AddDoses(ctx, "Pfizer", 2))
	assert.ErrorIs(t, svc.Decrement(ctx, "Pfizer", 0), inventory.ErrInvalidAmount)
}

func TestConcurrentDecrementsSerialize(t *testing.T) {
	// N concurrent successful decrements of 1 reduce the count by exactly N,
	// and failures never drive the count negative.
	ctx := context.Background()
	svc := newService(t)

	const doses = 10
	const attempts = 25
	require.NoError(t, svc.AddDoses(ctx, "Moderna", doses))

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Decrement(ctx, "Moderna", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, inventory.ErrInsufficientDoses)
		}
	}

	assert.Equal(t, doses, succeeded)

	remaining, err := svc.GetDoses(ctx, "Moderna")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestListInStockOrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.AddDoses(ctx, "Pfizer", 4))
	require.NoError(t, svc.AddDoses(ctx, "Moderna", 2))
	require.NoError(t, svc.AddDoses(ctx, "Janssen", 1))
	require.NoError(t, svc.Decrement(ctx, "Janssen", 1))

	stock, err := svc.ListInStock(ctx)
	require.NoError(t, err)
	require.Len(t, stock, 2)
	assert.Equal(t, "Moderna", stock[0].Name)
	assert.Equal(t, "Pfizer", stock[1].Name)
}
