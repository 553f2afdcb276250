package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typespeed/internal/model"
)

type mapKV struct {
	data   map[string]string
	getErr error
	setErr error
}

func newMapKV() *mapKV {
	return &mapKV{data: map[string]string{}}
}

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func result(wpm int) model.TrialResult {
	return model.TrialResult{
		ID:             "id",
		WPM:            wpm,
		Accuracy:       90,
		ElapsedSeconds: 30,
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHistory_LoadEmpty(t *testing.T) {
	h := New(newMapKV(), nil)
	assert.Empty(t, h.Load(context.Background()))
}

func TestHistory_AppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := New(newMapKV(), nil)

	require.NoError(t, h.Append(ctx, result(40)))
	require.NoError(t, h.Append(ctx, result(45)))

	got := h.Load(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, result(40), got[0])
	assert.Equal(t, 45, got[1].WPM)
}

func TestHistory_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	h := New(newMapKV(), nil)

	for i := 1; i <= 11; i++ {
		require.NoError(t, h.Append(ctx, result(i)))
	}

	got := h.Load(ctx)
	require.Len(t, got, Limit)
	for i, r := range got {
		assert.Equal(t, i+2, r.WPM)
	}
}

func TestHistory_MalformedPayloadIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	kv.data[Key] = "{not json"
	h := New(kv, nil)

	assert.Empty(t, h.Load(ctx))
	require.NoError(t, h.Append(ctx, result(50)))
	assert.Len(t, h.Load(ctx), 1)
}

func TestHistory_ReadErrorIsEmpty(t *testing.T) {
	kv := newMapKV()
	kv.getErr = errors.New("boom")
	assert.Empty(t, New(kv, nil).Load(context.Background()))
}

func TestHistory_SaveErrorIsReturned(t *testing.T) {
	kv := newMapKV()
	kv.setErr = errors.New("disk full")
	err := New(kv, nil).Append(context.Background(), result(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.setErr)
}

func TestHistory_LegacyRecords(t *testing.T) {
	kv := newMapKV()
	kv.data[Key] = `[{"wpm":31,"accuracy":88,"time":60,"date":"1/2/2026, 10:00:00 AM"}]`

	got := New(kv, nil).Load(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, 31, got[0].WPM)
	assert.Equal(t, 60, got[0].ElapsedSeconds)
	assert.True(t, got[0].Timestamp.IsZero())
}

func TestSeriesOf(t *testing.T) {
	series := SeriesOf([]model.TrialResult{result(40), {WPM: 50, Accuracy: 70}})

	assert.Equal(t, []int{40, 50}, series.WPM)
	assert.Equal(t, []int{90, 70}, series.Accuracy)
	assert.Equal(t, []string{"Test 1", "Test 2"}, series.Labels)
}

func TestHistory_ConcurrentAppendsKeepEveryResult(t *testing.T) {
	kv := newMapKV()
	h := New(kv, nil)

	var wg sync.WaitGroup
	for i := 0; i < Limit; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, h.Append(context.Background(), model.TrialResult{WPM: i}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Load(context.Background()), Limit)
}
