package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"threadmerge/internal/metrics"
	"threadmerge/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() ThreadMerged {
	thread := &models.Thread{ID: 1, Posts: []*models.Post{{ID: 1}, {ID: 20}, {ID: 21}}}
	return NewThreadMerged(
		&models.User{Nickname: "mod"},
		[]*models.Post{{ID: 20}, {ID: 21}},
		thread,
		[]*models.Thread{{ID: 2}},
	)
}

func TestDispatcherDeliversInOrderAndCollectsErrors(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	d := NewDispatcher(ListenerFunc(func(context.Context, ThreadMerged) error {
		calls = append(calls, "first")
		return boom
	}))
	d.Subscribe(ListenerFunc(func(context.Context, ThreadMerged) error {
		calls = append(calls, "second")
		return nil
	}))

	err := d.DispatchThreadMerged(context.Background(), sampleEvent())

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.ErrorIs(t, err, boom)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	assert.NoError(t, NewDispatcher().DispatchThreadMerged(context.Background(), sampleEvent()))
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	l := LogListener{Log: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, l.HandleThreadMerged(context.Background(), sampleEvent()))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "threads merged", line["msg"])
	assert.Equal(t, "mod", line["actor"])
	assert.EqualValues(t, 2, line["merged_posts"])
}

func TestMetricsListener(t *testing.T) {
	posts := testutil.ToFloat64(metrics.MergedPostsTotal)
	threads := testutil.ToFloat64(metrics.DeletedThreadsTotal)

	require.NoError(t, MetricsListener{}.HandleThreadMerged(context.Background(), sampleEvent()))

	assert.Equal(t, posts+2, testutil.ToFloat64(metrics.MergedPostsTotal))
	assert.Equal(t, threads+1, testutil.ToFloat64(metrics.DeletedThreadsTotal))
}

type recordingStorage struct {
	saved []models.MergeEvent
	err   error
}

func (s *recordingStorage) SaveMergeEvent(_ context.Context, event models.MergeEvent) error {
	s.saved = append(s.saved, event)
	return s.err
}

func TestStoreListener(t *testing.T) {
	storage := &recordingStorage{}
	event := sampleEvent()

	require.NoError(t, StoreListener{Storage: storage}.HandleThreadMerged(context.Background(), event))

	require.Len(t, storage.saved, 1)
	saved := storage.saved[0]
	assert.Equal(t, event.ID.String(), saved.ID)
	assert.Equal(t, "mod", saved.Actor)
	assert.Equal(t, int64(1), saved.DestinationID)
	assert.JSONEq(t, `{"posts":[20,21],"deletedThreads":[2],"postCount":3}`, saved.Payload)
}

func TestStoreListenerPropagatesError(t *testing.T) {
	storage := &recordingStorage{err: errors.New("db down")}
	err := StoreListener{Storage: storage}.HandleThreadMerged(context.Background(), sampleEvent())
	assert.Error(t, err)
}
