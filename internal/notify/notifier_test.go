package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *recordingSink) Deliver(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

type failingSink struct{ err error }

func (s failingSink) Deliver(context.Context, Message) error { return s.err }

type panickingSink struct{}

func (panickingSink) Deliver(context.Context, Message) error { panic("boom") }

func TestDispatcher_FansOutAndSurvivesFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &recordingSink{}
	d := NewDispatcher(zap.New(core), failingSink{err: errors.New("offline")}, panickingSink{}, rec)

	assert.NotPanics(t, func() { d.Notify("Task moved", "Draft moved to In Progress") })
	d.Wait()

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "Task moved", rec.msgs[0].Title)
	assert.Equal(t, 1, logs.FilterMessage("notification not delivered").Len())
	assert.Equal(t, 1, logs.FilterMessage("notification sink panicked").Len())
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, NewLogSink(zap.New(core)).Deliver(context.Background(), Message{Title: "t", Message: "m"}))
	assert.Equal(t, 1, logs.FilterMessage("notification").Len())
}

func TestRedisSink_Publishes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "board")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sent := Message{Title: "Task approved", Message: "Ship it is done", SentAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, NewRedisSink(rdb, "board").Deliver(ctx, sent))

	select {
	case got := <-sub.Channel():
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(got.Payload), &msg))
		assert.Equal(t, sent, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}
