package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	h := newMongoHandler(col)

	log := slog.New(h).With("request_id", "abc123")
	log.Info("order created", "order_number", "ORD-1")
	log.Debug("skipped below info")
	h.Close()

	require.Len(t, col.docs, 1)
	doc := col.docs[0]
	assert.Equal(t, "order created", doc.Msg)
	assert.Equal(t, "abc123", doc.RequestID)
	assert.Equal(t, "ORD-1", doc.Attrs["order_number"])
	assert.WithinDuration(t, time.Now(), doc.Time, time.Minute)
}

func TestMultiHandlerFansOut(t *testing.T) {
	a, b := &fakeCollection{}, &fakeCollection{}
	ha, hb := newMongoHandler(a), newMongoHandler(b)

	slog.New(NewMultiHandler(ha, hb)).WithGroup("product").Warn("image cleanup failed", "id", 4)
	ha.Close()
	hb.Close()

	require.Len(t, a.docs, 1)
	require.Len(t, b.docs, 1)
	assert.EqualValues(t, 4, b.docs[0].Attrs["product.id"])
}
