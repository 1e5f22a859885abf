package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Saveが失敗するSnapshotStore
type failingStore struct {
	inner    SnapshotStore
	failSave bool
}

func (f *failingStore) Save(ctx context.Context, sessionID string, c Cart) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.inner.Save(ctx, sessionID, c)
}

func (f *failingStore) Load(ctx context.Context, sessionID string) (Cart, bool, error) {
	return f.inner.Load(ctx, sessionID)
}

func (f *failingStore) Delete(ctx context.Context, sessionID string) error {
	return f.inner.Delete(ctx, sessionID)
}

func TestOpenStore_EmptyWhenNoSnapshot(t *testing.T) {
	ctx := context.Background()

	s, err := OpenStore(ctx, NewMemoryStore(), "sess-1")
	assert.NoError(t, err)
	assert.True(t, s.Snapshot().IsEmpty())
	assert.Equal(t, SchemaVersion, s.Snapshot().SchemaVersion)
}

func TestOpenStore_RestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	s1, _ := OpenStore(ctx, mem, "sess-1")
	_, err := s1.AddItem(ctx, AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 2, StockCeiling: 5})
	assert.NoError(t, err)

	//開き直しても中身が残っている
	s2, err := OpenStore(ctx, mem, "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), s2.Snapshot().ItemCount)
	assert.Equal(t, int64(2000), s2.Snapshot().Subtotal)
}

// 版の合わないスナップショットは捨てて空から始める
func TestOpenStore_ResetsOnSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	stale := Cart{
		SchemaVersion: SchemaVersion + 1,
		Items:         []LineItem{{ProductID: 1, UnitPrice: 100, Quantity: 1}},
	}
	assert.NoError(t, mem.Save(ctx, "sess-1", stale))

	s, err := OpenStore(ctx, mem, "sess-1")
	assert.NoError(t, err)
	assert.True(t, s.Snapshot().IsEmpty())
	assert.Equal(t, SchemaVersion, s.Snapshot().SchemaVersion)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	a, _ := OpenStore(ctx, mem, "sess-a")
	b, _ := OpenStore(ctx, mem, "sess-b")

	_, err := a.AddItem(ctx, AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})
	assert.NoError(t, err)

	assert.True(t, b.Snapshot().IsEmpty())
	b2, _ := OpenStore(ctx, mem, "sess-b")
	assert.True(t, b2.Snapshot().IsEmpty())
}

// 保存に失敗したらメモリ側も前の状態のまま
func TestStore_SaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{inner: NewMemoryStore()}

	s, _ := OpenStore(ctx, fs, "sess-1")
	_, err := s.AddItem(ctx, AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})
	assert.NoError(t, err)

	fs.failSave = true
	snap, err := s.AddItem(ctx, AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, int64(1), snap.ItemCount)
	assert.Equal(t, int64(1), s.Snapshot().ItemCount)

	//永続側も古いまま
	persisted, found, loadErr := fs.Load(ctx, "sess-1")
	assert.NoError(t, loadErr)
	assert.True(t, found)
	assert.Equal(t, int64(1), persisted.ItemCount)
}

func TestStore_ClearPersistsEmptyCart(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	s, _ := OpenStore(ctx, mem, "sess-1")
	_, err := s.AddItem(ctx, AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 2, StockCeiling: 5})
	assert.NoError(t, err)

	assert.NoError(t, s.Clear(ctx))
	assert.True(t, s.Snapshot().IsEmpty())

	persisted, found, err := mem.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.True(t, persisted.IsEmpty())
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	fs, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 3, Name: "pen", UnitPrice: 150, Quantity: 4, StockCeiling: 10})

	assert.NoError(t, fs.Save(ctx, "sess-1", c))

	restored, found, err := fs.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, c, restored)
}

func TestFileStore_MissReturnsNotFound(t *testing.T) {
	ctx := context.Background()

	fs, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	_, found, err := fs.Load(ctx, "nope")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()

	fs, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, fs.Save(ctx, "sess-1", New()))
	assert.NoError(t, fs.Delete(ctx, "sess-1"))
	assert.NoError(t, fs.Delete(ctx, "sess-1"))

	_, found, err := fs.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.False(t, found)
}
