package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 合計は常に明細から導出した値と一致していること
func assertTotalsConsistent(t *testing.T, c Cart) {
	t.Helper()
	var subtotal, count int64
	for _, it := range c.Items {
		subtotal += it.UnitPrice * it.Quantity
		count += it.Quantity
	}
	assert.Equal(t, subtotal, c.Subtotal)
	assert.Equal(t, count, c.ItemCount)
}

func TestAddItem_EmptyCart(t *testing.T) {
	c := New()

	c, err := c.AddItem(AddItemInput{
		ProductID:    1,
		Name:         "p1",
		UnitPrice:    1000,
		Quantity:     1,
		StockCeiling: 5,
	})
	assert.NoError(t, err)

	assert.Equal(t, 1, len(c.Items))
	assert.Equal(t, int64(1), c.Items[0].Quantity)
	assert.Equal(t, int64(1000), c.Subtotal)
	assert.Equal(t, int64(1), c.ItemCount)
	assertTotalsConsistent(t, c)
}

func TestAddItem_DefaultQuantityIsOne(t *testing.T) {
	c := New()

	c, err := c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 500, Quantity: 0, StockCeiling: 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), c.Items[0].Quantity)
	assertTotalsConsistent(t, c)
}

func TestAddItem_MergeSameProduct(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})

	c, err := c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 2, StockCeiling: 5})
	assert.NoError(t, err)

	assert.Equal(t, 1, len(c.Items))
	assert.Equal(t, int64(3), c.Items[0].Quantity)
	assertTotalsConsistent(t, c)
}

// 上限を超える加算は入るだけ入れてErrStockExceededを返す
func TestAddItem_MergeCapsAtCeiling(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})

	c, err := c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 10, StockCeiling: 5})
	assert.ErrorIs(t, err, ErrStockExceeded)

	assert.Equal(t, int64(5), c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.Subtotal)
	assertTotalsConsistent(t, c)
}

func TestAddItem_NewItemCappedAtCeiling(t *testing.T) {
	c := New()

	c, err := c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 10, StockCeiling: 3})
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, int64(3), c.Items[0].Quantity)
	assertTotalsConsistent(t, c)
}

// 上限0の商品は1個も入らない。カートは変化しない
func TestAddItem_ZeroCeiling(t *testing.T) {
	c := New()

	next, err := c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 0})
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, 0, len(next.Items))
}

// 操作はイミュータブル。元の値は変わらない
func TestAddItem_DoesNotMutateReceiver(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})

	_, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 2, StockCeiling: 5})
	assert.Equal(t, int64(1), c.Items[0].Quantity)
	assert.Equal(t, int64(1000), c.Subtotal)
}

func TestRemoveItem(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 3, StockCeiling: 10})
	c, _ = c.AddItem(AddItemInput{ProductID: 2, UnitPrice: 500, Quantity: 2, StockCeiling: 10})

	c = c.RemoveItem(1)

	assert.Equal(t, 1, len(c.Items))
	assert.Equal(t, int64(2), c.Items[0].ProductID)
	assert.Equal(t, int64(1000), c.Subtotal)
	assert.Equal(t, int64(2), c.ItemCount)
	assertTotalsConsistent(t, c)
}

// 無い商品の削除は何も起きない
func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})

	c = c.RemoveItem(99)
	assert.Equal(t, 1, len(c.Items))
	assertTotalsConsistent(t, c)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 3, StockCeiling: 10})

	c, err := c.UpdateQuantity(1, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(c.Items))
	assert.Equal(t, int64(0), c.Subtotal)
	assert.Equal(t, int64(0), c.ItemCount)
}

// 上限超えの数量変更は拒否。数量は変わらない
func TestUpdateQuantity_RejectsOverCeiling(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 3, StockCeiling: 5})

	next, err := c.UpdateQuantity(1, 6)
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, int64(3), next.Items[0].Quantity)
	assertTotalsConsistent(t, next)
}

func TestUpdateQuantity_SetsQuantity(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 3, StockCeiling: 5})

	c, err := c.UpdateQuantity(1, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.Subtotal)
	assertTotalsConsistent(t, c)
}

func TestUpdateQuantity_AbsentIsNoOp(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 1, StockCeiling: 5})

	next, err := c.UpdateQuantity(99, 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(next.Items))
	assert.Equal(t, int64(1), next.Items[0].Quantity)
}

func TestClear(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 3, StockCeiling: 10})

	c = c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Subtotal)
	assert.Equal(t, int64(0), c.ItemCount)
	assert.Equal(t, SchemaVersion, c.SchemaVersion)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{ProductID: 1, UnitPrice: 1000, Quantity: 2, StockCeiling: 5})

	snap := c.Snapshot()
	snap.Items[0].Quantity = 99

	assert.Equal(t, int64(2), c.Items[0].Quantity)
}

func TestCart_JSONRoundTrip(t *testing.T) {
	c := New()
	c, _ = c.AddItem(AddItemInput{
		ProductID:    7,
		Name:         "mug",
		ImageURL:     "https://example.com/mug.png",
		UnitPrice:    1200,
		Quantity:     2,
		StockCeiling: 8,
	})

	data, err := json.Marshal(c)
	assert.NoError(t, err)

	var restored Cart
	assert.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, c, restored)
	assert.Equal(t, SchemaVersion, restored.SchemaVersion)
	assertTotalsConsistent(t, restored)
}
