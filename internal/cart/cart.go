package cart

import "errors"

// 永続化フォーマットの版。互換のない変更をしたら上げる。
const SchemaVersion = 1

// 在庫上限に当たったことを知らせるシグナル。
// AddItemでは「入るだけ入れた」上でこれを返す（UI側は警告表示のみ）。
var ErrStockExceeded = errors.New("stock exceeded")

// カート明細。価格は追加時点のスナップショット（チェックアウトで再取得しない）。
// StockCeilingは追加時点の在庫で、あくまで目安（正は外部ストア側）。
type LineItem struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int64  `json:"quantity"`
	StockCeiling int64  `json:"stock_ceiling"`
}

// カート本体。イミュータブルな値として扱い、各操作は新しい値を返す。
// Subtotal/ItemCountはキャッシュで、操作のたびに必ず再計算する。
type Cart struct {
	SchemaVersion int        `json:"schema_version"`
	Items         []LineItem `json:"items"`
	Subtotal      int64      `json:"subtotal"`
	ItemCount     int64      `json:"item_count"`
}

func New() Cart {
	return Cart{SchemaVersion: SchemaVersion, Items: []LineItem{}}
}

type AddItemInput struct {
	ProductID    int64
	Name         string
	ImageURL     string
	UnitPrice    int64
	Quantity     int64 // 0以下なら1
	StockCeiling int64
}

// 追加。同一商品は数量加算、上限を超える分は黙って切り詰めて ErrStockExceeded を返す。
// （採用したクランプ方針。拒否方式ではない）
func (c Cart) AddItem(in AddItemInput) (Cart, error) {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	next := c.clone()

	for i, it := range next.Items {
		if it.ProductID != in.ProductID {
			continue
		}

		newQty := it.Quantity + qty
		capped := false
		if newQty > it.StockCeiling {
			newQty = it.StockCeiling
			capped = true
		}

		next.Items[i].Quantity = newQty
		next = next.recomputed()
		if capped {
			return next, ErrStockExceeded
		}
		return next, nil
	}

	//新規明細。上限0以下なら1個も入れられない
	if in.StockCeiling < 1 {
		return c.clone(), ErrStockExceeded
	}

	capped := false
	if qty > in.StockCeiling {
		qty = in.StockCeiling
		capped = true
	}

	next.Items = append(next.Items, LineItem{
		ProductID:    in.ProductID,
		Name:         in.Name,
		ImageURL:     in.ImageURL,
		UnitPrice:    in.UnitPrice,
		Quantity:     qty,
		StockCeiling: in.StockCeiling,
	})
	next = next.recomputed()
	if capped {
		return next, ErrStockExceeded
	}
	return next, nil
}

// 削除。無ければ何もしない（エラーにしない）。
func (c Cart) RemoveItem(productID int64) Cart {
	next := c.clone()
	items := next.Items[:0]
	for _, it := range next.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	next.Items = items
	return next.recomputed()
}

// 数量変更。1未満は削除と同じ。上限超えは変更せず ErrStockExceeded。
func (c Cart) UpdateQuantity(productID int64, qty int64) (Cart, error) {
	if qty < 1 {
		return c.RemoveItem(productID), nil
	}

	for i, it := range c.Items {
		if it.ProductID != productID {
			continue
		}
		if qty > it.StockCeiling {
			return c.clone(), ErrStockExceeded
		}
		next := c.clone()
		next.Items[i].Quantity = qty
		return next.recomputed(), nil
	}

	//対象なしは何もしない
	return c.clone(), nil
}

func (c Cart) Clear() Cart {
	return New()
}

// 合計を明細から計算し直す。
func (c Cart) recomputed() Cart {
	var subtotal, count int64
	for _, it := range c.Items {
		subtotal += it.UnitPrice * it.Quantity
		count += it.Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
	return c
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// 明細スライスまで複製した深いコピー。
func (c Cart) clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	if c.SchemaVersion == 0 {
		c.SchemaVersion = SchemaVersion
	}
	return c
}

// チェックアウトに渡す不変スナップショット。副作用なし。
func (c Cart) Snapshot() Cart {
	return c.clone()
}
