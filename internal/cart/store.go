package cart

import "context"

// スナップショット永続化の約束。
// Saveは必ずシリアライズ済みの全量を書く（差分書きはしない）。
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, c Cart) error
	Load(ctx context.Context, sessionID string) (Cart, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// セッション1つ分のカートと永続化を束ねる。
// 所有者はそのセッションだけなのでロックは持たない。
// 各ミューテーションは「保存に成功してからメモリを差し替える」。
type Store struct {
	sessionID string
	snapshots SnapshotStore
	current   Cart
}

// 保存済みスナップショットがあれば復元して開く。
// 版が合わないスナップショットは捨てて空から始める。
func OpenStore(ctx context.Context, snapshots SnapshotStore, sessionID string) (*Store, error) {
	c, found, err := snapshots.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found || c.SchemaVersion != SchemaVersion {
		c = New()
	}
	return &Store{sessionID: sessionID, snapshots: snapshots, current: c}, nil
}

// 追加（上限クランプあり）。戻り値のerrorが ErrStockExceeded のとき、
// カート自体は切り詰めた状態で更新済み。
func (s *Store) AddItem(ctx context.Context, in AddItemInput) (Cart, error) {
	next, signal := s.current.AddItem(in)
	if err := s.snapshots.Save(ctx, s.sessionID, next); err != nil {
		return s.current.Snapshot(), err
	}
	s.current = next
	return next.Snapshot(), signal
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) (Cart, error) {
	next := s.current.RemoveItem(productID)
	if err := s.snapshots.Save(ctx, s.sessionID, next); err != nil {
		return s.current.Snapshot(), err
	}
	s.current = next
	return next.Snapshot(), nil
}

func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int64) (Cart, error) {
	next, err := s.current.UpdateQuantity(productID, qty)
	if err != nil {
		//上限超えは保存もしない
		return s.current.Snapshot(), err
	}
	if saveErr := s.snapshots.Save(ctx, s.sessionID, next); saveErr != nil {
		return s.current.Snapshot(), saveErr
	}
	s.current = next
	return next.Snapshot(), nil
}

// 全クリア。チェックアウト完了時と明示操作で使う。
func (s *Store) Clear(ctx context.Context) error {
	next := s.current.Clear()
	if err := s.snapshots.Save(ctx, s.sessionID, next); err != nil {
		return err
	}
	s.current = next
	return nil
}

func (s *Store) Snapshot() Cart {
	return s.current.Snapshot()
}
