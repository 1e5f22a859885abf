package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ファイル1枚にJSONで全量を書くSnapshotStore。
// 一時ファイルに書いてからrenameするので、途中でクラッシュしても
// 中途半端な状態は残らない。
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(sessionID string) string {
	return filepath.Join(f.dir, "cart-storage-"+sessionID+".json")
}

func (f *FileStore) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, "cart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, f.path(sessionID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cart file: %w", err)
	}
	return nil
}

func (f *FileStore) Load(ctx context.Context, sessionID string) (Cart, bool, error) {
	data, err := os.ReadFile(f.path(sessionID))
	if os.IsNotExist(err) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, fmt.Errorf("read cart file: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, false, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, true, nil
}

func (f *FileStore) Delete(ctx context.Context, sessionID string) error {
	err := os.Remove(f.path(sessionID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
