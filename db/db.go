package db

import (
	"encoding/json"
	"os"
	"sync"

	"ecgroup/config"
	"ecgroup/curve"
	"ecgroup/generator"
	"ecgroup/logs"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	"github.com/pkg/errors"
)

// Manager 用 BadgerDB 保存曲线分类结果，按曲线参数做 key
type Manager struct {
	Db     *badger.DB
	Logger logs.Logger
	mu     sync.RWMutex
	closed bool
}

func NewManager(cfg config.StoreConfig, logger logs.Logger) (*Manager, error) {
	if logger == nil {
		logger = logs.Nop()
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("db: empty path")
		}
		// badger v2 不会创建父目录
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create db dir")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.TableLoadingMode = options.FileIO
		opts.ValueLogLoadingMode = options.FileIO
	}
	opts = opts.WithLogger(nil)
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger db")
	}
	logger.Debug("opened store (in-memory=%v, path=%q)", cfg.InMemory, cfg.Path)
	return &Manager{Db: db, Logger: logger}, nil
}

// record 落盘的值；重复存一份 Params，用来识别哈希碰撞
type record struct {
	Params         curve.Params              `json:"params"`
	Classification *generator.Classification `json:"classification"`
}

func (m *Manager) check() error {
	if m.closed {
		return errors.New("db: manager is closed")
	}
	return nil
}

// SaveClassification 写入（覆盖）c
func (m *Manager) SaveClassification(c *generator.Classification) error {
	if c == nil {
		return errors.New("SaveClassification: nil classification")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return err
	}

	data, err := json.Marshal(record{Params: c.Params, Classification: c})
	if err != nil {
		return errors.Wrap(err, "encode classification")
	}
	key := KeyClassification(c.Params)
	err = m.Db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	m.Logger.Debug("saved %s (%d points)", key, c.GroupOrder)
	return nil
}

// GetClassification 读取 p 的分类；没有时 ok 为 false
func (m *Manager) GetClassification(p curve.Params) (c *generator.Classification, ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, false, err
	}

	key := KeyClassification(p)
	var data []byte
	err = m.Db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s", key)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, errors.Wrapf(err, "decode %s", key)
	}
	if rec.Params != p {
		m.Logger.Warn("key %s holds %s, not %s", key, rec.Params, p)
		return nil, false, nil
	}
	return rec.Classification, true, nil
}

func (m *Manager) DeleteClassification(p curve.Params) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return err
	}
	return m.Db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(KeyClassification(p)))
	})
}

// ListParams 遍历所有已存的曲线参数
func (m *Manager) ListParams() ([]curve.Params, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	prefix := []byte(KeyClassificationPrefix())
	var out []curve.Params
	err := m.Db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec struct {
				Params curve.Params `json:"params"`
			}
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			out = append(out, rec.Params)
		}
		return nil
	})
	return out, err
}

// Close 可重复调用
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.Db.Close()
}
