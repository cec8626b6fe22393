package keyspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kv-cache-api/internal/models"
	"kv-cache-api/internal/store"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("keyspace not found")
	ErrExists      = errors.New("keyspace already exists")
	ErrInvalidName = errors.New("keyspace name is required")
)

// Store is the concrete expiring store type every keyspace is backed by.
// Values are raw JSON so clients can cache arbitrary documents.
type Store = store.ExpiringStore[string, json.RawMessage]

// EvictFunc is notified for every entry removed by a keyspace's sweeper or
// limit policy (not by explicit delete or flush).
type EvictFunc func(keyspace, key string, value json.RawMessage)

// Manager owns the live expiring stores and keeps them in sync with the
// persisted keyspace definitions.
type Manager struct {
	mu      sync.RWMutex
	db      *gorm.DB
	stores  map[string]*Store
	onEvict EvictFunc
}

var managerInstance *Manager

// NewManager builds a manager over the given database and materializes a
// store for every persisted keyspace definition.
func NewManager(db *gorm.DB, onEvict EvictFunc) (*Manager, error) {
	m := &Manager{
		db:      db,
		stores:  make(map[string]*Store),
		onEvict: onEvict,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Init creates the process-wide manager used by the handlers.
func Init(db *gorm.DB, onEvict EvictFunc) (*Manager, error) {
	m, err := NewManager(db, onEvict)
	if err != nil {
		return nil, err
	}
	managerInstance = m
	return m, nil
}

// GetManager returns the process-wide manager. Init must have been called.
func GetManager() *Manager {
	return managerInstance
}

func (m *Manager) load() error {
	var defs []models.Keyspace
	if err := m.db.Find(&defs).Error; err != nil {
		return err
	}
	for _, def := range defs {
		st, err := m.open(def)
		if err != nil {
			return err
		}
		m.stores[def.Name] = st
	}
	return nil
}

func (m *Manager) open(def models.Keyspace) (*Store, error) {
	name := def.Name
	return store.New(store.Config[string, json.RawMessage]{
		Expire:        time.Duration(def.ExpireMs) * time.Millisecond,
		SweepInterval: time.Duration(def.SweepIntervalMs) * time.Millisecond,
		Limit:         def.Limit,
		OnEvict: func(key string, value json.RawMessage) {
			if m.onEvict != nil {
				m.onEvict(name, key, value)
			}
		},
	})
}

// Create persists a keyspace definition and opens its store. The store
// constructor validates the policy, so a bad definition is rejected before
// anything is written.
func (m *Manager) Create(def models.Keyspace) (models.Keyspace, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return def, ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[def.Name]; ok {
		return def, ErrExists
	}

	st, err := m.open(def)
	if err != nil {
		return def, err
	}

	// Generate keyspace ID (simple format: ks-{timestamp})
	def.ID = fmt.Sprintf("ks-%d", time.Now().UnixNano())
	if err := m.db.Create(&def).Error; err != nil {
		st.Close()
		return def, err
	}

	m.stores[def.Name] = st
	return def, nil
}

// Get returns the live store for a keyspace.
func (m *Manager) Get(name string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stores[name]
	return st, ok
}

// List returns all persisted keyspace definitions.
func (m *Manager) List() ([]models.Keyspace, error) {
	var defs []models.Keyspace
	if err := m.db.Order("name asc").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

// Definition returns the persisted definition of one keyspace.
func (m *Manager) Definition(name string) (models.Keyspace, error) {
	var def models.Keyspace
	err := m.db.Where("name = ?", name).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, ErrNotFound
	}
	return def, err
}

// Delete removes a keyspace definition and shuts down its store.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[name]
	if !ok {
		return ErrNotFound
	}

	if err := m.db.Unscoped().Where("name = ?", name).Delete(&models.Keyspace{}).Error; err != nil {
		return err
	}

	st.Clear()
	st.Close()
	delete(m.stores, name)
	return nil
}

// Configure updates a keyspace's expiration policy at runtime. Nil fields
// are left unchanged; the live store re-derives its sweeper from the new
// values.
func (m *Manager) Configure(name string, expireMs, sweepIntervalMs *int64) (models.Keyspace, error) {
	// Reject what the store constructor would reject, so a reload of the
	// persisted definition can never fail.
	if expireMs != nil && *expireMs < 0 {
		return models.Keyspace{}, store.ErrNegativeExpire
	}
	if sweepIntervalMs != nil && *sweepIntervalMs < 0 {
		return models.Keyspace{}, store.ErrNegativeSweepInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[name]
	if !ok {
		return models.Keyspace{}, ErrNotFound
	}

	var def models.Keyspace
	if err := m.db.Where("name = ?", name).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return def, ErrNotFound
		}
		return def, err
	}

	if expireMs != nil {
		def.ExpireMs = *expireMs
		st.SetExpire(time.Duration(*expireMs) * time.Millisecond)
	}
	if sweepIntervalMs != nil {
		def.SweepIntervalMs = *sweepIntervalMs
		st.SetSweepInterval(time.Duration(*sweepIntervalMs) * time.Millisecond)
	}

	if err := m.db.Save(&def).Error; err != nil {
		return def, err
	}
	return def, nil
}
