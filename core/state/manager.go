package state

import (
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"localshare/storage/statedb"
)

// Manager provides typed read/write access to protocol state. All keys are
// hashed before hitting the store so arbitrary-length preimages are safe.
type Manager struct {
	store *statedb.Store
}

// NewManager creates a state manager operating on the provided store.
func NewManager(store *statedb.Store) *Manager {
	return &Manager{store: store}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut RLP-encodes the value and stores it under the hashed key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.store.Update(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.store == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.store.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVHas reports whether a value exists under the supplied key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	if m == nil || m.store == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	return m.store.Has(kvKey(key))
}
