package state

import (
	"fmt"

	"localshare/native/equity"
)

var (
	equityConfigKey      = []byte("equity/config")
	equityBusinessPrefix = []byte("equity/business:")
	equityOfferingPrefix = []byte("equity/offering:")
)

func equityBusinessKey(addr [20]byte) []byte {
	buf := make([]byte, len(equityBusinessPrefix)+len(addr))
	copy(buf, equityBusinessPrefix)
	copy(buf[len(equityBusinessPrefix):], addr[:])
	return buf
}

func equityOfferingKey(addr [20]byte) []byte {
	buf := make([]byte, len(equityOfferingPrefix)+len(addr))
	copy(buf, equityOfferingPrefix)
	copy(buf[len(equityOfferingPrefix):], addr[:])
	return buf
}

// EquityConfigGet loads the protocol's singleton configuration record.
func (m *Manager) EquityConfigGet() (*equity.Config, bool, error) {
	config := new(equity.Config)
	exists, err := m.KVGet(equityConfigKey, config)
	if err != nil || !exists {
		return nil, false, err
	}
	return config, true, nil
}

// EquityConfigPut persists the protocol configuration record.
func (m *Manager) EquityConfigPut(config *equity.Config) error {
	if config == nil {
		return fmt.Errorf("state: config must not be nil")
	}
	return m.KVPut(equityConfigKey, config)
}

// EquityBusinessGet loads the business record stored at the derived address.
func (m *Manager) EquityBusinessGet(addr [20]byte) (*equity.Business, bool, error) {
	business := new(equity.Business)
	exists, err := m.KVGet(equityBusinessKey(addr), business)
	if err != nil || !exists {
		return nil, false, err
	}
	return business, true, nil
}

// EquityBusinessPut persists the business record at the derived address.
func (m *Manager) EquityBusinessPut(addr [20]byte, business *equity.Business) error {
	if business == nil {
		return fmt.Errorf("state: business must not be nil")
	}
	return m.KVPut(equityBusinessKey(addr), business)
}

// EquityOfferingGet loads the offering record stored at the derived address.
func (m *Manager) EquityOfferingGet(addr [20]byte) (*equity.Offering, bool, error) {
	offering := new(equity.Offering)
	exists, err := m.KVGet(equityOfferingKey(addr), offering)
	if err != nil || !exists {
		return nil, false, err
	}
	return offering, true, nil
}

// EquityOfferingPut persists the offering record at the derived address.
func (m *Manager) EquityOfferingPut(addr [20]byte, offering *equity.Offering) error {
	if offering == nil {
		return fmt.Errorf("state: offering must not be nil")
	}
	return m.KVPut(equityOfferingKey(addr), offering)
}

// TokenAccountExists reports whether a token account occupies the address.
func (m *Manager) TokenAccountExists(addr [20]byte) (bool, error) {
	return m.KVHas(tokenAccountKey(addr))
}
