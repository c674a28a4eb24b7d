package executor

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/contract"
)

// ReceiverRegistry maps contract-like addresses to their token receiver
// callbacks. Plain wallet addresses stay unregistered and take delivery
// without a callback.
type ReceiverRegistry struct {
	mu        sync.RWMutex
	receivers map[common.Address]contract.TokenReceiver
}

// NewReceiverRegistry creates an empty registry
func NewReceiverRegistry() *ReceiverRegistry {
	return &ReceiverRegistry{
		receivers: make(map[common.Address]contract.TokenReceiver),
	}
}

// Register attaches a receiver callback to an address; nil detaches
func (r *ReceiverRegistry) Register(addr common.Address, receiver contract.TokenReceiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if receiver == nil {
		delete(r.receivers, addr)
		return
	}
	r.receivers[addr] = receiver
}

// Resolve returns the receiver of an address, or nil for plain wallets
func (r *ReceiverRegistry) Resolve(addr common.Address) contract.TokenReceiver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.receivers[addr]
}
