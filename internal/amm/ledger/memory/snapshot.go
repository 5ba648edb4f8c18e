// internal/amm/ledger/memory/snapshot.go
package memory

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
)

// Snapshot is a deep copy of the whole ledger at one point in time.
type Snapshot map[solana.PublicKey]*ledger.Account

// Snapshot captures the current ledger contents.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := make(Snapshot, len(l.accounts))
	for key, acc := range l.accounts {
		snap[key] = acc.Clone()
	}
	return snap
}

// Restore throws away the current contents and reinstates a snapshot. The
// snapshot itself stays untouched and can be restored again.
func (l *Ledger) Restore(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = make(map[solana.PublicKey]*ledger.Account, len(snap))
	for key, acc := range snap {
		l.accounts[key] = acc.Clone()
	}
}
