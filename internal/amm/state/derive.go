// internal/amm/state/derive.go
package state

import "github.com/gagliardetto/solana-go"

// AddressDeriver resolves the program-derived addresses the handlers check:
// the configuration record's address and a pool's signing authority.
type AddressDeriver interface {
	StateAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error)
	PoolAuthority(programID, pool solana.PublicKey, nonce uint8) (solana.PublicKey, error)
}

// Deriver is the canonical AddressDeriver.
type Deriver struct{}

// StateAddress derives the configuration record's address from the program id.
func (Deriver) StateAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(StateSeed), programID.Bytes()},
		programID,
	)
}

// PoolAuthority rebuilds a pool's signing authority from its persisted nonce.
func (Deriver) PoolAuthority(programID, pool solana.PublicKey, nonce uint8) (solana.PublicKey, error) {
	return solana.CreateProgramAddress(
		[][]byte{pool.Bytes(), {nonce}},
		programID,
	)
}

// FindPoolAuthority searches for the nonce that puts a pool's authority off
// the ed25519 curve. Pool creators persist the returned nonce in the swap
// record.
func FindPoolAuthority(programID, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{pool.Bytes()}, programID)
}
