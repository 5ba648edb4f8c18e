// internal/amm/ledger/token.go
package ledger

import (
	"github.com/gagliardetto/solana-go"

	binutil "github.com/rovshanmuradov/solana-amm/internal/utils/binary"
)

const (
	// TokenAccountLen is the packed size of an SPL token account.
	TokenAccountLen = 165
	// MintLen is the packed size of an SPL mint.
	MintLen = 82
)

// AccountState mirrors the SPL token account state byte.
type AccountState uint8

const (
	AccountUninitialized AccountState = iota
	AccountInitialized
	AccountFrozen
)

// TokenAccount is the decoded form of a 165-byte SPL token account. Optional
// fields use the 4-byte COption prefix on the wire.
type TokenAccount struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

// IsFrozen reports whether the account can take part in token moves.
func (a TokenAccount) IsFrozen() bool {
	return a.State == AccountFrozen
}

// Pack serializes the account into a fresh TokenAccountLen-byte blob.
func (a TokenAccount) Pack() []byte {
	dst := make([]byte, TokenAccountLen)
	binutil.WritePubKey(a.Mint, dst, 0)
	binutil.WritePubKey(a.Owner, dst, 32)
	binutil.WriteUint64LittleEndian(a.Amount, dst, 64)
	writeOptionKey(a.Delegate, dst, 72)
	binutil.WriteUint8(uint8(a.State), dst, 108)
	writeOptionU64(a.IsNative, dst, 109)
	binutil.WriteUint64LittleEndian(a.DelegatedAmount, dst, 121)
	writeOptionKey(a.CloseAuthority, dst, 129)
	return dst
}

// UnpackTokenAccount decodes a token account blob. Anything that is not
// exactly TokenAccountLen bytes, or whose state byte says uninitialized, is
// rejected.
func UnpackTokenAccount(data []byte) (TokenAccount, error) {
	if len(data) != TokenAccountLen {
		return TokenAccount{}, ErrNotTokenAccount
	}
	a := TokenAccount{
		Mint:            binutil.ReadPubKey(data, 0),
		Owner:           binutil.ReadPubKey(data, 32),
		Amount:          binutil.ReadUint64LittleEndian(data, 64),
		Delegate:        readOptionKey(data, 72),
		State:           AccountState(binutil.ReadUint8(data, 108)),
		IsNative:        readOptionU64(data, 109),
		DelegatedAmount: binutil.ReadUint64LittleEndian(data, 121),
		CloseAuthority:  readOptionKey(data, 129),
	}
	if a.State == AccountUninitialized {
		return TokenAccount{}, ErrNotTokenAccount
	}
	return a, nil
}

// Mint is the decoded form of an 82-byte SPL mint.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

// Pack serializes the mint into a fresh MintLen-byte blob.
func (m Mint) Pack() []byte {
	dst := make([]byte, MintLen)
	writeOptionKey(m.MintAuthority, dst, 0)
	binutil.WriteUint64LittleEndian(m.Supply, dst, 36)
	binutil.WriteUint8(m.Decimals, dst, 44)
	binutil.WriteBool(m.IsInitialized, dst, 45)
	writeOptionKey(m.FreezeAuthority, dst, 46)
	return dst
}

// UnpackMint decodes a mint blob, rejecting wrong sizes and uninitialized
// mints.
func UnpackMint(data []byte) (Mint, error) {
	if len(data) != MintLen {
		return Mint{}, ErrNotMint
	}
	m := Mint{
		MintAuthority:   readOptionKey(data, 0),
		Supply:          binutil.ReadUint64LittleEndian(data, 36),
		Decimals:        binutil.ReadUint8(data, 44),
		IsInitialized:   binutil.ReadBool(data, 45),
		FreezeAuthority: readOptionKey(data, 46),
	}
	if !m.IsInitialized {
		return Mint{}, ErrNotMint
	}
	return m, nil
}

func readOptionKey(data []byte, offset int) *solana.PublicKey {
	if binutil.ReadUint32LittleEndian(data, offset) == 0 {
		return nil
	}
	key := binutil.ReadPubKey(data, offset+4)
	return &key
}

func writeOptionKey(key *solana.PublicKey, data []byte, offset int) {
	if key == nil {
		binutil.WriteUint32LittleEndian(0, data, offset)
		return
	}
	binutil.WriteUint32LittleEndian(1, data, offset)
	binutil.WritePubKey(*key, data, offset+4)
}

func readOptionU64(data []byte, offset int) *uint64 {
	if binutil.ReadUint32LittleEndian(data, offset) == 0 {
		return nil
	}
	val := binutil.ReadUint64LittleEndian(data, offset+4)
	return &val
}

func writeOptionU64(val *uint64, data []byte, offset int) {
	if val == nil {
		binutil.WriteUint32LittleEndian(0, data, offset)
		return
	}
	binutil.WriteUint32LittleEndian(1, data, offset)
	binutil.WriteUint64LittleEndian(*val, data, offset+4)
}
