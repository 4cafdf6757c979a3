// Package solana holds the Solana types generated bindings build instructions with: public keys,
// account metas, instructions and builtin program errors.
package solana

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// PublicKeyLength is the size of a public key in bytes.
const PublicKeyLength = 32

// MaxSeedLength is the longest seed CreateWithSeed accepts.
const MaxSeedLength = 32

// PublicKey is an account address. It packs as its 32 raw bytes.
type PublicKey [PublicKeyLength]byte

// PublicKeyFromBase58 parses a base58 encoded public key.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	var key PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return key, errors.Wrapf(err, "invalid base58 public key %q", s)
	}
	if len(raw) != PublicKeyLength {
		return key, errors.Errorf("public key %q decodes to %d bytes, wanted %d", s, len(raw), PublicKeyLength)
	}
	copy(key[:], raw)
	return key, nil
}

// MustPublicKeyFromBase58 is PublicKeyFromBase58 that panics on errors. Generated code uses it for
// addresses known at generation time.
func MustPublicKeyFromBase58(s string) PublicKey {
	key, err := PublicKeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return key
}

// String returns the base58 encoding of key.
func (key PublicKey) String() string {
	return base58.Encode(key[:])
}

// IsZero returns whether key is all zeros, the "unset" key. It is also the system program's ID.
func (key PublicKey) IsZero() bool {
	return key == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler, so keys read and write as base58 in config files.
func (key PublicKey) MarshalText() ([]byte, error) {
	return []byte(key.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (key *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := PublicKeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*key = parsed
	return nil
}

// CreateWithSeed derives the address sha256(base || seed || owner), as the system program does for
// its *WithSeed instructions.
func CreateWithSeed(base PublicKey, seed string, owner PublicKey) (PublicKey, error) {
	if len(seed) > MaxSeedLength {
		return PublicKey{}, errors.Errorf("seed %q is %d bytes long, max is %d", seed, len(seed), MaxSeedLength)
	}
	h := sha256.New()
	h.Write(base[:])
	h.Write([]byte(seed))
	h.Write(owner[:])
	var key PublicKey
	copy(key[:], h.Sum(nil))
	return key, nil
}

// Well known program and sysvar addresses.
var (
	SystemProgramID          = MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID           = MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysvarRentPubkey         = MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	SysvarClockPubkey        = MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	SysvarRecentBlockhashes  = MustPublicKeyFromBase58("SysvarRecentB1ockHashes11111111111111111111")
)
