// Package anchor computes the discriminators Anchor programs prefix instruction data, accounts and
// events with.
package anchor

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gomlx/solmate/internal/strcase"
)

// Namespaces of the preimages hashed by Sighash.
const (
	NamespaceGlobal  = "global"
	NamespaceAccount = "account"
	NamespaceEvent   = "event"
)

// DiscriminatorSize is the number of bytes of a discriminator.
const DiscriminatorSize = 8

// Sighash returns the first 8 bytes of sha256("<namespace>:<name>") read as a little-endian u64.
// Packing it back as a u64 reproduces those 8 bytes.
func Sighash(namespace, name string) uint64 {
	digest := sha256.Sum256([]byte(namespace + ":" + name))
	return binary.LittleEndian.Uint64(digest[:DiscriminatorSize])
}

// InstructionDiscriminator returns the discriminator of an instruction. Anchor hashes the snake_case
// name, whatever the casing in the IDL.
func InstructionDiscriminator(name string) uint64 {
	return Sighash(NamespaceGlobal, strcase.Snake(name))
}

// AccountDiscriminator returns the discriminator of an account type, keyed by its PascalCase name.
func AccountDiscriminator(name string) uint64 {
	return Sighash(NamespaceAccount, name)
}

// EventDiscriminator returns the discriminator of an event type.
func EventDiscriminator(name string) uint64 {
	return Sighash(NamespaceEvent, name)
}

// Bytes returns a discriminator in its packed form.
func Bytes(discriminator uint64) [DiscriminatorSize]byte {
	var b [DiscriminatorSize]byte
	binary.LittleEndian.PutUint64(b[:], discriminator)
	return b
}
