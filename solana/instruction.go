package solana

import (
	"fmt"
	"strings"
)

// AccountMeta is an account passed to an instruction, with its access flags.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns the AccountMeta for key.
func NewAccountMeta(key PublicKey, isSigner, isWritable bool) AccountMeta {
	return AccountMeta{PublicKey: key, IsSigner: isSigner, IsWritable: isWritable}
}

func (meta AccountMeta) String() string {
	var flags []string
	if meta.IsSigner {
		flags = append(flags, "signer")
	}
	if meta.IsWritable {
		flags = append(flags, "writable")
	}
	if len(flags) == 0 {
		return meta.PublicKey.String()
	}
	return fmt.Sprintf("%s(%s)", meta.PublicKey, strings.Join(flags, ","))
}

// Instruction is a call to a program: the accounts it touches and its packed arguments.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Signers returns the keys of the accounts that must sign the instruction.
func (ix *Instruction) Signers() []PublicKey {
	var signers []PublicKey
	for _, meta := range ix.Accounts {
		if meta.IsSigner {
			signers = append(signers, meta.PublicKey)
		}
	}
	return signers
}
