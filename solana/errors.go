package solana

import "fmt"

// ProgramErrorKind enumerates the builtin errors any program can return.
type ProgramErrorKind uint8

const (
	Custom ProgramErrorKind = iota
	InvalidArgument
	InvalidInstructionData
	InvalidAccountData
	AccountDataTooSmall
	InsufficientFunds
	IncorrectProgramID
	MissingRequiredSignature
	AccountAlreadyInitialized
	UninitializedAccount
	NotEnoughAccountKeys
	AccountBorrowFailed
	MaxSeedLengthExceeded
	InvalidSeeds
	BorshIOError
	AccountNotRentExempt
	UnsupportedSysvar
	IllegalOwner
	AccountsDataBudgetExceeded
)

var programErrorMessages = [...]string{
	Custom:                     "Custom program error: %d",
	InvalidArgument:            "The arguments provided to a program instruction were invalid",
	InvalidInstructionData:     "An instruction's data contents was invalid",
	InvalidAccountData:         "An account's data contents was invalid",
	AccountDataTooSmall:        "An account's data was too small",
	InsufficientFunds:          "An account's balance was too small to complete the instruction",
	IncorrectProgramID:         "The account did not have the expected program id",
	MissingRequiredSignature:   "A signature was required but not found",
	AccountAlreadyInitialized:  "An initialize instruction was sent to an account that has already been initialized",
	UninitializedAccount:       "An attempt to operate on an account that hasn't been initialized",
	NotEnoughAccountKeys:       "The instruction expected additional account keys",
	AccountBorrowFailed:        "Failed to borrow a reference to account data",
	MaxSeedLengthExceeded:      "Length of the seed is too long for address generation",
	InvalidSeeds:               "Provided seeds do not result in a valid address",
	BorshIOError:               "IO Error: %s",
	AccountNotRentExempt:       "An account does not have enough lamports to be rent-exempt",
	UnsupportedSysvar:          "Unsupported sysvar",
	IllegalOwner:               "Provided owner is not allowed",
	AccountsDataBudgetExceeded: "Requested account data allocation exceeded the accounts data budget",
}

// ProgramError is an error returned by a program. Code is set for Custom errors (generated bindings
// map it to their program's error enum), Detail for BorshIOError.
type ProgramError struct {
	Kind   ProgramErrorKind
	Code   uint32
	Detail string
}

// CustomError returns the ProgramError for a program specific error code.
func CustomError(code uint32) *ProgramError {
	return &ProgramError{Kind: Custom, Code: code}
}

func (e *ProgramError) Error() string {
	if int(e.Kind) >= len(programErrorMessages) {
		return fmt.Sprintf("ProgramError(%d)", e.Kind)
	}
	switch e.Kind {
	case Custom:
		return fmt.Sprintf(programErrorMessages[Custom], e.Code)
	case BorshIOError:
		return fmt.Sprintf(programErrorMessages[BorshIOError], e.Detail)
	}
	return programErrorMessages[e.Kind]
}

// Is matches program errors of the same kind and, for custom errors, the same code.
func (e *ProgramError) Is(target error) bool {
	other, ok := target.(*ProgramError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && (e.Kind != Custom || other.Code == e.Code)
}
