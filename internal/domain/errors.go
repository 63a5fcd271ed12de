package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionBankEmpty indicates the bank could not be loaded or holds no usable questions.
	ErrQuestionBankEmpty = errors.New("question bank is empty")
	// ErrGameOver is returned when an operation is attempted on a finished session.
	ErrGameOver = errors.New("game is over")
	// ErrSubmissionInFlight guards against concurrent score submissions.
	ErrSubmissionInFlight = errors.New("a score submission is already in flight")
	// ErrNotOwner is returned when a delete is attempted by a non-owner address.
	ErrNotOwner = errors.New("caller is not the leaderboard owner")
)

// ValidationError reports bad or missing user input. It is raised locally,
// before any network call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConnectivityError means no candidate read endpoint was reachable.
type ConnectivityError struct {
	Tried int
	Last  error
}

func (e *ConnectivityError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("no reachable endpoint (tried %d): %v", e.Tried, e.Last)
	}
	return fmt.Sprintf("no reachable endpoint (tried %d)", e.Tried)
}

func (e *ConnectivityError) Unwrap() error { return e.Last }

// PartialReadError flags that some leaderboard entries could not be read.
// It accompanies usable partial results and is never fatal to a fetch.
type PartialReadError struct {
	Expected int
	Got      int
}

func (e *PartialReadError) Error() string {
	return fmt.Sprintf("partial leaderboard read: expected %d entries, got %d", e.Expected, e.Got)
}

// TxReason is a coarse classification of a failed on-chain submission.
type TxReason string

const (
	ReasonUserRejected      TxReason = "user-rejected"
	ReasonInsufficientFunds TxReason = "insufficient-funds"
	ReasonContractReverted  TxReason = "contract-reverted"
	ReasonNetwork           TxReason = "network-error"
	ReasonValidation        TxReason = "validation-error"
)

// Message returns the human-readable description for the reason.
func (r TxReason) Message() string {
	switch r {
	case ReasonUserRejected:
		return "Transaction was rejected in the wallet"
	case ReasonInsufficientFunds:
		return "The signing wallet needs more funds for gas fees"
	case ReasonContractReverted:
		return "The smart contract rejected the transaction"
	case ReasonValidation:
		return "Invalid data was sent to the smart contract"
	default:
		return "Blockchain network error - please try again"
	}
}

// TransactionError wraps an on-chain submission failure with its reason code.
type TransactionError struct {
	Reason TxReason
	Err    error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transaction failed (%s)", e.Reason)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ConfigurationError means the contract address or interface is missing or
// malformed. It is fatal to the submission attempt and never retried.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Detail
}
