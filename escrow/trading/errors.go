package trading

import (
	"errors"
	"fmt"

	"github.com/payflow/escrow/escrow/database/models"
)

var (
	ErrUnauthorized                      = errors.New("the trader is not authorized for this operation")
	ErrInsufficientFunds                 = errors.New("insufficient funds")
	ErrEscrowAccountNotFound             = errors.New("no escrow account for the buyer was found")
	ErrEmptyItemSet                      = errors.New("a trade needs to have items")
	ErrSellerCannotInitiateDirectPayment = errors.New("a direct payment can only be started by the buyer")
	ErrItemNotFound                      = errors.New("item not found")
	ErrTradeNotFound                     = errors.New("trade not found")
	ErrTraderNotFound                    = errors.New("trader not found")

	// ErrInvalidState matches every InvalidStateError via errors.Is.
	ErrInvalidState = errors.New("invalid trade state")
)

// InvalidStateError reports an operation attempted against a trade whose
// status does not permit it. It carries both so callers can tell "too early"
// from "already past this step".
type InvalidStateError struct {
	Operation string
	Status    models.TradeStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not allowed while the trade is in %s", e.Operation, e.Status)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState(op string, status models.TradeStatus) error {
	return &InvalidStateError{Operation: op, Status: status}
}
