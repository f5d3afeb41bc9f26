package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrStockNotFound          = errors.New("stock not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrShipmentNotFound       = errors.New("shipment not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidStockAdjustment = errors.New("stock quantity cannot drop below reserved quantity")
)

// RuleError is a domain rule violation. Its message is safe to show to
// the caller.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}

func Rulef(format string, args ...any) error {
	return &RuleError{Msg: fmt.Sprintf(format, args...)}
}

var notFoundSentinels = []error{
	ErrUserNotFound,
	ErrCustomerNotFound,
	ErrProductNotFound,
	ErrStockNotFound,
	ErrOrderNotFound,
	ErrShipmentNotFound,
}

func IsNotFound(err error) bool {
	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func IsRuleViolation(err error) bool {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return true
	}
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidStockAdjustment)
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
