package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")

	// marketplace
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPriceMismatch    = errors.New("price mismatch")
	ErrNoActiveBid      = errors.New("no active bid")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrConservation     = errors.New("escrow payouts do not match held amount")
	ErrUnsupportedAsset = errors.New("unsupported asset contract")

	ErrBidTooLow         = fmt.Errorf("%w: bid must exceed the active bid", ErrInvalidAmount)
	ErrNotApproved       = fmt.Errorf("%w: marketplace operator not approved", ErrUnauthorized)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrTransferFailed)
)
