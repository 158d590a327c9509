package domain

import "errors"

// Authentication errors.
var (
	ErrMissingCredentials = errors.New("User ID and password are required")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("User not found")
	ErrUserExists         = errors.New("User ID already exists")
	ErrTokenInvalid       = errors.New("Invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrSessionNotFound    = errors.New("session not found")
)

// Domain lookup and update errors.
var (
	ErrAccountNotFound     = errors.New("Account not found")
	ErrCardNotFound        = errors.New("Card not found")
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrNothingToPay        = errors.New("You have nothing to pay")
	ErrConcurrentUpdate    = errors.New("Record changed by another user, please retry")
	ErrUnknownMenu         = errors.New("Menu not found")
	ErrUnknownMenuOption   = errors.New("Please enter a valid option number")
	ErrCardExists          = errors.New("Card number already exists")
	ErrInvalidInput        = errors.New("invalid input")
)
