package usecase

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInvalidUser         = errors.New("user id is required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRequestNotFound     = errors.New("usage request not found")
	ErrRequestExpired      = errors.New("usage request expired")
	ErrCodeExhausted       = errors.New("could not allocate a unique verification code")
)
