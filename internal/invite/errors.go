package invite

import "errors"

var (
	// ErrNotFound is returned when no invitation exists for the token or id.
	ErrNotFound = errors.New("convite not found")
	// ErrExpired is returned when the invitation is past its expiry.
	// Expiry is terminal for acceptance and reissue.
	ErrExpired = errors.New("convite expired")
	// ErrAlreadyUsed is returned when the invitation was already consumed.
	ErrAlreadyUsed = errors.New("convite already used")
	// ErrEmailRegistered is returned when the target email is already
	// bound to an account.
	ErrEmailRegistered = errors.New("email already registered")
	// ErrDuplicateInvitation is returned when a pending invitation
	// already exists for the email.
	ErrDuplicateInvitation = errors.New("pending convite already exists for email")
	// ErrDuplicateCNPJ is returned when the sindicato CNPJ collides
	// with an existing sindicato.
	ErrDuplicateCNPJ = errors.New("cnpj already registered")
	// ErrForbidden is returned when the requester lacks the role needed
	// for the operation.
	ErrForbidden = errors.New("insufficient role")
	// ErrInvalidInput is returned when required fields are missing.
	ErrInvalidInput = errors.New("invalid input")
)
