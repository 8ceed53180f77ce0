package service

import "errors"

var (
	ErrValidation   = errors.New("validation")     // 400
	ErrNotFound     = errors.New("not found")      // 404, cart absent
	ErrItemNotFound = errors.New("item not found") // 404, item absent in an existing cart
	ErrConflict     = errors.New("conflict")       // 409
)

// Error pairs an error kind with a boundary-ready message. errors.Is against
// the sentinels above still works through Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func invalid(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func itemNotFound(msg string) error { return &Error{Kind: ErrItemNotFound, Message: msg} }

func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }
