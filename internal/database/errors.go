package database

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrSessionMissing = errors.New("no active session")
)
