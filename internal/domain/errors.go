package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrSessionConflict  = errors.New("a cleanup session is already open")
	ErrSessionCompleted = errors.New("session already completed")
	ErrDecode           = errors.New("not a decodable image")
	ErrCodec            = errors.New("stored image blob is corrupt")
	ErrInvalidInput     = errors.New("invalid input")
)
