package apperrors

import "errors"

var (
	ErrInvalidDescriptor = errors.New("invalid database connection descriptor")
	ErrEmptyQuestion     = errors.New("question must not be empty")
	ErrNoDatabase        = errors.New("no database selected")
	ErrUnknownProvider   = errors.New("unknown llm provider")
	ErrHostNotAllowed    = errors.New("database host not allowed")
)
