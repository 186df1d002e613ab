package entities

import "errors"

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrDuplicateItem       = errors.New("item already exists")
	ErrInvalidItem         = errors.New("invalid item")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidFeedbackKind = errors.New("invalid feedback kind")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrForecastUnavailable = errors.New("forecast unavailable")
)
