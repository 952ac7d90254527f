package game

import "errors"

var (
	ErrSessionClosed = errors.New("session closed")
	ErrInvalidInput  = errors.New("invalid input")
	// ErrNotEnoughItems - в инвентаре не хватает ресурсов для рецепта
	ErrNotEnoughItems = errors.New("not enough items")
)
