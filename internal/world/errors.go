package world

import "errors"

var (
	// ErrInvalidCoordinate - координата не конечна или не помещается в int
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidConfig - недопустимые параметры хранилища или генератора
	ErrInvalidConfig = errors.New("invalid world config")
)
