package combat

import "errors"

var (
	// ErrInvalidDamage - отрицательный урон: ошибка вызывающего кода
	ErrInvalidDamage = errors.New("invalid damage")
	// ErrInvalidConfig - недопустимые параметры сущности (maxHealth <= 0 и т.п.)
	ErrInvalidConfig = errors.New("invalid entity config")
)
