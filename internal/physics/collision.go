package physics

import (
	"github.com/annel0/sandbox-core/internal/vec"
)

// BoxCollider представляет прямоугольный коллайдер, выровненный по осям.
// Min - левый нижний угол, размеры неотрицательны.
type BoxCollider struct {
	Width  float64
	Height float64
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(width, height float64) *BoxCollider {
	return &BoxCollider{
		Width:  width,
		Height: height,
	}
}

// IsPointInside проверяет, находится ли точка внутри коллайдера.
// Границы включаются: все четыре угла считаются попаданием.
func (bc *BoxCollider) IsPointInside(colliderPos, point vec.Vec2Float) bool {
	return point.X >= colliderPos.X &&
		point.X <= colliderPos.X+bc.Width &&
		point.Y >= colliderPos.Y &&
		point.Y <= colliderPos.Y+bc.Height
}

// Center возвращает центр коллайдера, расположенного в pos
func (bc *BoxCollider) Center(pos vec.Vec2Float) vec.Vec2Float {
	return vec.Vec2Float{X: pos.X + bc.Width/2, Y: pos.Y + bc.Height/2}
}

// CheckBoxCollision проверяет пересечение двух коллайдеров (касание граней тоже считается)
func CheckBoxCollision(pos1 vec.Vec2Float, collider1 *BoxCollider, pos2 vec.Vec2Float, collider2 *BoxCollider) bool {
	return pos1.X <= pos2.X+collider2.Width &&
		pos2.X <= pos1.X+collider1.Width &&
		pos1.Y <= pos2.Y+collider2.Height &&
		pos2.Y <= pos1.Y+collider1.Height
}
