package vec

import (
	"errors"
	"math"
)

// ErrNotFinite возвращается при попытке привести NaN/Inf к целым координатам
var ErrNotFinite = errors.New("coordinate is not finite")

// Предел, в котором float64 ещё точно переводится в int без переполнения
const maxExactInt = 1 << 53

// Vec2Float представляет 2D координаты с плавающей точкой
type Vec2Float struct {
	X, Y float64
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// IsFinite возвращает true, если обе координаты конечны
func (v Vec2Float) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// FloorDiv делит обе координаты на cell и округляет вниз.
// Отрицательные координаты попадают в ячейку слева/снизу от нуля: -1 / 500 -> -1.
func (v Vec2Float) FloorDiv(cell float64) (Vec2, error) {
	if !v.IsFinite() {
		return Vec2{}, ErrNotFinite
	}
	fx := math.Floor(v.X / cell)
	fy := math.Floor(v.Y / cell)
	if math.Abs(fx) > maxExactInt || math.Abs(fy) > maxExactInt ||
		math.IsNaN(fx) || math.IsNaN(fy) {
		return Vec2{}, ErrNotFinite
	}
	return Vec2{X: int(fx), Y: int(fy)}, nil
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}
