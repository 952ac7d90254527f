package vec

import "math"

// Vec2 представляет целочисленные 2D координаты (тайлы, чанки)
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2) Mul(scalar int) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// ChebyshevTo возвращает расстояние Чебышёва: число "колец" чанков между точками
func (v Vec2) ChebyshevTo(other Vec2) int {
	dx := absInt(v.X - other.X)
	dy := absInt(v.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// FloorDiv делит с округлением вниз, в отличие от оператора /,
// который округляет к нулю. Для b <= 0 поведение не определено.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// FloorMod возвращает неотрицательный остаток, парный к FloorDiv
func FloorMod(a, b int) int {
	return a - FloorDiv(a, b)*b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
