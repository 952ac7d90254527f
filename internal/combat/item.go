package combat

// Item - предмет, которым можно ударить
type Item interface {
	Name() string
	Damage() int
}

// Sword - меч с фиксированным уроном
type Sword struct {
	name   string
	damage int
}

// NewSword создаёт меч; отрицательный урон недопустим
func NewSword(name string, damage int) (*Sword, error) {
	if damage < 0 {
		return nil, ErrInvalidDamage
	}
	return &Sword{name: name, damage: damage}, nil
}

func (s *Sword) Name() string { return s.name }
func (s *Sword) Damage() int  { return s.damage }

// WoodenSword и StoneSword - мечи, которые можно скрафтить из ресурсов инвентаря
func WoodenSword() *Sword { return &Sword{name: "wooden_sword", damage: 5} }
func StoneSword() *Sword  { return &Sword{name: "stone_sword", damage: 10} }

// Fist - удар без оружия
type Fist struct{}

func (Fist) Name() string { return "fist" }
func (Fist) Damage() int  { return 1 }
