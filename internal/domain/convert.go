package domain

const kgPerLb = 0.45359237

// WeightUnit is the unit a weight was entered in. Stored weights are always kg.
type WeightUnit string

const (
	UnitKg WeightUnit = "kg"
	UnitLb WeightUnit = "lb"
)

// ToKilograms converts v from unit to kilograms. An empty unit means kg.
// ok is false for unrecognised units.
func ToKilograms(v float64, unit WeightUnit) (kg float64, ok bool) {
	switch unit {
	case "", UnitKg:
		return v, true
	case UnitLb:
		return v * kgPerLb, true
	}
	return 0, false
}
