package kconfig

// Tri is a value in the three-valued logic used throughout the configuration
// language: n (disabled), m (module), and y (enabled), ordered n < m < y.
type Tri int8

const (
	N Tri = iota
	M
	Y
)

// String returns the Kconfig name of the tri value.
func (t Tri) String() string {
	switch t {
	case N:
		return "n"
	case M:
		return "m"
	case Y:
		return "y"
	default:
		return "unknown"
	}
}

// ParseTri converts one of the names "n", "m", or "y" to its tri value.
func ParseTri(s string) (Tri, bool) {
	switch s {
	case "n":
		return N, true
	case "m":
		return M, true
	case "y":
		return Y, true
	default:
		return N, false
	}
}

// And returns the conjunction of two tri values, which is their minimum.
func (t Tri) And(u Tri) Tri { return min(t, u) }

// Or returns the disjunction of two tri values, which is their maximum.
func (t Tri) Or(u Tri) Tri { return max(t, u) }

// Not returns the negation of a tri value. n and y are each other's
// negation, and m is its own.
func (t Tri) Not() Tri { return Y - t }

// Type is the declared or effective type of a symbol or choice.
type Type int8

const (
	TypeUnknown Type = iota
	TypeBool
	TypeTristate
	TypeString
	TypeInt
	TypeHex
)

// String returns the Kconfig keyword for the type.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeTristate:
		return "tristate"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeHex:
		return "hex"
	default:
		return "unknown"
	}
}
