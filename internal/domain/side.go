package domain

// Side identifies one of the two competing parties, or neither.
type Side int

const (
	// SideNone marks "no side": no batting side yet, or a drawn match.
	SideNone Side = iota
	// SideOwner is the party that owns the match (seat 0).
	SideOwner
	// SideOpponent is the other party (seat 1).
	SideOpponent
)

// Sides lists the two playing sides in seat order.
var Sides = [2]Side{SideOwner, SideOpponent}

// Other returns the opposing side. SideNone has no opponent.
func (s Side) Other() Side {
	switch s {
	case SideOwner:
		return SideOpponent
	case SideOpponent:
		return SideOwner
	default:
		return SideNone
	}
}

// Valid reports whether s is one of the two playing sides.
func (s Side) Valid() bool {
	return s == SideOwner || s == SideOpponent
}

// Seat returns the 0-based seat index for the side, or -1 for SideNone.
func (s Side) Seat() int {
	switch s {
	case SideOwner:
		return 0
	case SideOpponent:
		return 1
	default:
		return -1
	}
}

// SideForSeat maps a 0-based seat index back to its side.
func SideForSeat(seat int) Side {
	switch seat {
	case 0:
		return SideOwner
	case 1:
		return SideOpponent
	default:
		return SideNone
	}
}

func (s Side) String() string {
	switch s {
	case SideOwner:
		return "owner"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// ParseSide converts a wire name ("owner", "opponent") into a Side.
func ParseSide(name string) Side {
	switch name {
	case "owner":
		return SideOwner
	case "opponent":
		return SideOpponent
	default:
		return SideNone
	}
}
