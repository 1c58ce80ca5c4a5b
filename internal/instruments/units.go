package instruments

import "fmt"

// Unit is the pressure unit an instrument logs in.
type Unit int

const (
	Decibar Unit = iota
	PSI
	Millibar
	Kilopascal
)

// dbar per unit
const (
	psiToDbar  = 0.689475729
	mbarToDbar = 0.01
	kPaToDbar  = 0.1
)

func (u Unit) String() string {
	switch u {
	case Decibar:
		return "dbar"
	case PSI:
		return "psi"
	case Millibar:
		return "mbar"
	case Kilopascal:
		return "kPa"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ToDecibar converts a pressure reading in u to decibars.
func (u Unit) ToDecibar(v float64) float64 {
	switch u {
	case PSI:
		return v * psiToDbar
	case Millibar:
		return v * mbarToDbar
	case Kilopascal:
		return v * kPaToDbar
	default:
		return v
	}
}
