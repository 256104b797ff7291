package soroban

import "fmt"

// PlaceNames is the bounded table of column names indexed by place value
// (0 = units). Places past the end render as a power of ten.
type PlaceNames []string

// DefaultPlaceNames covers a nine-column abacus.
var DefaultPlaceNames = PlaceNames{
	"Units",
	"Tens",
	"Hundreds",
	"Thousands",
	"Ten-thousands",
	"Hundred-thousands",
	"Millions",
	"Ten-millions",
	"Hundred-millions",
}

// Name returns the display name for place.
func (n PlaceNames) Name(place int) string {
	if place >= 0 && place < len(n) && n[place] != "" {
		return n[place]
	}
	return fmt.Sprintf("10^%d", place)
}

// pow10 returns 10^place for the small places an abacus holds.
func pow10(place int) int {
	v := 1
	for i := 0; i < place; i++ {
		v *= 10
	}
	return v
}

// digitsOf returns the decimal digits of n (n >= 0) indexed by place.
func digitsOf(n int) []int {
	if n == 0 {
		return []int{0}
	}
	var ds []int
	for ; n > 0; n /= 10 {
		ds = append(ds, n%10)
	}
	return ds
}

// digitCount returns the number of decimal digits in n (n >= 0).
func digitCount(n int) int {
	return len(digitsOf(n))
}
