package models

import (
	"fmt"
	"strings"
)

// DefaultHumanIDPrefix and width match the numbering the paper registers started with
const (
	DefaultHumanIDPrefix = "LIB_"
	DefaultHumanIDWidth  = 4
)

// Sequence backs human-readable ID allocation ("LIB_0001"). One row per
// counter; allocation happens inside a transaction so concurrent enrollments
// cannot collide. Width grows when the counter crosses 10^width, so the IDs
// keep sorting lexicographically.
type Sequence struct {
	Key    string `gorm:"primarykey;type:varchar(50)" json:"key"`
	Next   int    `gorm:"default:1" json:"next"`
	Width  int    `gorm:"default:4" json:"width"`
	Prefix string `gorm:"type:varchar(10)" json:"prefix"`
}

// FormatHumanID builds the display ID for counter value n
func FormatHumanID(prefix string, n, width int) string {
	if prefix == "" {
		prefix = DefaultHumanIDPrefix
	}
	if width <= 0 {
		width = DefaultHumanIDWidth
	}
	digits := fmt.Sprintf("%d", n)
	if pad := width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return prefix + digits
}

// NextWidth bumps the stored width when n has outgrown it (9999 -> 10000)
func NextWidth(n, width int) int {
	limit := 1
	for i := 0; i < width; i++ {
		limit *= 10
	}
	if n >= limit {
		return width + 1
	}
	return width
}
