package services

import (
	"fmt"
	"strings"
)

// formatCentavos renders an int64 centavo amount as a human-readable string,
// e.g. 1234567 -> "12,345.67". Used for notification copy only; API
// responses always carry raw centavos.
func formatCentavos(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := v / 100
	frac := v % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("%s.%02d", b.String(), frac)
	if neg {
		return "-" + out
	}
	return out
}
