package conv

import (
	"fmt"
	"math"
)

// IntToUint8 converts int to uint8 safely.
func IntToUint8(v int) (uint8, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint8 (negative)", v)
	}
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint8 (too large)", v)
	}
	return uint8(v), nil
}
