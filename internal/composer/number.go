package composer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number accepts a JSON number or a numeric string. Anything else,
// including null, decodes to 0 instead of failing the request.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(finite(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			v = 0
		}
		*n = Number(finite(v))
		return nil
	}

	*n = 0
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Int rounds half up.
func (n Number) Int() int {
	v := finite(float64(n))
	if math.Abs(v) > math.MaxInt32 {
		return 0
	}
	return roundHalfUp(v)
}
