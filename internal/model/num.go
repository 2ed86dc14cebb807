package model

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/verte-zerg/trackly/internal/safe"
)

// Num is a persisted count. Decoding never fails: values that are not finite
// numbers or numeric strings become 0.
type Num float64

// Float returns the value as a finite float64.
func (n Num) Float() float64 {
	return safe.Float(float64(n))
}

// Int returns the value truncated to an int.
func (n Num) Int() int {
	return int(math.Trunc(n.Float()))
}

// MarshalJSON implements json.Marshaler.
func (n Num) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(n.Float(), 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*n = 0
		return nil
	}
	*n = Num(safe.Number(raw))
	return nil
}

// Millis is an epoch-milliseconds timestamp.
type Millis int64

// MillisOf converts a time to epoch milliseconds.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time returns the timestamp as a local time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).In(time.Local)
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as Num.
func (m *Millis) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = 0
		return nil
	}
	*m = Millis(math.Trunc(safe.Number(raw)))
	return nil
}
