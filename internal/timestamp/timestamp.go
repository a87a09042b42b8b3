// Package timestamp models the calendar timestamps written into essence
// container headers and packing lists.
//
// A Timestamp always holds UTC wall-clock fields. Parse folds any zone offset
// into those fields, Format renders them shifted into a requested offset, and
// every Add* method returns a normalized value.
package timestamp

import (
	"encoding/binary"
	"fmt"
	"time"

	"dcpkit/internal/services"
)

// MaxOffsetMinutes bounds the zone offsets accepted by Parse and Format.
const MaxOffsetMinutes = 14 * 60

// BinarySize is the length of the packed container form.
const BinarySize = 8

// Timestamp is a UTC calendar instant with millisecond resolution.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	// Tick holds milliseconds within the second.
	Tick int
}

// FromTime converts t to a Timestamp in UTC.
func FromTime(t time.Time) Timestamp {
	t = t.UTC()
	return Timestamp{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Tick:   t.Nanosecond() / int(time.Millisecond),
	}
}

// Now returns the current time truncated to whole seconds.
func Now() Timestamp {
	return FromTime(time.Now().Truncate(time.Second))
}

// Time returns the instant as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Minute, ts.Second,
		ts.Tick*int(time.Millisecond), time.UTC)
}

// Valid reports whether every field is within its calendar range.
func (ts Timestamp) Valid() bool {
	if ts.Year < 1 || ts.Year > 9999 {
		return false
	}
	if ts.Month < 1 || ts.Month > 12 {
		return false
	}
	if ts.Day < 1 || ts.Day > daysIn(ts.Year, ts.Month) {
		return false
	}
	return ts.Hour >= 0 && ts.Hour < 24 &&
		ts.Minute >= 0 && ts.Minute < 60 &&
		ts.Second >= 0 && ts.Second < 60 &&
		ts.Tick >= 0 && ts.Tick < 1000
}

// The Add* methods normalize every field but do not clamp the year. A shift
// past 0001-01-01 or 9999-12-31 yields a value whose Valid reports false, and
// Format and MarshalBinary reject it.

// AddSeconds returns ts shifted by n seconds.
func (ts Timestamp) AddSeconds(n int64) Timestamp {
	return ts.shift(n, 24*60*60, time.Second)
}

// AddMinutes returns ts shifted by n minutes.
func (ts Timestamp) AddMinutes(n int64) Timestamp {
	return ts.shift(n, 24*60, time.Minute)
}

// AddHours returns ts shifted by n hours.
func (ts Timestamp) AddHours(n int64) Timestamp {
	return ts.shift(n, 24, time.Hour)
}

// shift applies n units of unit, perDay units to a day. Whole days go through
// AddDate so large shifts do not overflow time.Duration.
func (ts Timestamp) shift(n, perDay int64, unit time.Duration) Timestamp {
	days, rest := n/perDay, n%perDay
	return FromTime(ts.Time().AddDate(0, 0, int(days)).Add(time.Duration(rest) * unit))
}

// AddDays returns ts shifted by n calendar days.
func (ts Timestamp) AddDays(n int) Timestamp {
	return FromTime(ts.Time().AddDate(0, 0, n))
}

// AddMonths returns ts shifted by n months. Days past the end of the target
// month roll into the following month (Jan 31 + 1 month is Mar 3 in a
// non-leap year).
func (ts Timestamp) AddMonths(n int) Timestamp {
	return FromTime(ts.Time().AddDate(0, n, 0))
}

// AddYears returns ts shifted by n years.
func (ts Timestamp) AddYears(n int) Timestamp {
	return FromTime(ts.Time().AddDate(n, 0, 0))
}

// Compare returns -1, 0, or +1 depending on whether ts is before, equal to,
// or after other.
func (ts Timestamp) Compare(other Timestamp) int {
	return ts.Time().Compare(other.Time())
}

// Sub returns the duration ts-other.
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return ts.Time().Sub(other.Time())
}

// Format renders ts shifted into the given zone offset as
// YYYY-MM-DDThh:mm:ss±hh:mm.
func (ts Timestamp) Format(offsetMinutes int) (string, error) {
	if offsetMinutes > MaxOffsetMinutes || offsetMinutes < -MaxOffsetMinutes {
		return "", services.Wrap(services.ErrEncoding, "timestamp", "format",
			fmt.Sprintf("offset %d minutes outside ±%d", offsetMinutes, MaxOffsetMinutes), nil)
	}
	if !ts.Valid() {
		return "", services.Wrap(services.ErrEncoding, "timestamp", "format",
			"invalid fields "+ts.fields(), nil)
	}
	local := ts.Time().Add(time.Duration(offsetMinutes) * time.Minute)
	sign := byte('+')
	abs := offsetMinutes
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d%c%02d:%02d",
		local.Year(), int(local.Month()), local.Day(),
		local.Hour(), local.Minute(), local.Second(),
		sign, abs/60, abs%60), nil
}

// String renders ts in UTC using the +00:00 offset.
func (ts Timestamp) String() string {
	s, err := ts.Format(0)
	if err != nil {
		return "invalid-timestamp"
	}
	return s
}

// MarshalBinary packs ts as year (big-endian uint16), month, day, hour,
// minute, second, and tick in units of 4 ms.
func (ts Timestamp) MarshalBinary() ([]byte, error) {
	if !ts.Valid() {
		return nil, services.Wrap(services.ErrEncoding, "timestamp", "marshal",
			"invalid fields "+ts.fields(), nil)
	}
	buf := make([]byte, BinarySize)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ts.Year))
	buf[2] = byte(ts.Month)
	buf[3] = byte(ts.Day)
	buf[4] = byte(ts.Hour)
	buf[5] = byte(ts.Minute)
	buf[6] = byte(ts.Second)
	buf[7] = byte(ts.Tick / 4)
	return buf, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (ts *Timestamp) UnmarshalBinary(data []byte) error {
	if len(data) != BinarySize {
		return services.Wrap(services.ErrEncoding, "timestamp", "unmarshal",
			fmt.Sprintf("expected %d bytes, got %d", BinarySize, len(data)), nil)
	}
	decoded := Timestamp{
		Year:   int(binary.BigEndian.Uint16(data[0:2])),
		Month:  int(data[2]),
		Day:    int(data[3]),
		Hour:   int(data[4]),
		Minute: int(data[5]),
		Second: int(data[6]),
		Tick:   int(data[7]) * 4,
	}
	if !decoded.Valid() {
		return services.Wrap(services.ErrEncoding, "timestamp", "unmarshal",
			"invalid fields "+decoded.fields(), nil)
	}
	*ts = decoded
	return nil
}

// fields renders the raw field values without validation.
func (ts Timestamp) fields() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second, ts.Tick)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
