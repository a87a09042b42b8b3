package timestamp

import (
	"fmt"
	"time"

	"dcpkit/internal/services"
)

// Parse reads YYYY-MM-DDThh:mm:ss[.fff](Z|±hh:mm) and returns the UTC
// instant. Fractional digits beyond milliseconds are truncated.
func Parse(s string) (Timestamp, error) {
	p := parser{src: s}
	var ts Timestamp
	ts.Year = p.digits(4, "year")
	p.expect('-')
	ts.Month = p.digits(2, "month")
	p.expect('-')
	ts.Day = p.digits(2, "day")
	p.expect('T')
	ts.Hour = p.digits(2, "hour")
	p.expect(':')
	ts.Minute = p.digits(2, "minute")
	p.expect(':')
	ts.Second = p.digits(2, "second")
	if p.peek() == '.' {
		p.pos++
		ts.Tick = p.fraction()
	}
	offset := p.offset()
	if p.err == nil && p.pos != len(p.src) {
		p.fail(fmt.Sprintf("unexpected trailing %q", p.src[p.pos:]))
	}
	if p.err != nil {
		return Timestamp{}, p.err
	}
	if !ts.Valid() {
		return Timestamp{}, parseError(s, "field out of range")
	}
	utc := FromTime(ts.Time().Add(-time.Duration(offset) * time.Minute))
	if !utc.Valid() {
		return Timestamp{}, parseError(s, "offset moves the instant outside years 0001-9999")
	}
	return utc, nil
}

type parser struct {
	src string
	pos int
	err error
}

func (p *parser) fail(msg string) {
	if p.err == nil {
		p.err = parseError(p.src, msg)
	}
}

func (p *parser) peek() byte {
	if p.err != nil || p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) {
	if p.err != nil {
		return
	}
	if p.peek() != c {
		p.fail(fmt.Sprintf("expected %q at offset %d", c, p.pos))
		return
	}
	p.pos++
}

func (p *parser) digits(n int, field string) int {
	if p.err != nil {
		return 0
	}
	if p.pos+n > len(p.src) {
		p.fail(fmt.Sprintf("%s truncated", field))
		return 0
	}
	value := 0
	for i := 0; i < n; i++ {
		c := p.src[p.pos+i]
		if c < '0' || c > '9' {
			p.fail(fmt.Sprintf("%s has non-digit %q", field, c))
			return 0
		}
		value = value*10 + int(c-'0')
	}
	p.pos += n
	return value
}

func (p *parser) fraction() int {
	start := p.pos
	ms, scale := 0, 100
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		ms += int(p.src[p.pos]-'0') * scale
		scale /= 10
		p.pos++
	}
	if p.pos == start {
		p.fail("empty fractional seconds")
	}
	return ms
}

func (p *parser) offset() int {
	switch p.peek() {
	case 'Z':
		p.pos++
		return 0
	case '+', '-':
		sign := 1
		if p.src[p.pos] == '-' {
			sign = -1
		}
		p.pos++
		hours := p.digits(2, "offset hours")
		p.expect(':')
		minutes := p.digits(2, "offset minutes")
		if p.err != nil {
			return 0
		}
		if minutes > 59 {
			p.fail("offset minutes out of range")
			return 0
		}
		total := hours*60 + minutes
		if total > MaxOffsetMinutes {
			p.fail(fmt.Sprintf("offset %02d:%02d exceeds ±14:00", hours, minutes))
			return 0
		}
		return sign * total
	default:
		p.fail("missing zone designator")
		return 0
	}
}

func parseError(src, msg string) error {
	return services.Wrap(services.ErrEncoding, "timestamp", "parse", fmt.Sprintf("%q: %s", src, msg), nil)
}
