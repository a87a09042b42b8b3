package audio

import (
	"fmt"
	"strconv"

	"dcpkit/internal/services"
)

// EditRate is a rational frame rate such as 24/1 or 24000/1001.
type EditRate struct {
	Numerator   int
	Denominator int
}

// Common edit rates.
var (
	Rate24 = EditRate{Numerator: 24, Denominator: 1}
	Rate25 = EditRate{Numerator: 25, Denominator: 1}
	Rate48 = EditRate{Numerator: 48, Denominator: 1}
)

// Valid reports whether both terms are positive.
func (r EditRate) Valid() bool {
	return r.Numerator > 0 && r.Denominator > 0
}

func (r EditRate) String() string {
	if r.Denominator == 1 {
		return strconv.Itoa(r.Numerator)
	}
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// SamplesPerFrame returns how many sample slots one frame at this rate
// spans. Rates that do not divide the sample rate evenly are rejected.
func (r EditRate) SamplesPerFrame(sampleRate int) (int, error) {
	if !r.Valid() {
		return 0, services.Wrap(services.ErrValidation, "audio", "edit rate", fmt.Sprintf("invalid edit rate %s", r), nil)
	}
	if sampleRate <= 0 {
		return 0, services.Wrap(services.ErrValidation, "audio", "edit rate", fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}
	scaled := int64(sampleRate) * int64(r.Denominator)
	if scaled%int64(r.Numerator) != 0 {
		return 0, services.Wrap(services.ErrValidation, "audio", "edit rate",
			fmt.Sprintf("%d Hz does not divide into whole frames at %s", sampleRate, r), nil)
	}
	return int(scaled / int64(r.Numerator)), nil
}

// Descriptor summarizes a reader or an aggregate of readers. Duration is
// measured in whole edit-rate frames.
type Descriptor struct {
	SampleRate   int
	ChannelCount int
	BitDepth     int
	BlockAlign   int
	Duration     int64
	Rate         EditRate
}

// SamplesPerFrame is Rate.SamplesPerFrame(SampleRate).
func (d Descriptor) SamplesPerFrame() (int, error) {
	return d.Rate.SamplesPerFrame(d.SampleRate)
}

// FrameSize returns the byte size of one frame, or zero when the rate does
// not divide the sample rate.
func (d Descriptor) FrameSize() int {
	spf, err := d.SamplesPerFrame()
	if err != nil {
		return 0
	}
	return spf * d.BlockAlign
}
