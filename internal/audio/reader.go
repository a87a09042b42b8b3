package audio

// Reader decodes one audio source frame by frame.
type Reader interface {
	Descriptor() Descriptor
	// DecodeNextFrame advances to the next frame, returning io.EOF once
	// Duration frames have been decoded.
	DecodeNextFrame() error
	// Frame returns the most recently decoded frame. It is valid until the
	// next DecodeNextFrame or Reset.
	Frame() []byte
	// SampleSize is the byte width of one sample slot across all of the
	// reader's channels.
	SampleSize() int
	Reset() error
	Close() error
}
