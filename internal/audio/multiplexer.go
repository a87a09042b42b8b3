package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"dcpkit/internal/logging"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
)

// Multiplexer interleaves several readers into one frame stream. It is not
// safe for concurrent use.
type Multiplexer struct {
	readers   []Reader
	desc      Descriptor
	spf       int
	frameSize int
	position  int64
}

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	kind   sequence.Kind
	logger *slog.Logger
}

// WithKind overrides the file kind used to expand a directory argument.
func WithKind(kind sequence.Kind) Option {
	return func(o *openOptions) { o.kind = kind }
}

// WithLogger attaches a logger for reader discovery messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) { o.logger = logger }
}

// Open creates one PCM reader per path in declared order. A single
// directory path is expanded to its sorted audio files first.
func Open(paths []string, rate EditRate, opts ...Option) (*Multiplexer, error) {
	options := openOptions{kind: sequence.Audio}
	for _, opt := range opts {
		opt(&options)
	}
	logger := logging.NewComponentLogger(options.logger, "audio")

	if len(paths) == 1 {
		if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
			expanded, err := sequence.List(paths[0], options.kind)
			if err != nil {
				return nil, err
			}
			logger.Debug("expanded audio directory",
				logging.String("dir", paths[0]),
				logging.Int("files", len(expanded)),
			)
			paths = expanded
		}
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrValidation, "audio", "open", "no audio inputs", nil)
	}

	readers := make([]Reader, 0, len(paths))
	for _, path := range paths {
		reader, err := OpenPCM(path, rate)
		if err != nil {
			closeAll(readers)
			return nil, err
		}
		desc := reader.Descriptor()
		logger.Debug("opened audio reader",
			logging.String("path", path),
			logging.Int("sample_rate", desc.SampleRate),
			logging.Int("channels", desc.ChannelCount),
			logging.Int("bit_depth", desc.BitDepth),
			logging.Int64("frames", desc.Duration),
		)
		readers = append(readers, reader)
	}

	mux, err := NewMultiplexer(readers...)
	if err != nil {
		closeAll(readers)
		return nil, err
	}
	return mux, nil
}

// NewMultiplexer aggregates pre-opened readers. The first reader's
// descriptor seeds the aggregate; the rest must match its sample rate, bit
// depth, and edit rate. On error the readers are left open.
func NewMultiplexer(readers ...Reader) (*Multiplexer, error) {
	if len(readers) == 0 {
		return nil, services.Wrap(services.ErrValidation, "audio", "open", "no audio readers", nil)
	}
	agg := readers[0].Descriptor()
	for i, reader := range readers[1:] {
		desc := reader.Descriptor()
		switch {
		case desc.SampleRate != agg.SampleRate:
			return nil, services.Wrap(services.ErrFormatMismatch, "audio", "open",
				fmt.Sprintf("reader %d sample rate %d differs from %d", i+2, desc.SampleRate, agg.SampleRate), nil)
		case desc.BitDepth != agg.BitDepth:
			return nil, services.Wrap(services.ErrFormatMismatch, "audio", "open",
				fmt.Sprintf("reader %d bit depth %d differs from %d", i+2, desc.BitDepth, agg.BitDepth), nil)
		case desc.Rate != agg.Rate:
			return nil, services.Wrap(services.ErrFormatMismatch, "audio", "open",
				fmt.Sprintf("reader %d edit rate %s differs from %s", i+2, desc.Rate, agg.Rate), nil)
		}
		agg.ChannelCount += desc.ChannelCount
		agg.BlockAlign += desc.BlockAlign
		agg.Duration = min(agg.Duration, desc.Duration)
	}

	spf, err := agg.SamplesPerFrame()
	if err != nil {
		return nil, err
	}
	frameSize := spf * agg.BlockAlign
	if frameSize > MaxFrameBufferSize {
		return nil, services.Wrap(services.ErrAllocation, "audio", "open",
			fmt.Sprintf("interleaved frame of %d bytes exceeds the frame limit", frameSize), nil)
	}
	return &Multiplexer{
		readers:   readers,
		desc:      agg,
		spf:       spf,
		frameSize: frameSize,
	}, nil
}

// Descriptor returns the aggregate descriptor.
func (m *Multiplexer) Descriptor() Descriptor { return m.desc }

// FrameSize returns the byte size of one interleaved frame.
func (m *Multiplexer) FrameSize() int { return m.frameSize }

// Position returns the number of frames read since open or the last Reset.
func (m *Multiplexer) Position() int64 { return m.position }

// Readers returns the number of underlying readers.
func (m *Multiplexer) Readers() int { return len(m.readers) }

// ReadFrame fills out with the next interleaved frame. It returns io.EOF
// after Duration frames. On any other error out's contents are unspecified.
func (m *Multiplexer) ReadFrame(out *FrameBuffer) error {
	if out == nil {
		return services.Wrap(services.ErrAllocation, "audio", "read frame", "nil frame buffer", nil)
	}
	if m.position >= m.desc.Duration {
		out.Reset()
		return io.EOF
	}
	dst, err := out.fill(m.frameSize)
	if err != nil {
		return err
	}

	if len(m.readers) == 1 {
		reader := m.readers[0]
		if err := reader.DecodeNextFrame(); err != nil {
			return err
		}
		if n := copy(dst, reader.Frame()); n != m.frameSize {
			return shortFrame(0, n, m.frameSize)
		}
		m.position++
		return nil
	}

	for _, reader := range m.readers {
		if err := reader.DecodeNextFrame(); err != nil {
			return err
		}
	}
	for i, reader := range m.readers {
		if want, got := m.spf*reader.SampleSize(), len(reader.Frame()); got < want {
			return shortFrame(i, got, want)
		}
	}
	offset := 0
	for slot := 0; slot < m.spf; slot++ {
		for _, reader := range m.readers {
			size := reader.SampleSize()
			start := slot * size
			offset += copy(dst[offset:], reader.Frame()[start:start+size])
		}
	}
	m.position++
	return nil
}

func shortFrame(reader, got, want int) error {
	return services.Wrap(services.ErrConversion, "audio", "read frame",
		fmt.Sprintf("reader %d produced %d bytes, expected %d", reader+1, got, want), nil)
}

// Reset rewinds every reader to its first frame.
func (m *Multiplexer) Reset() error {
	for _, reader := range m.readers {
		if err := reader.Reset(); err != nil {
			return err
		}
	}
	m.position = 0
	return nil
}

// Close closes every reader, returning the joined errors.
func (m *Multiplexer) Close() error {
	err := closeAll(m.readers)
	m.readers = nil
	return err
}

func closeAll(readers []Reader) error {
	var errs []error
	for _, reader := range readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteFrames drains m into w frame by frame, checking ctx between frames.
// It returns the number of frames written.
func WriteFrames(ctx context.Context, m *Multiplexer, w io.Writer) (int64, error) {
	buf, err := NewFrameBuffer(m.FrameSize())
	if err != nil {
		return 0, err
	}
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := m.ReadFrame(buf); err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return written, fmt.Errorf("write frame %d: %w", written+1, err)
		}
		written++
	}
}
