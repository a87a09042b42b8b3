package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"dcpkit/internal/services"
)

const (
	wavFormatPCM        = 0x0001
	wavFormatExtensible = 0xFFFE
	riffHeaderSize      = 12
	chunkHeaderSize     = 8
)

// ksdataformatSubtypePCM is the EXTENSIBLE sub-format GUID for integer PCM.
var ksdataformatSubtypePCM = []byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71,
}

// PCMReader reads integer PCM from a RIFF/WAVE file.
type PCMReader struct {
	path  string
	file  *os.File
	data  *io.SectionReader
	desc  Descriptor
	frame []byte
	pos   int64
}

var _ Reader = (*PCMReader)(nil)

// OpenPCM opens a WAV file and prepares it for frame decoding at rate.
func OpenPCM(path string, rate EditRate) (*PCMReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "audio", "open", path, err)
	}
	reader, err := newPCMReader(path, file, rate)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return reader, nil
}

func newPCMReader(path string, file *os.File, rate EditRate) (*PCMReader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "audio", "open", path, err)
	}
	format, dataOffset, dataSize, err := parseWAV(file, info.Size())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "audio", "parse", path, err)
	}

	desc := Descriptor{
		SampleRate:   format.sampleRate,
		ChannelCount: format.channels,
		BitDepth:     format.bitDepth,
		BlockAlign:   format.blockAlign,
		Rate:         rate,
	}
	spf, err := desc.SamplesPerFrame()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	frameSize := int64(spf) * int64(desc.BlockAlign)
	if frameSize > MaxFrameBufferSize {
		return nil, services.Wrap(services.ErrAllocation, "audio", "open",
			fmt.Sprintf("%s: frame of %d bytes exceeds the frame limit", path, frameSize), nil)
	}
	desc.Duration = dataSize / frameSize

	return &PCMReader{
		path:  path,
		file:  file,
		data:  io.NewSectionReader(file, dataOffset, dataSize),
		desc:  desc,
		frame: make([]byte, 0, frameSize),
	}, nil
}

// Path returns the file the reader was opened from.
func (r *PCMReader) Path() string { return r.path }

func (r *PCMReader) Descriptor() Descriptor { return r.desc }

func (r *PCMReader) SampleSize() int { return r.desc.BlockAlign }

func (r *PCMReader) Frame() []byte { return r.frame }

func (r *PCMReader) DecodeNextFrame() error {
	if r.pos >= r.desc.Duration {
		r.frame = r.frame[:0]
		return io.EOF
	}
	buf := r.frame[:cap(r.frame)]
	if _, err := io.ReadFull(r.data, buf); err != nil {
		r.frame = r.frame[:0]
		return services.Wrap(services.ErrConversion, "audio", "decode",
			fmt.Sprintf("%s frame %d", r.path, r.pos+1), err)
	}
	r.frame = buf
	r.pos++
	return nil
}

func (r *PCMReader) Reset() error {
	if _, err := r.data.Seek(0, io.SeekStart); err != nil {
		return services.Wrap(services.ErrConversion, "audio", "reset", r.path, err)
	}
	r.pos = 0
	r.frame = r.frame[:0]
	return nil
}

func (r *PCMReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

type wavFormat struct {
	channels   int
	sampleRate int
	blockAlign int
	bitDepth   int
}

// parseWAV walks the RIFF chunk list and returns the fmt description and the
// location of the data chunk. Unknown chunks are skipped.
func parseWAV(r io.ReaderAt, fileSize int64) (wavFormat, int64, int64, error) {
	var header [riffHeaderSize]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		return wavFormat{}, 0, 0, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return wavFormat{}, 0, 0, errors.New("not a RIFF/WAVE file")
	}

	var (
		format    wavFormat
		haveFmt   bool
		offset    = int64(riffHeaderSize)
		chunkHead [chunkHeaderSize]byte
	)
	for offset+chunkHeaderSize <= fileSize {
		if _, err := r.ReadAt(chunkHead[:], offset); err != nil {
			return wavFormat{}, 0, 0, fmt.Errorf("read chunk header at %d: %w", offset, err)
		}
		id := string(chunkHead[0:4])
		size := int64(binary.LittleEndian.Uint32(chunkHead[4:8]))
		body := offset + chunkHeaderSize

		switch id {
		case "fmt ":
			if size < 16 || body+size > fileSize {
				return wavFormat{}, 0, 0, fmt.Errorf("fmt chunk of %d bytes is truncated", size)
			}
			raw := make([]byte, size)
			if _, err := r.ReadAt(raw, body); err != nil {
				return wavFormat{}, 0, 0, fmt.Errorf("read fmt chunk: %w", err)
			}
			parsed, err := parseFormat(raw)
			if err != nil {
				return wavFormat{}, 0, 0, err
			}
			format, haveFmt = parsed, true
		case "data":
			if !haveFmt {
				return wavFormat{}, 0, 0, errors.New("data chunk precedes fmt chunk")
			}
			// Streaming writers leave the size unset; trust the file length.
			if body+size > fileSize {
				size = fileSize - body
			}
			return format, body, size, nil
		}
		offset = body + size + size%2
	}
	if !haveFmt {
		return wavFormat{}, 0, 0, errors.New("missing fmt chunk")
	}
	return wavFormat{}, 0, 0, errors.New("missing data chunk")
}

func parseFormat(raw []byte) (wavFormat, error) {
	tag := binary.LittleEndian.Uint16(raw[0:2])
	format := wavFormat{
		channels:   int(binary.LittleEndian.Uint16(raw[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(raw[4:8])),
		blockAlign: int(binary.LittleEndian.Uint16(raw[12:14])),
		bitDepth:   int(binary.LittleEndian.Uint16(raw[14:16])),
	}
	switch tag {
	case wavFormatPCM:
	case wavFormatExtensible:
		// cbSize(2) validBits(2) channelMask(4) subFormat(16)
		if len(raw) < 40 {
			return wavFormat{}, errors.New("extensible fmt chunk is truncated")
		}
		if !bytes.Equal(raw[24:40], ksdataformatSubtypePCM) {
			return wavFormat{}, errors.New("extensible sub-format is not integer PCM")
		}
	default:
		return wavFormat{}, fmt.Errorf("unsupported format tag 0x%04x", tag)
	}

	switch format.bitDepth {
	case 16, 24, 32:
	default:
		return wavFormat{}, fmt.Errorf("unsupported bit depth %d", format.bitDepth)
	}
	if format.channels <= 0 {
		return wavFormat{}, errors.New("channel count must be positive")
	}
	if format.sampleRate <= 0 {
		return wavFormat{}, errors.New("sample rate must be positive")
	}
	if want := format.channels * format.bitDepth / 8; format.blockAlign != want {
		return wavFormat{}, fmt.Errorf("block align %d does not match %d channels of %d bits", format.blockAlign, format.channels, format.bitDepth)
	}
	return format, nil
}
