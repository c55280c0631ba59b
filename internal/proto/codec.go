package proto

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single wire frame. It leaves room for a 5 MiB file
// payload after base64 inflation plus the JSON envelope.
const MaxFrameSize = 8 << 20

// ErrMalformed reports a frame that could not be parsed. The owning session
// is expected to close the connection on it.
var ErrMalformed = errors.New("malformed message")

// Decoder turns a byte stream into a sequence of Inbound messages. Frames
// are newline-delimited JSON objects; partial frames are buffered across
// reads.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps a stream reader.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), MaxFrameSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next complete message. It blocks until a full frame
// arrives, returns io.EOF on a clean end of stream, and ErrMalformed on
// frames that are oversized or not valid JSON.
func (d *Decoder) Next() (*Inbound, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var msg Inbound
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return &msg, nil
	}
	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrMalformed, MaxFrameSize)
		}
		return nil, err
	}
	return nil, io.EOF
}

// Encoder serializes Outbound messages onto a stream, one JSON object per
// line, each frame written with a single Write call.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps a stream writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one message frame.
func (e *Encoder) Encode(msg *Outbound) error {
	buf, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal outbound: %w", err)
	}
	buf = append(buf, '\n')
	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
