package proto

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader yields the underlying data a few bytes at a time to exercise
// partial-frame buffering.
type chunkReader struct {
	data  []byte
	pos   int
	chunk int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.chunk
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func TestDecoderReadsFramesAcrossPartialReads(t *testing.T) {
	raw := `{"type":"SETNAME","name":"alice"}` + "\n" +
		`{"type":"JOINROOM","room":"Lobby"}` + "\n"
	dec := NewDecoder(&chunkReader{data: []byte(raw), chunk: 3})

	first, err := dec.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if first.Type != TypeSetName || first.Name != "alice" {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	second, err := dec.Next()
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if second.Type != TypeJoinRoom || second.Room != "Lobby" {
		t.Fatalf("unexpected second frame: %+v", second)
	}

	if _, err := dec.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	raw := "\n  \n" + `{"type":"LISTROOMSREQ"}` + "\n\n"
	dec := NewDecoder(strings.NewReader(raw))

	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if msg.Type != TypeListRoomsReq {
		t.Fatalf("unexpected frame: %+v", msg)
	}
	if _, err := dec.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestDecoderRejectsBadJSON(t *testing.T) {
	dec := NewDecoder(strings.NewReader("{not json}\n"))

	_, err := dec.Next()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecoderRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"MSG","message":"`)
	buf.Write(bytes.Repeat([]byte("x"), MaxFrameSize))
	buf.WriteString("\"}\n")

	dec := NewDecoder(&buf)
	_, err := dec.Next()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Encode(&Outbound{
		Type:    TypeMsg,
		From:    "alice",
		Room:    "Lobby",
		Message: "hi there",
		TS:      1700000000,
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Fatal("frame is not newline terminated")
	}

	dec := NewDecoder(&buf)
	got, err := dec.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != TypeMsg || got.Message != "hi there" || got.Room != "Lobby" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
