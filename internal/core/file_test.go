package core

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func encode(n int) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x2a}, n))
}

func TestValidateFileSizeCeiling(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		wantCode string
	}{
		{name: "one byte", size: 1},
		{name: "exactly at ceiling", size: MaxFileSize},
		{name: "one byte over", size: MaxFileSize + 1, wantCode: ErrCodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, cerr := ValidateFile("data.bin", encode(tt.size), MaxFileSize)
			if tt.wantCode == "" {
				if cerr != nil {
					t.Fatalf("unexpected error: %+v", cerr)
				}
				if payload.Size != int64(tt.size) {
					t.Fatalf("expected size %d, got %d", tt.size, payload.Size)
				}
				return
			}
			if cerr == nil || cerr.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %+v", tt.wantCode, cerr)
			}
		})
	}
}

func TestValidateFileRejectsBadFilenames(t *testing.T) {
	data := encode(4)
	tests := []struct {
		name     string
		filename string
	}{
		{name: "empty", filename: ""},
		{name: "whitespace", filename: "   "},
		{name: "slash", filename: "dir/file.txt"},
		{name: "backslash", filename: `dir\file.txt`},
		{name: "traversal", filename: "..file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := ValidateFile(tt.filename, data, MaxFileSize)
			if cerr == nil || cerr.Code != ErrCodeMalformedPayload {
				t.Fatalf("expected malformed_payload, got %+v", cerr)
			}
		})
	}
}

func TestValidateFileRejectsBadBase64(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "bad length", data: "abc"},
		{name: "bad chars", data: "????"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := ValidateFile("f.bin", tt.data, MaxFileSize)
			if cerr == nil || cerr.Code != ErrCodeMalformedPayload {
				t.Fatalf("expected malformed_payload, got %+v", cerr)
			}
		})
	}
}

func TestValidateFileTrimsFilename(t *testing.T) {
	payload, cerr := ValidateFile("  notes.txt  ", encode(3), MaxFileSize)
	if cerr != nil {
		t.Fatalf("unexpected error: %+v", cerr)
	}
	if payload.Filename != "notes.txt" {
		t.Fatalf("expected trimmed filename, got %q", payload.Filename)
	}
}
