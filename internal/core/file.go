package core

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MaxFileSize is the default ceiling on the decoded size of a file payload.
const MaxFileSize = 5 << 20

// FilePayload is a validated file attachment.
type FilePayload struct {
	Filename string
	Data     string // base64
	Size     int64  // decoded size in bytes
}

// ValidateFile checks a base64 file payload against the size ceiling and
// filename rules. The ceiling applies to the decoded (pre-encoding) size.
func ValidateFile(filename, data string, maxBytes int64) (*FilePayload, *CoreError) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return nil, coreError(ErrCodeMalformedPayload, "Filename is required.")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, coreError(ErrCodeMalformedPayload, "Filename must not contain path elements.")
	}
	if data == "" {
		return nil, coreError(ErrCodeMalformedPayload, "File data is required.")
	}
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}

	// Standard base64 is 4 chars per 3 bytes; figure the decoded size from
	// the encoded length before paying for a full decode.
	if len(data)%4 != 0 {
		return nil, coreError(ErrCodeMalformedPayload, "File data is not valid base64.")
	}
	size := int64(len(data)) / 4 * 3
	if strings.HasSuffix(data, "==") {
		size -= 2
	} else if strings.HasSuffix(data, "=") {
		size--
	}
	if size > maxBytes {
		return nil, coreError(ErrCodePayloadTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit.", maxBytes))
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, coreError(ErrCodeMalformedPayload, "File data is not valid base64.")
	}
	if int64(len(decoded)) > maxBytes {
		return nil, coreError(ErrCodePayloadTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit.", maxBytes))
	}

	return &FilePayload{
		Filename: name,
		Data:     data,
		Size:     int64(len(decoded)),
	}, nil
}
