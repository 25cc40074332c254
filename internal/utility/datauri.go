package utility

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURI is returned for strings not shaped like data:<mimetype>;base64,<data>.
var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI is a parsed base64 data URI.
type DataURI struct {
	MimeType string
	// Data is the still-encoded base64 payload.
	Data string
}

// ParseDataURI splits "data:<mimetype>;base64,<data>" into its parts.
// The payload is checked to be valid base64 but is not decoded.
func ParseDataURI(s string) (DataURI, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: only base64 encoding is supported", ErrInvalidDataURI)
	}
	if mimeType == "" || !strings.Contains(mimeType, "/") {
		return DataURI{}, fmt.Errorf("%w: bad mime type %q", ErrInvalidDataURI, mimeType)
	}
	if payload == "" {
		return DataURI{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return DataURI{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return DataURI{MimeType: mimeType, Data: payload}, nil
}

// String renders the URI back to its textual form.
func (d DataURI) String() string {
	return "data:" + d.MimeType + ";base64," + d.Data
}

// EncodeDataURI builds a data URI from raw bytes.
func EncodeDataURI(mimeType string, b []byte) string {
	return DataURI{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(b)}.String()
}
