package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Sidecar formats.
const (
	FormatMsgpack = "msgpack"
	FormatJSON    = "json"
)

// SidecarExtension returns the file extension for a sidecar format.
func SidecarExtension(format string) string {
	if format == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// Encode writes data as JSON or MessagePack. MessagePack reuses the json
// struct tags so both encodings share field names.
func Encode(w io.Writer, data any, format string) error {
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(data)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown sidecar format %q", format)
	}
}

// Decode reads a sidecar written by Encode.
func Decode(r io.Reader, v any, format string) error {
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)
	default:
		return fmt.Errorf("unknown sidecar format %q", format)
	}
}

// WriteSidecar writes the summary to path in the given format.
func WriteSidecar(path string, s *Summary, format string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}
