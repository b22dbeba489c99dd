package render

import (
	"slices"
	"strings"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

// Output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatMsgpack}

// Backend encodes a scene graph in one output format.
type Backend interface {
	Render(g *scene.Graph) ([]byte, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(g *scene.Graph) ([]byte, error)

func (f BackendFunc) Render(g *scene.Graph) ([]byte, error) { return f(g) }

// For returns the backend for format with default options.
func For(format string) (Backend, error) {
	switch strings.ToLower(format) {
	case FormatSVG:
		return NewSVG(), nil
	case FormatPNG:
		return NewPNG(), nil
	case FormatJSON:
		return BackendFunc(scene.MarshalJSON), nil
	case FormatMsgpack:
		return BackendFunc(scene.MarshalMsgpack), nil
	}
	return nil, gerrors.New(gerrors.ErrCodeInvalidFormat,
		"unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Supported reports whether format names a known output format.
func Supported(format string) bool {
	return slices.Contains(Formats, strings.ToLower(format))
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatMsgpack:
		return "application/msgpack"
	}
	return "application/octet-stream"
}
