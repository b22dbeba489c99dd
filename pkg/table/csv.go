package table

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

const utf8BOM = "\ufeff"

// ReadCSV decodes comma-separated input into a Table. The first record is
// the header. A leading UTF-8 byte order mark is stripped and leading
// whitespace in cells is trimmed.
//
// ReadCSV returns a SCHEMA_ERROR for empty input, malformed quoting, or any
// of the conditions rejected by [New]. It does not close r.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // ragged rows are reported by New with row numbers

	records, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, gerrors.Wrap(gerrors.ErrCodeSchema, err, "malformed csv at line %d", perr.Line)
		}
		return nil, gerrors.Wrap(gerrors.ErrCodeSchema, err, "read csv")
	}
	if len(records) == 0 {
		return nil, gerrors.New(gerrors.ErrCodeSchema, "csv input is empty")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return New(header, records[1:])
}
