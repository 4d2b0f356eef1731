package export

import (
	"errors"
	"fmt"
)

// Format names an output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Rendered is a document in one format, ready to serve or store.
type Rendered struct {
	Body        []byte
	ContentType string
	Ext         string
}

// Render produces doc in format f.
func Render(doc QuoteDocument, f Format) (Rendered, error) {
	switch f {
	case FormatPDF:
		b, err := GeneratePDF(doc)
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{Body: b, ContentType: "application/pdf", Ext: "pdf"}, nil
	case FormatXLSX:
		b, err := GenerateExcel(doc)
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{Body: b, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Ext: "xlsx"}, nil
	case FormatText:
		return Rendered{Body: []byte(PlainText(doc)), ContentType: "text/plain; charset=utf-8", Ext: "txt"}, nil
	default:
		return Rendered{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Filename is the download name for doc in format r.
func (r Rendered) Filename(doc QuoteDocument) string {
	name := doc.Number
	if name == "" {
		name = "quote"
	}
	return name + "." + r.Ext
}
