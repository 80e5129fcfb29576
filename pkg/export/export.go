package export

import (
	"fmt"
	"strings"
	"time"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Document is a rendered export ready to be streamed.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Exporter renders datasets in any supported format.
type Exporter struct {
	csv *CSVExporter
	pdf *PDFExporter
	now func() time.Time
}

// NewExporter wires the CSV and PDF renderers.
func NewExporter() *Exporter {
	return &Exporter{csv: NewCSVExporter(), pdf: NewPDFExporter(), now: time.Now}
}

// Render produces a document named after the title and the current UTC date.
func (e *Exporter) Render(format Format, data Dataset, title string) (*Document, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatPDF:
		body, err = e.pdf.Render(data, title)
	default:
		format = FormatCSV
		body, err = e.csv.Render(data)
	}
	if err != nil {
		return nil, err
	}

	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
	if slug == "" {
		slug = "export"
	}
	return &Document{
		Filename:    fmt.Sprintf("%s-%s.%s", slug, e.now().UTC().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
