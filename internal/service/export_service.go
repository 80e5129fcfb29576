package service

import (
	"time"

	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

// MaxExportRows caps the number of records a single log export renders.
const MaxExportRows = 10000

type documentRenderer interface {
	Render(format export.Format, data export.Dataset, title string) (*export.Document, error)
}

func parseExportFormat(raw string) (export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrBadRequest, err.Error())
	}
	return format, nil
}

func renderExport(renderer documentRenderer, format export.Format, data export.Dataset, title string) (*export.Document, error) {
	if renderer == nil {
		renderer = export.NewExporter()
	}
	doc, err := renderer.Render(format, data, title)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	return doc, nil
}

func exportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
