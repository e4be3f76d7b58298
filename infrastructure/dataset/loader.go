package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// Supported input formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Loader dispatches to a format-specific loader chosen by an explicit
// format or by the file extension.
type Loader struct {
	// Format forces a format; empty selects by extension.
	Format string
	CSV    *CSVLoader
	JSON   *JSONLoader
}

var _ ports.DatasetLoader = (*Loader)(nil)

// NewLoader returns a Loader with default CSV and JSON loaders.
func NewLoader(format string) *Loader {
	return &Loader{
		Format: format,
		CSV:    NewCSVLoader(),
		JSON:   NewJSONLoader(),
	}
}

// Load implements ports.DatasetLoader.
func (l *Loader) Load(ctx context.Context, path string) (domain.Dataset, error) {
	format := strings.ToLower(l.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch format {
	case FormatCSV:
		return l.CSV.Load(ctx, path)
	case FormatJSON:
		return l.JSON.Load(ctx, path)
	default:
		return domain.Dataset{}, ports.NewDatasetError(path, 0, fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, format))
	}
}
