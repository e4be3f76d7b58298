// Package dataset loads audit inputs from files exported by upstream
// model-serving or labelling pipelines.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// Default CSV column names.
const (
	DefaultPredictionColumn = "prediction"
	DefaultLabelColumn      = "label"
	DefaultGroupColumn      = "group"
)

var _ ports.DatasetLoader = (*CSVLoader)(nil)

// CSVLoader reads a dataset from a CSV file with a header row.
// Column names are matched case-insensitively; other columns are ignored.
type CSVLoader struct {
	PredictionColumn string
	LabelColumn      string
	// GroupColumn names the sensitive attribute.
	GroupColumn string
}

// NewCSVLoader returns a loader using the default column names.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{
		PredictionColumn: DefaultPredictionColumn,
		LabelColumn:      DefaultLabelColumn,
		GroupColumn:      DefaultGroupColumn,
	}
}

// Load implements ports.DatasetLoader.
func (l *CSVLoader) Load(ctx context.Context, path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, ports.NewDatasetError(path, 0, err)
	}
	defer f.Close()

	ds, err := l.Decode(ctx, f)
	if err != nil {
		var de *ports.DatasetError
		if errors.As(err, &de) {
			de.Path = path
			return domain.Dataset{}, de
		}
		return domain.Dataset{}, ports.NewDatasetError(path, 0, err)
	}
	ds.Name = datasetName(path)
	return ds, nil
}

// Decode reads CSV records from r. Values are converted to integers but not
// range-checked; the audit engine rejects non-binary values itself.
func (l *CSVLoader) Decode(ctx context.Context, r io.Reader) (domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Dataset{}, ports.NewDatasetError("", 1, fmt.Errorf("%w: missing header row", ports.ErrMalformedDataset))
		}
		return domain.Dataset{}, ports.NewDatasetError("", 1, fmt.Errorf("%w: %v", ports.ErrMalformedDataset, err))
	}

	predCol, labelCol, groupCol, err := l.columns(header)
	if err != nil {
		return domain.Dataset{}, ports.NewDatasetError("", 1, err)
	}

	var ds domain.Dataset
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Dataset{}, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, ports.NewDatasetError("", line, fmt.Errorf("%w: %v", ports.ErrMalformedDataset, err))
		}

		pred, err := parseCell(row[predCol], l.PredictionColumn)
		if err != nil {
			return domain.Dataset{}, ports.NewDatasetError("", line, err)
		}
		label, err := parseCell(row[labelCol], l.LabelColumn)
		if err != nil {
			return domain.Dataset{}, ports.NewDatasetError("", line, err)
		}

		ds.Predictions = append(ds.Predictions, pred)
		ds.Labels = append(ds.Labels, label)
		ds.Groups = append(ds.Groups, row[groupCol])
	}
	return ds, nil
}

func (l *CSVLoader) columns(header []string) (pred, label, group int, err error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%w: missing column %q", ports.ErrMalformedDataset, name)
		}
		return i, nil
	}

	if pred, err = lookup(l.PredictionColumn); err != nil {
		return
	}
	if label, err = lookup(l.LabelColumn); err != nil {
		return
	}
	group, err = lookup(l.GroupColumn)
	return
}

func parseCell(raw, column string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: column %q value %q is not an integer", ports.ErrMalformedDataset, column, raw)
	}
	return v, nil
}

// datasetName derives a dataset name from its file name.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
