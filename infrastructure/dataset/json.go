package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// datasetSchema describes the JSON document accepted by JSONLoader. Value
// ranges are left to the audit engine so that its error kinds reach the
// caller unchanged.
const datasetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["predictions", "labels", "groups"],
  "properties": {
    "name":        {"type": "string"},
    "predictions": {"type": "array", "items": {"type": "integer"}},
    "labels":      {"type": "array", "items": {"type": "integer"}},
    "groups":      {"type": "array", "items": {"type": ["string", "number", "boolean"]}}
  },
  "additionalProperties": true
}`

var schemaLoader = gojsonschema.NewStringLoader(datasetSchema)

var _ ports.DatasetLoader = (*JSONLoader)(nil)

// JSONLoader reads a dataset from a JSON document of the form
//
//	{"name": "...", "predictions": [...], "labels": [...], "groups": [...]}
//
// Group labels may be strings, numbers, or booleans; non-string labels are
// converted to their JSON text. A document mixing string and non-string
// labels is rejected, since 2 and "2" would otherwise become one group.
type JSONLoader struct{}

// NewJSONLoader returns a JSONLoader.
func NewJSONLoader() *JSONLoader { return &JSONLoader{} }

// Load implements ports.DatasetLoader.
func (l *JSONLoader) Load(ctx context.Context, path string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, ports.NewDatasetError(path, 0, err)
	}

	ds, err := l.Decode(data)
	if err != nil {
		return domain.Dataset{}, ports.NewDatasetError(path, 0, err)
	}
	if ds.Name == "" {
		ds.Name = datasetName(path)
	}
	return ds, nil
}

// Decode validates data against the dataset schema and decodes it.
func (l *JSONLoader) Decode(data []byte) (domain.Dataset, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %v", ports.ErrMalformedDataset, err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return domain.Dataset{}, fmt.Errorf("%w: %s", ports.ErrMalformedDataset, strings.Join(errs, "; "))
	}

	var doc struct {
		Name        string            `json:"name"`
		Predictions []int             `json:"predictions"`
		Labels      []int             `json:"labels"`
		Groups      []json.RawMessage `json:"groups"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %v", ports.ErrMalformedDataset, err)
	}

	groups := make([]string, len(doc.Groups))
	firstString, firstOther := -1, -1
	for i, raw := range doc.Groups {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			groups[i] = s
			if firstString < 0 {
				firstString = i
			}
			continue
		}
		groups[i] = string(bytes.TrimSpace(raw))
		if firstOther < 0 {
			firstOther = i
		}
	}
	if firstString >= 0 && firstOther >= 0 {
		return domain.Dataset{}, fmt.Errorf("%w: groups mix string and non-string labels (index %d is a string, index %d is not)",
			ports.ErrMalformedDataset, firstString, firstOther)
	}

	return domain.Dataset{
		Name:        doc.Name,
		Predictions: doc.Predictions,
		Labels:      doc.Labels,
		Groups:      groups,
	}, nil
}
