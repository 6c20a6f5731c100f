package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ExportDocument is the one-way snapshot handed to a file-save collaborator.
type ExportDocument struct {
	Entries      []database.Entry `json:"entries" yaml:"entries"`
	Stats        database.Stats   `json:"stats" yaml:"stats"`
	Achievements []string         `json:"achievements" yaml:"achievements"`
	ExportDate   time.Time        `json:"exportDate" yaml:"exportDate"`
}

// FileName is the suggested download name, e.g. archivo_realidad_2026-10-19.json.
func (d ExportDocument) FileName(format ExportFormat) string {
	if format == "" {
		format = FormatJSON
	}
	return fmt.Sprintf("archivo_realidad_%s.%s", d.ExportDate.UTC().Format(utils.DateLayout), format)
}

func (d ExportDocument) Encode(format ExportFormat) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		return yaml.Marshal(d)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, format)
	}
}
