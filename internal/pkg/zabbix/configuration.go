package zabbix

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

const (
	MethodConfigurationImport = "configuration.import"

	FormatXML  = "xml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrImportRejected = errors.New("zabbix did not accept the configuration import")

// ImportRules maps a section to its merge policy
// (createMissing, updateExisting, deleteMissing).
type ImportRules map[string]map[string]bool

// TemplateImportRules returns the merge policy applied to every template import.
func TemplateImportRules() ImportRules {
	return ImportRules{
		"applications": {"createMissing": true, "deleteMissing": false},
		"templates":    {"createMissing": true, "updateExisting": true},
		"screens":      {"createMissing": true, "updateExisting": true},
		"valueMaps":    {"createMissing": true, "updateExisting": false},
		"graphs":       {"createMissing": true, "updateExisting": true, "deleteMissing": true},
		"triggers":     {"createMissing": true, "updateExisting": true, "deleteMissing": true},
		"items":        {"createMissing": true, "updateExisting": true, "deleteMissing": true},
	}
}

type importParams struct {
	Format string      `json:"format"`
	Rules  ImportRules `json:"rules"`
	Source string      `json:"source"`
}

// FormatFromPath picks the import format from the file extension, xml by default.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

// ImportConfiguration submits a configuration document with the template import rules.
func (c *Client) ImportConfiguration(ctx context.Context, token string, format string, source string) error {
	var accepted bool
	params := importParams{
		Format: format,
		Rules:  TemplateImportRules(),
		Source: source,
	}
	if err := c.Call(ctx, MethodConfigurationImport, params, token, &accepted); err != nil {
		return err
	}
	if !accepted {
		return ErrImportRejected
	}
	return nil
}
