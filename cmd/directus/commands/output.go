package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// table collects rows for tablewriter.
type table struct {
	headers []any
	rows    [][]any
}

func (t *table) header(columns ...any) {
	t.headers = columns
}

func (t *table) row(values ...any) {
	t.rows = append(t.rows, values)
}

func outputFormat() string {
	output := viper.GetString("output")
	if output == "" {
		return constants.FormatTable
	}

	return output
}

func validateOutput(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// render writes v as JSON or YAML, or fills and renders a table.
func render(w io.Writer, format string, v any, fill func(*table)) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v)
	case constants.FormatTable:
		t := &table{}
		fill(t)

		tw := tablewriter.NewWriter(w)
		tw.Header(t.headers...)

		for _, row := range t.rows {
			_ = tw.Append(row...)
		}

		if err := tw.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// recordsTable lays out free-form items with one column per field. Columns
// are the sorted union of all keys unless fields names them.
func recordsTable(records []map[string]any, fields []string) func(*table) {
	return func(t *table) {
		columns := fields
		if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
			columns = recordColumns(records)
		}

		headers := make([]any, 0, len(columns))
		for _, column := range columns {
			headers = append(headers, column)
		}

		t.header(headers...)

		for _, record := range records {
			row := make([]any, 0, len(columns))
			for _, column := range columns {
				row = append(row, cell(record[column]))
			}

			t.row(row...)
		}
	}
}

// propertiesTable lays out a single item as key/value rows.
func propertiesTable(record map[string]any) func(*table) {
	return func(t *table) {
		t.header("Property", "Value")

		for _, key := range recordColumns([]map[string]any{record}) {
			t.row(key, cell(record[key]))
		}
	}
}

func recordColumns(records []map[string]any) []string {
	seen := map[string]bool{}

	var columns []string

	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	sort.Strings(columns)

	return columns
}

func cell(value any) string {
	var s string

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		s = string(data)
	default:
		s = fmt.Sprint(v)
	}

	if len(s) > constants.StringTruncationLength {
		return s[:constants.StringTruncationLength-3] + "..."
	}

	return s
}

// toRecords converts typed values into generic records via JSON.
func toRecords(v any) ([]map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}

	var records []map[string]any

	err = json.Unmarshal(data, &records)
	if err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	return records, nil
}

func toRecord(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	var record map[string]any

	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	return record, nil
}

// readJSONInput parses data, or stdin when data is "-", into v.
func readJSONInput(data string, stdin io.Reader, v any) error {
	raw := []byte(data)

	if data == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}

		var err error

		raw, err = io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", constants.ErrInvalidJSONInput, err)
	}

	return nil
}
