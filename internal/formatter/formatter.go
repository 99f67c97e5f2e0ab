// package formatter renders the filtered result view as delimited text
// tables (tab-separated or CSV) for export.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/groupscout/groupscout/internal/models"
)

// descriptionLimit truncates descriptions so exported rows stay one line.
const descriptionLimit = 80

var columns = []string{"seq", "external_id", "title", "handle", "kind", "members", "description", "link", "source"}

// row flattens one item into export columns.
func row(seq int, item models.DiscoveredItem) []string {
	return []string{
		strconv.Itoa(seq),
		item.ExternalID,
		item.Title,
		item.Handle,
		item.Kind.String(),
		strconv.Itoa(item.MemberCount),
		truncate(item.Description, descriptionLimit),
		Link(item),
		item.Source,
	}
}

// Link builds the public URL for an item, empty when it has no handle.
func Link(item models.DiscoveredItem) string {
	if item.Handle == "" {
		return ""
	}
	return "https://t.me/" + item.Handle
}

func truncate(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// ExportToTable renders items as a tab-delimited table with a header row.
func ExportToTable(items []models.DiscoveredItem) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(columns, "\t"))
	buf.WriteByte('\n')
	for i, item := range items {
		buf.WriteString(strings.Join(row(i+1, item), "\t"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ExportToCSV renders items as CSV with the same columns as the text table.
func ExportToCSV(items []models.DiscoveredItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for i, item := range items {
		if err := writer.Write(row(i+1, item)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteExport writes items to path in the requested format ("csv" or "txt").
// An empty path defaults to groupscout_export.{ext}. Returns the path
// written.
func WriteExport(items []models.DiscoveredItem, format, path string) (string, error) {
	var data []byte
	var err error

	switch format {
	case "csv":
		if path == "" {
			path = "groupscout_export.csv"
		}
		data, err = ExportToCSV(items)
		if err != nil {
			return "", err
		}
	case "txt", "":
		if path == "" {
			path = "groupscout_export.txt"
		}
		data = ExportToTable(items)
	default:
		return "", fmt.Errorf("unknown export format %q (use csv or txt)", format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
