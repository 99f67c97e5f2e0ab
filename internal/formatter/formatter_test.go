package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/groupscout/groupscout/internal/models"
)

func sampleItems() []models.DiscoveredItem {
	return []models.DiscoveredItem{
		{
			InternalID:  1,
			ExternalID:  "ext-1",
			Handle:      "alpha_chat",
			Title:       "Alpha",
			Description: "Short description",
			Kind:        models.KindGroup,
			MemberCount: 4200,
			Source:      "global",
		},
		{
			InternalID:  2,
			Title:       "Private group",
			Description: "No handle here",
			Kind:        models.KindChannel,
			MemberCount: 320,
		},
	}
}

func TestExportToTable(t *testing.T) {
	out := string(ExportToTable(sampleItems()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "seq\texternal_id\ttitle") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "alpha_chat") || !strings.Contains(lines[1], "https://t.me/alpha_chat") {
		t.Errorf("expected handle and link in first row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2\t") {
		t.Errorf("expected row numbering by view position: %q", lines[2])
	}

	fields := strings.Split(lines[2], "\t")
	if len(fields) != len(columns) {
		t.Fatalf("expected %d columns, got %d", len(columns), len(fields))
	}
	if fields[7] != "" {
		t.Errorf("items without a handle have no link, got %q", fields[7])
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleItems())
	if err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	out := string(data)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(columns, ",") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "4200") {
		t.Errorf("expected member count in row: %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	t.Run("long descriptions are cut at the rune limit", func(t *testing.T) {
		long := strings.Repeat("é", 200)
		got := truncate(long, descriptionLimit)
		if runes := []rune(got); len(runes) != descriptionLimit {
			t.Errorf("expected %d runes, got %d", descriptionLimit, len(runes))
		}
		if !strings.HasSuffix(got, "…") {
			t.Error("expected ellipsis suffix")
		}
	})

	t.Run("newlines are flattened", func(t *testing.T) {
		if got := truncate("a\nb", 10); got != "a b" {
			t.Errorf("expected newline flattened, got %q", got)
		}
	})

	t.Run("short descriptions pass through", func(t *testing.T) {
		if got := truncate("short", 10); got != "short" {
			t.Errorf("expected unchanged, got %q", got)
		}
	})
}

func TestLink(t *testing.T) {
	if got := Link(models.DiscoveredItem{Handle: "foo"}); got != "https://t.me/foo" {
		t.Errorf("unexpected link: %q", got)
	}
	if got := Link(models.DiscoveredItem{}); got != "" {
		t.Errorf("expected empty link without a handle, got %q", got)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes csv to the requested path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		got, err := WriteExport(sampleItems(), "csv", path)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if got != path {
			t.Errorf("expected path %q, got %q", path, got)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "seq,") {
			t.Errorf("unexpected file contents: %q", string(data)[:20])
		}
	})

	t.Run("empty format defaults to the text table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		if _, err := WriteExport(sampleItems(), "", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if !strings.Contains(string(data), "\t") {
			t.Error("expected tab-delimited output")
		}
	})

	t.Run("unknown formats are rejected", func(t *testing.T) {
		if _, err := WriteExport(sampleItems(), "xlsx", ""); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
