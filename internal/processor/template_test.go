package processor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/discq/internal/models"
)

func TestDefaultTemplate(t *testing.T) {
	template := DefaultTemplate()

	if verr := template.Validate(); verr != nil {
		t.Fatalf("embedded template failed validation: %v", verr)
	}

	if len(template.Columns()) != 30 {
		t.Errorf("expected 30 columns, got %d", len(template.Columns()))
	}
}

func TestLoadTemplate(t *testing.T) {
	t.Run("rejects a one-row document", func(t *testing.T) {
		if _, err := LoadTemplate(strings.NewReader("a,b,c\n")); err == nil {
			t.Error("expected an error without a defaults row")
		}
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		if _, err := LoadTemplate(strings.NewReader("a,b,c\n1,2\n")); err == nil {
			t.Error("expected an error for mismatched field counts")
		}
	})

	t.Run("defers schema validation to render", func(t *testing.T) {
		template, err := LoadTemplate(strings.NewReader("Nope\nvalue\n"))
		if err != nil {
			t.Fatalf("LoadTemplate: %v", err)
		}

		release := models.Release{ID: 1, Artist: "A", Title: "T", URL: "u"}

		// a broken template fails every render, not just the first
		for i := 0; i < 2; i++ {
			_, err := template.Render([]models.Release{release})
			var terr *TemplateError
			if !errors.As(err, &terr) {
				t.Fatalf("render %d: expected TemplateError, got %v", i, err)
			}
			if len(terr.Missing) == 0 {
				t.Errorf("render %d: expected missing columns reported", i)
			}
		}
	})
}

func TestValidateTemplate(t *testing.T) {
	t.Run("reports missing data columns", func(t *testing.T) {
		header := strings.Join(templateSchema[:len(templateSchema)-2], ",")
		defaults := strings.Repeat(",", len(templateSchema)-3)

		template, err := LoadTemplate(strings.NewReader(header + "\n" + defaults + "\n"))
		if err != nil {
			t.Fatalf("LoadTemplate: %v", err)
		}

		verr := template.Validate()
		if verr == nil {
			t.Fatal("expected a TemplateError")
		}

		missing := strings.Join(verr.Missing, ",")
		if !strings.Contains(missing, ColContent) || !strings.Contains(missing, ColFileName) {
			t.Errorf("expected Content and FileName reported missing, got %v", verr.Missing)
		}
	})

	t.Run("accepts reordered columns", func(t *testing.T) {
		cols := make([]string, len(templateSchema))
		copy(cols, templateSchema)
		cols[0], cols[len(cols)-1] = cols[len(cols)-1], cols[0]

		header := strings.Join(cols, ",")
		defaults := strings.Repeat(",", len(cols)-1)

		template, err := LoadTemplate(strings.NewReader(header + "\n" + defaults + "\n"))
		if err != nil {
			t.Fatalf("LoadTemplate: %v", err)
		}

		if verr := template.Validate(); verr != nil {
			t.Errorf("expected reordered template to validate, got %v", verr)
		}
	})
}

func TestRender(t *testing.T) {
	template := DefaultTemplate()

	releases := []models.Release{
		{ID: 42, Artist: "SOHN", Title: "Albadas", Year: 2023, URL: "https://www.discogs.com/release/42"},
		{ID: 7, Artist: "Burial", Title: "Untrue", Year: 0, URL: "https://www.discogs.com/release/7"},
	}

	out, err := template.Render(releases)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	t.Run("fills the data columns", func(t *testing.T) {
		row := records[1]
		if got := row[index[ColBottomText]]; got != "SOHN – Albadas [2023]" {
			t.Errorf("unexpected BottomText %q", got)
		}
		if got := row[index[ColContent]]; got != "https://www.discogs.com/release/42" {
			t.Errorf("unexpected Content %q", got)
		}
		if got := row[index[ColFileName]]; got != "42" {
			t.Errorf("unexpected FileName %q", got)
		}
	})

	t.Run("omits the year when unknown", func(t *testing.T) {
		row := records[2]
		if got := row[index[ColBottomText]]; got != "Burial – Untrue" {
			t.Errorf("unexpected BottomText %q", got)
		}
	})

	t.Run("copies the defaults into constant columns", func(t *testing.T) {
		row := records[1]
		if got := row[index["Type"]]; got != "URL" {
			t.Errorf("unexpected Type %q", got)
		}
		if got := row[index["OutputSize"]]; got != "1024" {
			t.Errorf("unexpected OutputSize %q", got)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		again, err := template.Render(releases)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !bytes.Equal(out, again) {
			t.Error("expected identical output for identical input")
		}
	})

	t.Run("quotes fields containing commas", func(t *testing.T) {
		quoted, err := template.Render([]models.Release{
			{ID: 9, Artist: "Crosby, Stills & Nash", Title: "So Begins the Task", Year: 1971, URL: "u"},
		})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		if !strings.Contains(string(quoted), `"Crosby, Stills & Nash – So Begins the Task [1971]"`) {
			t.Error("expected the comma field to be quoted")
		}

		records, err := csv.NewReader(bytes.NewReader(quoted)).ReadAll()
		if err != nil {
			t.Fatalf("quoted output is not valid CSV: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)
	if got := ExportFilename(now); got != "discogs_collection_20240601_150405.csv" {
		t.Errorf("unexpected filename %s", got)
	}
}
