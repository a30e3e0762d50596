package processor

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/discq/internal/models"
)

//go:embed templates/qrfactory_collection.csv
var defaultTemplateCSV []byte

// Data columns populated per release; every other column carries the
// template's constant default.
const (
	ColBottomText = "BottomText"
	ColContent    = "Content"
	ColFileName   = "FileName"
)

// templateSchema is the agreed QR Factory batch header set. Column order
// is taken from the template file; only the set is pinned, so a reordered
// template still renders while a renamed or missing column is rejected.
var templateSchema = []string{
	"Type", "OutputSize", "FileType", "ColorSpace", "RotationAngle",
	"ReliabilityLevel", "UseAutoReliabilityLevel", "PixelRoundness",
	"PixelColorType", "BackgroundColorType", "BackgroundColor",
	"PixelColorStart", "PixelColorEnd", "GradientAngle", "IconPath",
	"IconLockToSquares", "IconSizePercent", "IconBorderType",
	"IconBorderPercent", "IconBorderSquareCornerSize", "IconBorderColor",
	ColBottomText, "BottomTextSize", "BottomTextColor", "BottomTextFont",
	"BottomTextFontStyle", "SafeZonePercent", "SafeZoneColor",
	ColContent, ColFileName,
}

// TemplateError reports a template resource the downstream QR tool could
// not consume. It is a config/deployment defect, not user error, and
// fails every render until the template is fixed.
type TemplateError struct {
	Missing    []string
	Unexpected []string
}

func (e *TemplateError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected columns: %s", strings.Join(e.Unexpected, ", ")))
	}
	return "csv template does not match the QR Factory schema: " + strings.Join(parts, "; ")
}

// Template is the parsed two-row QR Factory batch template: a header row
// naming the columns and a defaults row with the constant value for each.
type Template struct {
	columns  []string
	defaults []string
	index    map[string]int
}

// LoadTemplate parses a template from r. Syntax errors (not two rows,
// ragged rows) surface here; schema validation is deferred to
// [Template.Validate] so a malformed header fails every render call.
func LoadTemplate(r io.Reader) (*Template, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read template header: %w", err)
	}
	defaults, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read template defaults row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	return &Template{columns: header, defaults: defaults, index: index}, nil
}

// LoadTemplateFile loads a template from disk.
func LoadTemplateFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return LoadTemplate(f)
}

// DefaultTemplate returns the embedded QR Factory template.
func DefaultTemplate() *Template {
	t, err := LoadTemplate(bytes.NewReader(defaultTemplateCSV))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded template: %v", err))
	}
	return t
}

// Columns returns the template's column names in template order.
func (t *Template) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Validate checks the header set against the agreed schema and that every
// data column is present. Returns nil when the template is usable.
func (t *Template) Validate() *TemplateError {
	want := make(map[string]bool, len(templateSchema))
	for _, name := range templateSchema {
		want[name] = true
	}

	verr := &TemplateError{}
	for _, name := range t.columns {
		if !want[name] {
			verr.Unexpected = append(verr.Unexpected, name)
		}
		delete(want, name)
	}
	for name := range want {
		verr.Missing = append(verr.Missing, name)
	}
	sort.Strings(verr.Missing)

	if len(verr.Missing) > 0 || len(verr.Unexpected) > 0 {
		return verr
	}
	return nil
}

// Render writes the header row once and one row per release, in the order
// the caller supplies. Constant columns are copied verbatim from the
// defaults row; the three data columns are computed per release. Output
// is deterministic and RFC 4180 quoted.
//
// Callers are expected to have validated the releases; Render does not
// re-validate or re-sort.
func (t *Template) Render(releases []models.Release) ([]byte, error) {
	if verr := t.Validate(); verr != nil {
		return nil, verr
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(t.columns))
	for _, r := range releases {
		copy(row, t.defaults)
		row[t.index[ColBottomText]] = BottomText(r)
		row[t.index[ColContent]] = r.URL
		row[t.index[ColFileName]] = strconv.FormatInt(r.ID, 10)

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// BottomText formats the label line printed under each QR code. The year
// is omitted when unknown.
func BottomText(r models.Release) string {
	if r.KnownYear() {
		return fmt.Sprintf("%s – %s [%d]", r.Artist, r.Title, r.Year)
	}
	return fmt.Sprintf("%s – %s", r.Artist, r.Title)
}

// ExportFilename builds a per-export unique download name so repeated
// exports never overwrite each other.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("discogs_collection_%s.csv", now.Format("20060102_150405"))
}
