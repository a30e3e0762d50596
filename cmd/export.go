package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/processor"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/desertthunder/discq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// editsFile is the on-disk shape of the --edits JSON document, keyed by
// release id. Absent fields leave the fetched value untouched.
type editsFile map[string]struct {
	Artist *string `json:"artist"`
	Title  *string `json:"title"`
	URL    *string `json:"url"`
}

// Export renders the selected releases to a QR Factory CSV file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	folderID := cmd.Int("folder")
	cached := cmd.Bool("cached")
	toStdout := cmd.Bool("stdout")

	criterion, err := r.resolveCriterion(cmd.String("sort"))
	if err != nil {
		return err
	}

	selected, err := parseIDs(cmd.String("ids"))
	if err != nil {
		return err
	}

	edits, err := loadEdits(cmd.String("edits"))
	if err != nil {
		return err
	}

	template, err := r.loadTemplate(cmd.String("template"))
	if err != nil {
		return err
	}

	if !cached {
		if err := r.ensureAuthenticated(ctx); err != nil {
			return err
		}
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := r.engine.Export(ctx, progress, tasks.ExportOptions{
		FolderID:    int64(folderID),
		SelectedIDs: selected,
		Criterion:   criterion,
		Edits:       edits,
		Template:    template,
		Cached:      cached,
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	for _, v := range result.Skipped {
		r.writePlain("⚠ Skipped: %v\n", v)
	}

	if toStdout {
		_, err := r.output.Write(result.CSV)
		return err
	}

	outPath, err := r.resolveOutputPath(cmd.String("output"), result.Filename)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, result.CSV, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	r.writePlainln("✓ Export complete")
	r.writePlain("Folder: %s\n", result.Folder.Name)
	r.writePlain("Rows: %d (%d skipped)\n", result.Rendered, len(result.Skipped))
	r.writePlain("File: %s\n", outPath)

	return nil
}

// loadTemplate reads the template from the flag, the configured path, or
// falls back to the embedded default.
func (r *Runner) loadTemplate(flag string) (*processor.Template, error) {
	path := flag
	if path == "" {
		path = r.config.Export.TemplatePath
	}
	if path == "" {
		return nil, nil
	}

	template, err := processor.LoadTemplateFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return template, nil
}

// resolveOutputPath treats output as a file path when it ends in .csv,
// otherwise as a directory receiving the timestamped filename.
func (r *Runner) resolveOutputPath(output, filename string) (string, error) {
	if output == "" {
		output = r.config.Export.OutputDir
	}
	if output == "" {
		output = "."
	}

	if strings.HasSuffix(output, ".csv") {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		return output, nil
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(output, filename), nil
}

func parseIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid release id %q", shared.ErrInvalidFlag, part)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func loadEdits(path string) (map[int64]models.FieldOverride, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edits file: %w", err)
	}

	var file editsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse edits file: %w", err)
	}

	edits := make(map[int64]models.FieldOverride, len(file))
	for key, value := range file {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid release id %q in edits file", shared.ErrInvalidInput, key)
		}
		edits[id] = models.FieldOverride{Artist: value.Artist, Title: value.Title, URL: value.URL}
	}

	return edits, nil
}
