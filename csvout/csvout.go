// Package csvout serializes exported game records as CSV.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/use-agent/gamexport/models"
)

// Header is the first row of every export.
var Header = []string{"Title", "Rating"}

// Filename returns the export file name for username.
func Filename(username string) string {
	return username + "_games.csv"
}

// FormatRating renders a rating with at least one decimal place.
func FormatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Write writes the header and one row per record, in order.
func Write(w io.Writer, records []models.GameRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csvout: write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Title, FormatRating(r.Rating)}); err != nil {
			return fmt.Errorf("csvout: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvout: flush: %w", err)
	}
	return nil
}

// Save writes records to <dir>/<username>_games.csv and returns the path.
// Failures are returned as *models.ExportError with code WRITE_FAILED.
func Save(dir, username string, records []models.GameRecord) (path string, err error) {
	if dir == "" {
		dir = "."
	}
	path = filepath.Join(dir, Filename(username))

	f, err := os.Create(path)
	if err != nil {
		return path, models.NewExportError(models.ErrCodeWrite, "create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = models.NewExportError(models.ErrCodeWrite, "close "+path, cerr)
		}
	}()

	if err := Write(f, records); err != nil {
		return path, models.NewExportError(models.ErrCodeWrite, "write "+path, err)
	}
	return path, nil
}
