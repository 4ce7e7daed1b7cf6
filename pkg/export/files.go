package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/aidscope/pkg/mapstyle"
	"github.com/vanderheijden86/aidscope/pkg/table"
)

// writeFile creates path and its parent directory and hands the file to fn.
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveCSV writes t to path as CSV.
func SaveCSV(path string, t table.Table) error {
	return writeFile(path, t.WriteCSV)
}

// WritePaintJSON writes paint as indented JSON.
func WritePaintJSON(w io.Writer, paint *mapstyle.Paint) error {
	data, err := json.MarshalIndent(paint, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal paint: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// SavePaintJSON writes paint to path.
func SavePaintJSON(path string, paint *mapstyle.Paint) error {
	return writeFile(path, func(w io.Writer) error { return WritePaintJSON(w, paint) })
}

// SaveMarkdown writes a rendered summary to path.
func SaveMarkdown(path string, in SummaryInput) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, GenerateSummary(in))
		return err
	})
}
