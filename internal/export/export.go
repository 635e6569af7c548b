// Package export persists result frames as CSV files and loads external
// CSVs back into the shell's last-output slot.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/volsuite/volsuite/internal/table"
)

// Manager writes CSV files into the configured export folder.
type Manager struct {
	folder string
}

// NewManager returns a manager rooted at folder.
func NewManager(folder string) *Manager {
	return &Manager{folder: folder}
}

// Folder returns the export folder path.
func (m *Manager) Folder() string {
	return m.folder
}

// WriteFrame saves the frame as CSV inside the export folder and returns
// the full path written. An empty name falls back to the frame's default
// filename built from its metadata tags; the .csv extension is added when
// missing.
func (m *Manager) WriteFrame(f *table.Frame, name string) (string, error) {
	if f == nil {
		return "", fmt.Errorf("no data to export")
	}

	if name == "" {
		name = f.Meta.DefaultFilename()
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		name += ".csv"
	}

	path := filepath.Join(m.folder, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(f.Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range f.Rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return path, nil
}

// ReadFrame loads an external CSV into a frame. The first record becomes
// the column header. Metadata tags are recovered from the conventional
// filename when it parses, otherwise the frame is tagged as imported.
func ReadFrame(path string) (*table.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv file %q", path)
	}

	f := table.New(metaFromFilename(path), records[0]...)
	for _, record := range records[1:] {
		f.Append(record...)
	}
	return f, nil
}

// metaFromFilename inverts the ticker_datatype_period naming convention.
// Datatypes may themselves contain underscores, so the first part is the
// ticker, the last the period, everything between the datatype.
func metaFromFilename(path string) table.Meta {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return table.Meta{Ticker: base, Period: "imported", Datatype: "imported"}
	}
	return table.Meta{
		Ticker:   parts[0],
		Period:   parts[len(parts)-1],
		Datatype: strings.Join(parts[1:len(parts)-1], "_"),
	}
}
