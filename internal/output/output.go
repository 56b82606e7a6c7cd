package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"NetCmdLogParser/internal/models"
)

// Written — итог записи одного файла команды
type Written struct {
	Command string
	Path    string
	Count   int
}

// FileName — {команда, пробелы → _}_output.json
func FileName(command string) string {
	return strings.ReplaceAll(command, " ", "_") + "_output.json"
}

// WriteJSON пишет по одному JSON-массиву на каждую команду с записями.
// Команды без записей файла не получают.
func WriteJSON(dir string, rs *models.ResultSet) ([]Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []Written
	for _, cmd := range rs.Commands() {
		recs := rs.Records(cmd)
		if len(recs) == 0 {
			continue
		}
		bs, err := encode(recs)
		if err != nil {
			return written, fmt.Errorf("marshal %q: %w", cmd, err)
		}
		path := filepath.Join(dir, FileName(cmd))
		if err := os.WriteFile(path, bs, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, Written{Command: cmd, Path: path, Count: len(recs)})
	}
	return written, nil
}

// encode — массив с отступом в 2 пробела, без экранирования <, > и &
func encode(recs []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
