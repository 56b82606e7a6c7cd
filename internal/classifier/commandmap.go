package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Command — имя команды и её шаблоны имён файлов в порядке объявления
type Command struct {
	Name     string
	Patterns []string
}

// CommandMap — упорядоченное отображение команда → шаблоны.
// Порядок совпадает с порядком ключей в файле и определяет приоритет.
type CommandMap []Command

// LoadCommandMap читает commands_map (JSON или YAML — JSON является подмножеством YAML).
// Отсутствующий файл — пустая карта без ошибки; любая некорректная запись — ошибка загрузки.
func LoadCommandMap(path string) (CommandMap, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return CommandMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read commands map: %w", err)
	}
	return ParseCommandMap(data)
}

// ParseCommandMap разбирает содержимое карты, сохраняя порядок ключей
func ParseCommandMap(data []byte) (CommandMap, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return CommandMap{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse commands map: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return CommandMap{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("commands map: ожидается объект команда → список шаблонов (строка %d)", root.Line)
	}

	m := make(CommandMap, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if key.Kind != yaml.ScalarNode || name == "" {
			return nil, fmt.Errorf("commands map: пустое или составное имя команды (строка %d)", key.Line)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("commands map: команда %q объявлена повторно (строка %d)", name, key.Line)
		}
		seen[name] = struct{}{}

		patterns, err := decodePatterns(name, val)
		if err != nil {
			return nil, err
		}
		m = append(m, Command{Name: name, Patterns: patterns})
	}
	return m, nil
}

func decodePatterns(command string, val *yaml.Node) ([]string, error) {
	if val.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("commands map: %q: ожидается список шаблонов (строка %d)", command, val.Line)
	}
	patterns := make([]string, 0, len(val.Content))
	for _, item := range val.Content {
		if item.Kind != yaml.ScalarNode || item.Value == "" {
			return nil, fmt.Errorf("commands map: %q: пустой или составной шаблон (строка %d)", command, item.Line)
		}
		p := strings.ToLower(item.Value)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("commands map: %q: некорректный шаблон %q (строка %d)", command, item.Value, item.Line)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Names — имена команд в порядке приоритета
func (m CommandMap) Names() []string {
	out := make([]string, len(m))
	for i, c := range m {
		out[i] = c.Name
	}
	return out
}
