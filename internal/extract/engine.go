package extract

import (
	"fmt"
	"strings"

	"github.com/sirikothe/gotextfsm"
)

// Engine — внешний движок сопоставления шаблонов.
// Возвращает заголовок (имена полей) и строки значений, выровненные по заголовку.
type Engine interface {
	Match(template, text string) (header []string, rows [][]string, err error)
}

// TextFSMEngine — движок на gotextfsm (шаблоны ntc-templates)
type TextFSMEngine struct{}

func NewTextFSMEngine() *TextFSMEngine { return &TextFSMEngine{} }

func (TextFSMEngine) Match(template, text string) ([]string, [][]string, error) {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(template); err != nil {
		return nil, nil, fmt.Errorf("parse template: %w", err)
	}
	out := gotextfsm.ParserOutput{}
	if err := out.ParseTextString(text, fsm, true); err != nil {
		return nil, nil, fmt.Errorf("parse text: %w", err)
	}

	header := templateHeader(template)
	rows := make([][]string, 0, len(out.Dict))
	for _, rec := range out.Dict {
		row := make([]string, len(header))
		for i, name := range header {
			row[i] = stringify(rec[name])
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// templateHeader — имена Value в порядке объявления, только из начального блока до первой пустой строки.
// Формат строки: Value [Опции] Имя (регулярка)
func templateHeader(template string) []string {
	var header []string
	for _, line := range strings.Split(template, "\n") {
		line = strings.TrimSpace(line)
		// блок Value заканчивается первой пустой строкой
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, "Value ") {
			continue
		}
		decl := line
		if i := strings.Index(decl, "("); i >= 0 {
			decl = decl[:i]
		}
		fields := strings.Fields(decl)
		if len(fields) < 2 {
			continue
		}
		header = append(header, fields[len(fields)-1])
	}
	return header
}

// stringify приводит значение к строке; списки (List) — в виде ['a', 'b']
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = "'" + s + "'"
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case []interface{}:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = "'" + fmt.Sprint(s) + "'"
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}
