package classifier

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Classifier определяет команду по имени файла
type Classifier struct {
	commands  CommandMap
	extension string
}

// New — extension отрезается от имени файла перед сравнением (обычно ".log")
func New(commands CommandMap, extension string) *Classifier {
	return &Classifier{commands: commands, extension: strings.ToLower(extension)}
}

// Classify возвращает первую команду, чей шаблон совпал с именем файла.
// Сравнение без учёта регистра; команды и шаблоны перебираются в порядке объявления.
func (c *Classifier) Classify(filename string) (string, bool) {
	name := strings.TrimSuffix(strings.ToLower(filename), c.extension)
	for _, cmd := range c.commands {
		for _, p := range cmd.Patterns {
			if ok, _ := doublestar.Match(strings.ToLower(p), name); ok {
				return cmd.Name, true
			}
		}
	}
	return "", false
}

// Classify — то же без создания Classifier
func Classify(filename string, commands CommandMap, extension string) (string, bool) {
	return New(commands, extension).Classify(filename)
}
