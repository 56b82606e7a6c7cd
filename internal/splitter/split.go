package splitter

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNoSeparator — ни один из кандидатов не встретился в тексте
var ErrNoSeparator = errors.New("no separator found")

// Маркеры, по которым кусок считается мусором (проверка по подстроке, без учёта регистра)
var rejectMarkers = []string{"invalid", "completed"}

// Piece — кусок выгрузки после нарезки.
// Ordinal — позиция среди кусков после первого до фильтрации (с 1),
// поэтому отброшенные куски оставляют пропуски в нумерации.
type Piece struct {
	Ordinal int
	Text    string
}

// runPatterns компилирует для каждого кандидата выражение "токен, повторённый один или более раз".
// Хвост из последнего символа токена входит в повтор: строка "_____" для "__" забирается целиком.
func runPatterns(candidates []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(c)
		expr := "(?:" + regexp.QuoteMeta(c) + ")+(?:" + regexp.QuoteMeta(string(last)) + ")*"
		res = append(res, regexp.MustCompile(expr))
	}
	return res
}

// longestRun возвращает самый длинный литеральный повтор среди всех кандидатов.
// При равной длине побеждает кандидат, раньше достигший максимума.
func longestRun(text string, patterns []*regexp.Regexp) string {
	longest := ""
	for _, re := range patterns {
		for _, m := range re.FindAllString(text, -1) {
			if len(m) > len(longest) {
				longest = m
			}
		}
	}
	return longest
}

// LongestSeparator — самый длинный повтор любого из кандидатов, "" если ничего не найдено
func LongestSeparator(text string, candidates []string) string {
	return longestRun(text, runPatterns(candidates))
}

// Normalize заменяет литеральный маркер переноса строки на настоящий \n
func Normalize(text, lineBreak string) string {
	if lineBreak == "" {
		return text
	}
	return strings.ReplaceAll(text, lineBreak, "\n")
}

// Split режет текст по самому длинному найденному разделителю.
// Первый фрагмент (до первого разделителя) отбрасывается всегда,
// остальные обрезаются по пробелам и фильтруются.
func Split(text string, candidates []string) (string, []Piece, error) {
	return splitWith(text, runPatterns(candidates))
}

func splitWith(text string, patterns []*regexp.Regexp) (string, []Piece, error) {
	sep := longestRun(text, patterns)
	if sep == "" {
		return "", nil, ErrNoSeparator
	}

	parts := strings.Split(text, sep)
	var pieces []Piece
	for i, part := range parts[1:] {
		cleaned := strings.TrimSpace(part)
		if rejected(cleaned) {
			continue
		}
		pieces = append(pieces, Piece{Ordinal: i + 1, Text: cleaned})
	}
	return sep, pieces, nil
}

// rejected — пустой кусок или кусок с маркером ошибки/завершения команды
func rejected(cleaned string) bool {
	if cleaned == "" {
		return true
	}
	low := strings.ToLower(cleaned)
	for _, m := range rejectMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}
