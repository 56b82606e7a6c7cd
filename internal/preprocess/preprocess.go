package preprocess

import (
	"regexp"
	"strings"

	"NetCmdLogParser/internal/models"
)

// Заголовок куска: "router1(10.0.0.1): show version"
var deviceHeaderRegex = regexp.MustCompile(`^(\S+)\s*\(([\d.]+)\):`)

// Chunk — кусок, готовый к разбору шаблоном
type Chunk struct {
	DeviceName string
	DeviceIP   string
	Text       string
}

// SplitLines режет содержимое на строки, сохраняя переводы строк
func SplitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Preprocess выделяет устройство из первой строки и вычищает эхо команд и служебные строки.
// Заголовок ищется только в первой строке; без него device_name/device_ip = "unknown".
func Preprocess(lines []string) Chunk {
	c := Chunk{DeviceName: models.UnknownDevice, DeviceIP: models.UnknownDevice}
	if len(lines) == 0 {
		return c
	}

	body := lines
	if m := deviceHeaderRegex.FindStringSubmatch(strings.TrimSpace(lines[0])); m != nil {
		c.DeviceName, c.DeviceIP = m[1], m[2]
		body = lines[1:]
	}

	var sb strings.Builder
	for _, line := range body {
		if noise(line) {
			continue
		}
		sb.WriteString(line)
	}
	c.Text = sb.String()
	return c
}

// noise — пустая строка, эхо команды (sh/show), артефакт фильтра "| no" или маркер device_name
func noise(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	switch {
	case l == "":
		return true
	case strings.HasPrefix(l, "sh"):
		return true
	case strings.Contains(l, "| no"):
		return true
	case strings.Contains(l, "device_name"):
		return true
	}
	return false
}
