package models

import "time"

// Служебные поля, которые добавляются к каждой записи после разбора.
// Они всегда перезаписывают одноимённые поля из шаблона.
const (
	FieldRaw        = "raw"
	FieldSourceFile = "source_file"
	FieldDeviceName = "device_name"
	FieldDeviceIP   = "device_ip"
	FieldTimestamp  = "timestamp"
)

// TimestampLayout — формат поля timestamp (точность до минуты)
const TimestampLayout = "2006-01-02 15:04"

// UnknownDevice — значение device_name/device_ip, если в куске нет заголовка устройства
const UnknownDevice = "unknown"

// Record — одна строка, разобранная шаблоном: имя поля → строковое значение
type Record map[string]string

// Provenance — откуда взялась запись
type Provenance struct {
	SourceFile string // путь относительно корня сканирования
	DeviceName string
	DeviceIP   string
	Timestamp  string
}

// Enrich добавляет служебные поля. raw — значения строки через пробел.
func (r Record) Enrich(raw string, p Provenance) {
	r[FieldRaw] = raw
	r[FieldSourceFile] = p.SourceFile
	r[FieldDeviceName] = p.DeviceName
	r[FieldDeviceIP] = p.DeviceIP
	r[FieldTimestamp] = p.Timestamp
}

// ResultSet накапливает записи по командам за весь прогон.
// Порядок команд — порядок первого появления, порядок записей внутри команды сохраняется.
type ResultSet struct {
	order   []string
	records map[string][]Record
}

func NewResultSet() *ResultSet {
	return &ResultSet{records: make(map[string][]Record)}
}

// Add дописывает записи к команде; пустой срез команду не регистрирует
func (rs *ResultSet) Add(command string, recs ...Record) {
	if len(recs) == 0 {
		return
	}
	if _, ok := rs.records[command]; !ok {
		rs.order = append(rs.order, command)
	}
	rs.records[command] = append(rs.records[command], recs...)
}

// Commands возвращает команды, для которых есть хотя бы одна запись
func (rs *ResultSet) Commands() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

func (rs *ResultSet) Records(command string) []Record {
	return rs.records[command]
}

// Len — общее число записей
func (rs *ResultSet) Len() int {
	n := 0
	for _, recs := range rs.records {
		n += len(recs)
	}
	return n
}

// FileStatus — итог обработки одного файла
type FileStatus int

const (
	StatusParsed FileStatus = iota
	StatusSkipped
	StatusFailed
)

func (s FileStatus) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult — результат обработки файла: успех с записями, пропуск с причиной или ошибка
type FileResult struct {
	Path       string // путь относительно корня сканирования
	Command    string
	DeviceName string
	DeviceIP   string
	Template   string
	Status     FileStatus
	Reason     string
	Err        error
	Records    []Record
}

// RecordRow — запись в виде строки таблицы ClickHouse
type RecordRow struct {
	Command     string
	SourceFile  string
	DeviceName  string
	DeviceIP    string
	ExtractedAt time.Time
	Raw         string
	Fields      map[string]string // только поля шаблона, без служебных
}
