package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"NetCmdLogParser/internal/classifier"
	"NetCmdLogParser/internal/extract"
	"NetCmdLogParser/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineEngine возвращает по строке на каждую непустую строку текста.
// Текст с "BOOM" имитирует сбой движка.
type lineEngine struct {
	header []string
}

func (e lineEngine) Match(_, text string) ([]string, [][]string, error) {
	if strings.Contains(text, "BOOM") {
		return nil, nil, errors.New("no state matched")
	}
	var rows [][]string
	for _, l := range strings.Split(text, "\n") {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		row := make([]string, len(e.header))
		copy(row, f)
		rows = append(rows, row)
	}
	return e.header, rows, nil
}

var fixedNow = time.Date(2026, 10, 19, 9, 5, 42, 0, time.Local)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newPipeline(t *testing.T, templates []string, engine extract.Engine) *Pipeline {
	t.Helper()
	tmplDir := t.TempDir()
	for _, name := range templates {
		write(t, filepath.Join(tmplDir, name), "Value X (.*)\n\nStart\n")
	}
	m, err := classifier.ParseCommandMap([]byte(`{
		"show version": ["*ver*"],
		"show interfaces": ["*int*"],
		"show inventory": ["*inv*"]
	}`))
	require.NoError(t, err)

	return New(Config{
		Classifier:   classifier.New(m, ".log"),
		Adapter:      extract.NewAdapter(tmplDir, "cisco_ios", engine, time.Second),
		LogExtension: ".log",
		Now:          func() time.Time { return fixedNow },
	})
}

func TestRun_EmptyInput(t *testing.T) {
	p := newPipeline(t, nil, lineEngine{})
	rs, sum, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rs.Commands())
	assert.Equal(t, Summary{}, sum)
}

func TestRun_MissingInputRootIsNotFatal(t *testing.T) {
	p := newPipeline(t, nil, lineEngine{})
	rs, sum, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, rs.Len())
	assert.Zero(t, sum.Files)
}

func TestRun_AggregatesAcrossTree(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "site1_clean", "r1_ver_clean_part1.log"),
		"r1(10.0.0.1): show version\nIOS 15.2\n")
	write(t, filepath.Join(root, "site2_clean", "r2_ver_clean_part1.log"),
		"IOS 16.9\nshow version\n")
	write(t, filepath.Join(root, "site2_clean", "r2_int_clean_part2.log"),
		"r2(10.0.0.2): sh int\nGi0/1 up\nGi0/2 down\n")
	write(t, filepath.Join(root, "site2_clean", "notes.txt"), "ignored, not a log")

	p := newPipeline(t, []string{"cisco_ios_show_version.textfsm", "cisco_ios_show_interfaces.textfsm"},
		lineEngine{header: []string{"A", "B"}})
	rs, sum, err := p.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Summary{Files: 3, Parsed: 3, Records: 4}, sum)
	assert.ElementsMatch(t, []string{"show version", "show interfaces"}, rs.Commands())

	versions := rs.Records("show version")
	require.Len(t, versions, 2)
	assert.Equal(t, models.Record{
		"A":           "IOS",
		"B":           "15.2",
		"raw":         "IOS 15.2",
		"source_file": filepath.Join("site1_clean", "r1_ver_clean_part1.log"),
		"device_name": "r1",
		"device_ip":   "10.0.0.1",
		"timestamp":   "2026-10-19 09:05",
	}, versions[0])
	assert.Equal(t, "unknown", versions[1]["device_name"])
	assert.Equal(t, "unknown", versions[1]["device_ip"])
	assert.Equal(t, "16.9", versions[1]["B"])

	ifaces := rs.Records("show interfaces")
	require.Len(t, ifaces, 2)
	assert.Equal(t, "Gi0/2 down", ifaces[1]["raw"])
}

func TestRun_EnrichmentWinsOnCollision(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "r1_ver.log"), "r1(10.0.0.1): show version\nspoofed 1.1.1.1 x y\n")

	p := newPipeline(t, []string{"cisco_ios_show_version.textfsm"},
		lineEngine{header: []string{"device_name", "device_ip", "raw", "VERSION"}})
	rs, _, err := p.Run(context.Background(), root)
	require.NoError(t, err)

	recs := rs.Records("show version")
	require.Len(t, recs, 1)
	assert.Len(t, recs[0], 6)
	assert.Equal(t, "r1", recs[0]["device_name"])
	assert.Equal(t, "10.0.0.1", recs[0]["device_ip"])
	assert.Equal(t, "spoofed 1.1.1.1 x y", recs[0]["raw"])
	assert.Equal(t, "y", recs[0]["VERSION"])
}

func TestRun_PerFileFailuresAreIsolated(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a_unknown_cmd.log"), "whatever\n")   // не классифицирован
	write(t, filepath.Join(root, "b_inv.log"), "PID: C9300\n")         // нет шаблона
	write(t, filepath.Join(root, "c_ver.log"), "BOOM\n")               // сбой движка
	write(t, filepath.Join(root, "d_ver.log"), "\xff\xfe bad bytes\n") // не UTF-8
	write(t, filepath.Join(root, "e_ver.log"), "")                     // пустой
	write(t, filepath.Join(root, "f_ver.log"), "IOS 17.3\n")           // нормальный

	p := newPipeline(t, []string{"cisco_ios_show_version.textfsm"}, lineEngine{header: []string{"A", "B"}})
	rs, sum, err := p.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Summary{Files: 6, Parsed: 1, Skipped: 3, Failed: 2, Records: 1}, sum)
	assert.Equal(t, []string{"show version"}, rs.Commands())
	assert.Nil(t, rs.Records("show inventory"))
}

func TestProcessFile_Results(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "x_inv.log"), "PID: C9300\n")
	write(t, filepath.Join(root, "y.log"), "text\n")

	p := newPipeline(t, nil, lineEngine{})

	res := p.ProcessFile(context.Background(), root, filepath.Join(root, "x_inv.log"))
	assert.Equal(t, models.StatusSkipped, res.Status)
	assert.Equal(t, "show inventory", res.Command)
	assert.Contains(t, res.Reason, "template not found")

	res = p.ProcessFile(context.Background(), root, filepath.Join(root, "y.log"))
	assert.Equal(t, models.StatusSkipped, res.Status)
	assert.Equal(t, "no matching command pattern", res.Reason)

	res = p.ProcessFile(context.Background(), root, filepath.Join(root, "gone_ver.log"))
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "f_ver.log"), "IOS 17.3\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newPipeline(t, nil, lineEngine{}).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WithTextFSMEngine(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "site1_clean", "sw1_int_clean_part1.log"),
		"sw1(192.168.1.10): show interfaces status\nGi0/1   up\nshow clock\nGi0/2   down\n")

	tmplDir := t.TempDir()
	write(t, filepath.Join(tmplDir, "cisco_ios_show_interfaces.textfsm"),
		"Value INTERFACE (\\S+)\nValue STATUS (up|down)\n\nStart\n  ^${INTERFACE}\\s+${STATUS} -> Record\n")
	m := classifier.CommandMap{{Name: "show interfaces", Patterns: []string{"*_int_*"}}}

	p := New(Config{
		Classifier:   classifier.New(m, ".log"),
		Adapter:      extract.NewAdapter(tmplDir, "cisco_ios", extract.NewTextFSMEngine(), 5*time.Second),
		LogExtension: ".log",
		Now:          func() time.Time { return fixedNow },
	})
	rs, sum, err := p.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Parsed)

	recs := rs.Records("show interfaces")
	require.Len(t, recs, 2)
	assert.Equal(t, models.Record{
		"INTERFACE":   "Gi0/1",
		"STATUS":      "up",
		"raw":         "Gi0/1 up",
		"source_file": filepath.Join("site1_clean", "sw1_int_clean_part1.log"),
		"device_name": "sw1",
		"device_ip":   "192.168.1.10",
		"timestamp":   "2026-10-19 09:05",
	}, recs[0])
}
