// Package logscan reads the log files an MCP host keeps for lintbridge and
// collects failed and warned tool-calls.
//
// Both slog handlers are understood: JSON lines and the key=value text form.
package logscan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultGlob matches the per-server logs Claude Desktop writes.
const DefaultGlob = "mcp-server-lintbridge*.log"

const maxLineBytes = 16 * 1024 * 1024

// DefaultDir returns the host log directory for the current user.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Library", "Logs", "Claude")
}

// Options selects which files and entries are scanned.
type Options struct {
	Dir   string
	Glob  string
	Since time.Time
}

// Entry is one warning or error line.
type Entry struct {
	Time    time.Time `json:"time" yaml:"time"`
	Level   string    `json:"level" yaml:"level"`
	Message string    `json:"message" yaml:"message"`
	CallID  string    `json:"call_id,omitempty" yaml:"call_id,omitempty"`
	Tool    string    `json:"tool,omitempty" yaml:"tool,omitempty"`
	Path    string    `json:"path,omitempty" yaml:"path,omitempty"`
	Detail  string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	LogFile string    `json:"log_file" yaml:"log_file"`
}

// Report is the result of a scan. Entries are newest first.
type Report struct {
	LogFiles   []string `json:"log_files" yaml:"log_files"`
	ErrorCount int      `json:"error_count" yaml:"error_count"`
	WarnCount  int      `json:"warn_count" yaml:"warn_count"`
	Entries    []Entry  `json:"entries" yaml:"entries"`
}

// Scan reads every matching file modified since opts.Since.
func Scan(opts Options) (*Report, error) {
	if opts.Glob == "" {
		opts.Glob = DefaultGlob
	}
	files, err := filepath.Glob(filepath.Join(opts.Dir, opts.Glob))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", opts.Glob, err)
	}
	sort.Strings(files)

	rep := &Report{LogFiles: []string{}, Entries: []Entry{}}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() || info.ModTime().Before(opts.Since) {
			continue
		}
		name := filepath.Base(file)
		rep.LogFiles = append(rep.LogFiles, name)
		if err := scanFile(file, name, opts.Since, rep); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(rep.Entries, func(i, j int) bool {
		return rep.Entries[i].Time.After(rep.Entries[j].Time)
	})
	return rep, nil
}

func scanFile(path, name string, since time.Time, rep *Report) error {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the configured glob
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		fields, ok := parseLine(strings.TrimSpace(sc.Text()))
		if !ok {
			continue
		}
		e, ok := toEntry(fields)
		if !ok || e.Time.Before(since) {
			continue
		}
		e.LogFile = name

		switch e.Level {
		case "ERROR":
			rep.ErrorCount++
		case "WARN":
			rep.WarnCount++
		default:
			continue
		}
		rep.Entries = append(rep.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// parseLine returns the attributes of a JSON or text slog line.
func parseLine(line string) (map[string]string, bool) {
	if line == "" {
		return nil, false
	}
	if strings.HasPrefix(line, "{") {
		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, false
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				fields[k] = s
			} else {
				fields[k] = fmt.Sprint(v)
			}
		}
		return fields, true
	}
	return parseText(line)
}

var textAttr = regexp.MustCompile(`([A-Za-z0-9_.]+)=("(?:[^"\\]|\\.)*"|\S*)`)

func parseText(line string) (map[string]string, bool) {
	if !strings.HasPrefix(line, "time=") {
		return nil, false
	}
	fields := map[string]string{}
	for _, m := range textAttr.FindAllStringSubmatch(line, -1) {
		v := m[2]
		if strings.HasPrefix(v, `"`) {
			if u, err := strconv.Unquote(v); err == nil {
				v = u
			}
		}
		fields[m[1]] = v
	}
	return fields, true
}

func toEntry(fields map[string]string) (Entry, bool) {
	t, err := time.Parse(time.RFC3339Nano, fields["time"])
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Time:    t,
		Level:   strings.ToUpper(fields["level"]),
		Message: fields["msg"],
		CallID:  fields["call_id"],
		Tool:    fields["tool"],
		Path:    fields["path"],
		Detail:  fields["error"],
	}, true
}
