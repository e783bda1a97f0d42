// Line-oriented, label-aware metrics export with atomic file replacement.
package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Exporter appends metric lines to a single destination file. Every write is
// read-append-rewrite through a temp file in the same directory, so readers
// never observe a truncated line. A mutex serializes emissions within one
// process; cross-process writers must serialize externally or use distinct
// files.
type Exporter struct {
	path string
	mu   sync.Mutex
}

// NewExporter returns an Exporter writing to path. The file is created on
// first emission.
func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

// Path returns the destination file.
func (e *Exporter) Path() string {
	return e.path
}

// Emit appends a single metric line.
func (e *Exporter) Emit(name string, value float64, labels map[string]string) error {
	return e.appendLines([]string{formatLine(name, value, labels)})
}

// EmitMany appends one line per metric, in sorted metric-name order so file
// content is deterministic regardless of map insertion order.
func (e *Exporter) EmitMany(values map[string]float64, labels map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, formatLine(name, values[name], labels))
	}
	return e.appendLines(lines)
}

func (e *Exporter) appendLines(lines []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := os.ReadFile(e.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read metrics file: %w", err)
	}

	var b bytes.Buffer
	b.Write(existing)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := WriteFileAtomic(e.path, b.Bytes()); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// formatLine renders `name{k="v",...} value` with label keys in sorted order,
// or `name value` without labels.
func formatLine(name string, value float64, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(escapeLabelValue(labels[k]))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(formatValue(value))
	return b.String()
}

func formatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeLabelValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(v)
}

// WriteFileAtomic writes data to a temp file in the destination directory and
// renames it over path, so concurrent readers see either the old or the new
// content in full.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
