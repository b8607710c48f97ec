package synth

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/template"
)

// ImportPath is the package generated tables refer to.
const ImportPath = "github.com/QEStudios/GBSTranscriber/synth"

// SourceOptions controls the generated Go file.
type SourceOptions struct {
	Package string // Package clause of the generated file.
	Origin  string // Name of the input file, recorded in the header comment.
}

var sourceTemplate = template.Must(template.New("songs").Funcs(template.FuncMap{
	"notes": noteLiterals,
}).Parse(`// Code generated by gbsanalyzer{{if .Origin}} from {{.Origin}}{{end}}. DO NOT EDIT.

package {{.Package}}
{{if .Tables}}
import "{{.ImportPath}}"
{{end}}
const SampleRate = {{.SampleRate}}
{{range .Tables}}
// Song{{.Song}} holds {{len .Notes}} notes (schema {{$.Schema}}).
var Song{{.Song}} = [...]synth.Note{ {{- notes .Notes}}}
{{end}}`))

// noteLiterals renders the elements of a Note array literal, one per line.
func noteLiterals(notes []Note) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "\t{StartSample: %d, EndSample: %d, Volume: %s, IntervalLength: %d},\n",
			n.StartSample, n.EndSample, strconv.FormatFloat(n.Volume, 'g', -1, 64), n.IntervalLength)
	}
	return b.String()
}

// WriteSource writes tables as a gofmt'd Go file declaring one SongN array per table.
func WriteSource(w io.Writer, opts SourceOptions, tables []Table) error {
	if !token.IsIdentifier(opts.Package) {
		return fmt.Errorf("invalid package name %q", opts.Package)
	}
	seen := make(map[int]bool, len(tables))
	for _, t := range tables {
		if t.Song < 0 {
			return fmt.Errorf("invalid song index %d", t.Song)
		}
		if seen[t.Song] {
			return fmt.Errorf("song %d appears twice", t.Song)
		}
		seen[t.Song] = true
	}

	var buf bytes.Buffer
	err := sourceTemplate.Execute(&buf, struct {
		SourceOptions
		ImportPath string
		SampleRate int
		Schema     int
		Tables     []Table
	}{opts, ImportPath, SampleRate, SchemaVersion, tables})
	if err != nil {
		return fmt.Errorf("error generating source: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("error formatting generated source: %w", err)
	}
	_, err = w.Write(src)
	return err
}
