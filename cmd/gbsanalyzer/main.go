package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/QEStudios/GBSTranscriber/gbs"
	"github.com/QEStudios/GBSTranscriber/parser/midi"
	"github.com/QEStudios/GBSTranscriber/report"
	"github.com/QEStudios/GBSTranscriber/store"
	"github.com/QEStudios/GBSTranscriber/synth"
	"github.com/QEStudios/GBSTranscriber/transcribe"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

type options struct {
	packageName string
	writeBinary bool
	dbPath      string
	midiSong    int
	dump        bool
}

// Everything one run produced, ready to be written out.
type result struct {
	tables  []synth.Table
	source  store.Source
	outputs []string
}

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var opts options
	pflag.StringVarP(&opts.packageName, "package", "p", "songs", "package name of the generated Go table")
	pflag.BoolVarP(&opts.writeBinary, "bin", "b", false, "also write the compact binary note image")
	pflag.StringVarP(&opts.dbPath, "db", "d", "", "SQLite database to store the note tables in")
	pflag.IntVarP(&opts.midiSong, "song", "s", 1, "song index to tag MIDI input with (1-255)")
	pflag.BoolVar(&opts.dump, "dump", false, "dump the decoded GBS header")
	pflag.Parse()

	// Get the path of the GBS or MIDI file.
	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	var res *result
	if isMidi(path) {
		res, err = analyseMidi(path, opts)
	} else {
		res, err = analyseGBS(path, opts)
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}

	if err := writeOutputs(path, opts, res); err != nil {
		logger.Fatalf("%v", err)
	}

	total := 0
	for _, t := range res.tables {
		total += len(t.Notes)
	}
	green.Printf("Analysis complete! Found %d note events in %d song(s)\n", total, len(res.tables))
	for _, out := range res.outputs {
		fmt.Printf("  %s\n", out)
	}
}

func analyseGBS(path string, opts options) (*result, error) {
	f, err := gbs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	for _, w := range f.Warnings {
		yellow.Printf("warning: %v\n", w)
	}
	if opts.dump {
		spew.Dump(f.Header)
	}
	logger.Printf("Playback rate: %v", f.Timing)

	stream, err := transcribe.New(logger).Transcribe(f)
	if err != nil {
		return nil, fmt.Errorf("transcribe error: %w", err)
	}

	tables, err := synth.FromStream(stream)
	if err != nil {
		return nil, fmt.Errorf("export error: %w", err)
	}

	reportPath := outputPath(path, "_analysis.txt")
	err = writeFile(reportPath, func(w io.Writer) error {
		return report.Write(w, f, stream)
	})
	if err != nil {
		return nil, fmt.Errorf("error writing report: %w", err)
	}

	return &result{
		tables: tables,
		source: store.Source{
			Path:           path,
			Format:         "gbs",
			Title:          f.Header.Title,
			Author:         f.Header.Author,
			TicksPerSecond: f.Timing.TicksPerSecond,
		},
		outputs: []string{reportPath},
	}, nil
}

func analyseMidi(path string, opts options) (*result, error) {
	if opts.midiSong < 1 || opts.midiSong > 255 {
		return nil, fmt.Errorf("song index must be 1-255, got %d", opts.midiSong)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	table, err := midi.NewParser(file, logger).Parse(opts.midiSong)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return &result{
		tables: []synth.Table{*table},
		source: store.Source{
			Path:   path,
			Format: "midi",
			Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		},
	}, nil
}

// writeOutputs writes the Go table, the optional binary image and the optional database rows.
func writeOutputs(path string, opts options, res *result) error {
	sourcePath := outputPath(path, "_songs.go")
	err := writeFile(sourcePath, func(w io.Writer) error {
		return synth.WriteSource(w, synth.SourceOptions{
			Package: opts.packageName,
			Origin:  filepath.Base(path),
		}, res.tables)
	})
	if err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	res.outputs = append(res.outputs, sourcePath)

	if opts.writeBinary {
		image, err := synth.Compile(res.tables)
		if err != nil {
			return fmt.Errorf("compile error: %w", err)
		}
		// Write to a .bin file in the same directory as the source file.
		binPath := outputPath(path, ".bin")
		if err := os.WriteFile(binPath, image, 0o644); err != nil {
			return fmt.Errorf("error writing output file: %w", err)
		}
		res.outputs = append(res.outputs, binPath)
	}

	if opts.dbPath != "" {
		client, err := store.NewSQLiteClient(opts.dbPath)
		if err != nil {
			return err
		}
		defer client.Close()

		id, err := client.AddSource(res.source)
		if err != nil {
			return err
		}
		if err := client.StoreTables(id, res.tables); err != nil {
			return err
		}
		res.outputs = append(res.outputs, fmt.Sprintf("%s (source #%d)", opts.dbPath, id))
	}

	return nil
}

// createFile opens an output file for writing. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeFile creates path and fills it with write. A failed Close is reported
// like any other write error.
func writeFile(path string, write func(io.Writer) error) (err error) {
	out, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", filepath.Base(path), cerr)
		}
	}()
	return write(out)
}

// outputPath replaces the extension of path with suffix.
func outputPath(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

func isMidi(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return true
	default:
		return false
	}
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open GBS or MIDI file").
		Filter("Game Boy Sound files (*.gbs)", "gbs").
		Filter("MIDI files (*.mid, *.midi)", "mid", "midi").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", dialog.ErrCancelled
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath performs simple checks to verify if a file exists or not.
func validatePath(p string) error {
	ext := strings.ToLower(filepath.Ext(p))
	if ext != ".gbs" && !isMidi(p) {
		return fmt.Errorf("file must have .gbs, .mid or .midi extension")
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
