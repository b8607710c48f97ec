// Package report renders a transcription as a human-readable text report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/QEStudios/GBSTranscriber/gbs"
	"github.com/QEStudios/GBSTranscriber/transcribe"
)

// Write renders the header summary, one tab-separated table per song and the note totals.
func Write(w io.Writer, f *gbs.File, stream transcribe.Stream) error {
	bw := bufio.NewWriter(w)
	h := f.Header

	title := "GBS File Analysis"
	if h.Title != "" {
		title = h.Title + " " + title
	}
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 50))

	bw.WriteString("HEADER INFORMATION:\n")
	fmt.Fprintf(bw, "Title: %s\n", h.Title)
	fmt.Fprintf(bw, "Author: %s\n", h.Author)
	fmt.Fprintf(bw, "Copyright: %s\n", h.Copyright)
	fmt.Fprintf(bw, "Number of songs: %d\n", h.NumSongs)
	fmt.Fprintf(bw, "Playback rate: %.1f Hz\n", f.Timing.TicksPerSecond)
	fmt.Fprintf(bw, "Load address: $%04X\n", h.LoadAddr)
	fmt.Fprintf(bw, "Init address: $%04X\n", h.InitAddr)
	fmt.Fprintf(bw, "Play address: $%04X\n\n", h.PlayAddr)

	for _, song := range stream.Songs() {
		events := stream[song]
		fmt.Fprintf(bw, "SONG %d ANALYSIS:\n", song)
		bw.WriteString("Time(s)\tFreq(Hz)\tNote\tChannel\tDuration(s)\tOffset\n")
		fmt.Fprintf(bw, "%s\n", strings.Repeat("-", 60))

		for _, e := range events {
			fmt.Fprintf(bw, "%.3f\t%.1f\t%s\t%d\t%.3f\t%#x\n",
				e.Timestamp, e.Frequency, e.Label, e.Channel, e.Duration, e.FileOffset)
		}

		fmt.Fprintf(bw, "\nSong %d notes: %d\n", song, len(events))
		bw.WriteString(channelTable(stream.ChannelCounts(song)))
		fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 50))
	}

	fmt.Fprintf(bw, "Total notes analyzed across all songs: %d\n", stream.Total())
	return bw.Flush()
}

// channelTable formats the number of notes on each channel as a box table.
func channelTable(counts [transcribe.NumChannels]int) string {
	headers := make([]string, transcribe.NumChannels)
	cells := make([]string, transcribe.NumChannels)
	widths := make([]int, transcribe.NumChannels)
	for i := range transcribe.NumChannels {
		headers[i] = transcribe.Channel(i + 1).String()
		cells[i] = strconv.Itoa(counts[i])
		// Set a minimum width for nicer output
		widths[i] = max(len(headers[i]), len(cells[i]), 10)
	}

	// Helper padding functions
	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		for i := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", widths[i]+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}
	row := func(values []string) {
		for i, v := range values {
			b.WriteString("| ")
			b.WriteString(padRight(v, widths[i]))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	row(headers)
	separator()
	row(cells)
	separator()
	return b.String()
}
