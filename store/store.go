// Package store persists synthesizer note tables in SQLite.
package store

import (
	"database/sql"
	"fmt"

	"github.com/QEStudios/GBSTranscriber/synth"
	"github.com/mattn/go-sqlite3"
)

// Source describes the file a set of tables was produced from.
type Source struct {
	Path           string
	Format         string // "gbs" or "midi".
	Title          string
	Author         string
	TicksPerSecond float64 // 0 when the source has no fixed playback clock.
}

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dbPath string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	err = createTables(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}
	return &SQLiteClient{db: db}, nil
}

func (c *SQLiteClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// createTables creates the required tables if they don't exist
func createTables(db *sql.DB) error {
	createSourcesTable := `
    CREATE TABLE IF NOT EXISTS sources (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        path TEXT NOT NULL,
        format TEXT NOT NULL,
        title TEXT NOT NULL,
        author TEXT NOT NULL,
        ticksPerSecond REAL NOT NULL,
        sampleRate INTEGER NOT NULL,
        schemaVersion INTEGER NOT NULL
    );
    `

	createNotesTable := `
    CREATE TABLE IF NOT EXISTS notes (
        sourceID INTEGER NOT NULL REFERENCES sources(id),
        song INTEGER NOT NULL,
        seq INTEGER NOT NULL,
        startSample INTEGER NOT NULL,
        endSample INTEGER NOT NULL,
        volume REAL NOT NULL,
        intervalLength INTEGER NOT NULL,
        PRIMARY KEY (sourceID, song, seq)
    );
    `

	_, err := db.Exec(createSourcesTable)
	if err != nil {
		return fmt.Errorf("error creating sources table: %w", err)
	}

	_, err = db.Exec(createNotesTable)
	if err != nil {
		return fmt.Errorf("error creating notes table: %w", err)
	}

	return nil
}

// AddSource records a source file and returns its ID.
func (c *SQLiteClient) AddSource(src Source) (int64, error) {
	result, err := c.db.Exec(
		"INSERT INTO sources (path, format, title, author, ticksPerSecond, sampleRate, schemaVersion) VALUES (?, ?, ?, ?, ?, ?, ?)",
		src.Path, src.Format, src.Title, src.Author, src.TicksPerSecond, synth.SampleRate, synth.SchemaVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("error adding source: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting source ID: %w", err)
	}
	return id, nil
}

// StoreTables writes every note of tables under sourceID in one transaction.
func (c *SQLiteClient) StoreTables(sourceID int64, tables []synth.Table) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO notes (sourceID, song, seq, startSample, endSample, volume, intervalLength) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tables {
		for seq, n := range t.Notes {
			if _, err := stmt.Exec(sourceID, t.Song, seq, n.StartSample, n.EndSample, n.Volume, n.IntervalLength); err != nil {
				tx.Rollback()
				if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.Code == sqlite3.ErrConstraint {
					return fmt.Errorf("song %d is already stored for source %d: %w", t.Song, sourceID, err)
				}
				return fmt.Errorf("error storing song %d note %d: %w", t.Song, seq, err)
			}
		}
	}

	return tx.Commit()
}

// Songs returns the song indexes stored for a source, in ascending order.
func (c *SQLiteClient) Songs(sourceID int64) ([]int, error) {
	rows, err := c.db.Query("SELECT DISTINCT song FROM notes WHERE sourceID = ? ORDER BY song", sourceID)
	if err != nil {
		return nil, fmt.Errorf("error querying songs: %w", err)
	}
	defer rows.Close()

	var songs []int
	for rows.Next() {
		var song int
		if err := rows.Scan(&song); err != nil {
			return nil, fmt.Errorf("error scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// LoadTable reads back the notes of one song in their original order.
func (c *SQLiteClient) LoadTable(sourceID int64, song int) (synth.Table, error) {
	rows, err := c.db.Query(
		"SELECT startSample, endSample, volume, intervalLength FROM notes WHERE sourceID = ? AND song = ? ORDER BY seq",
		sourceID, song,
	)
	if err != nil {
		return synth.Table{}, fmt.Errorf("error querying notes: %w", err)
	}
	defer rows.Close()

	table := synth.Table{Song: song}
	for rows.Next() {
		var n synth.Note
		if err := rows.Scan(&n.StartSample, &n.EndSample, &n.Volume, &n.IntervalLength); err != nil {
			return synth.Table{}, fmt.Errorf("error scanning note: %w", err)
		}
		table.Notes = append(table.Notes, n)
	}
	return table, rows.Err()
}
