package tpf

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// LightCurveDB persists extracted light curves so they can be queried
// later with any SQLite client.
type LightCurveDB struct {
	db *sql.DB
}

// NewLightCurveDB opens, creating if necessary, the database at file.
func NewLightCurveDB(file string) (*LightCurveDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS target (id INTEGER PRIMARY KEY NOT NULL, name STRING NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sample (target_id INTEGER NOT NULL, cadence INTEGER NOT NULL, time REAL NOT NULL, flux REAL NOT NULL, UNIQUE(target_id, cadence), FOREIGN KEY(target_id) REFERENCES target(id))"); err != nil {
		return nil, err
	}

	return &LightCurveDB{
		db: db,
	}, nil
}

func (l *LightCurveDB) targetID(name string) (int64, error) {
	var id int64
	switch err := l.db.QueryRow("SELECT id FROM target WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := l.db.Exec("INSERT INTO target (name) VALUES (?)", name)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Store writes the samples for the named target, replacing any samples
// previously held for it.
func (l *LightCurveDB) Store(name string, samples []Sample) error {
	id, err := l.targetID(name)
	if err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM sample WHERE target_id = ?", id); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO sample (target_id, cadence, time, flux) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(id, s.Cadence, s.Time, s.Flux); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Samples returns the stored light curve for the named target, ordered
// by cadence.
func (l *LightCurveDB) Samples(name string) ([]Sample, error) {
	rows, err := l.db.Query("SELECT s.cadence, s.time, s.flux FROM sample AS s JOIN target AS t ON s.target_id = t.id WHERE t.name = ? ORDER BY s.cadence", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Cadence, &s.Time, &s.Flux); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (l *LightCurveDB) Close() error {
	return l.db.Close()
}
