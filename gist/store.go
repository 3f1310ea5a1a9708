// Package gist persists gists and their files.
//
// A gist is a tiny bundle of metadata, the actual content lives on
// disk and the database only records where to find it plus a checksum
// of what was there when the file was added. Every gist owns at least
// one file and file content is unique across the whole store.
package gist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/mattn/go-sqlite3"
)

type (
	Store struct {
		db     *sql.DB
		bodies *bigcache.BigCache
	}

	Gist struct {
		ID     int64
		Title  string
		Author string
		Public bool
	}

	File struct {
		ID       int64
		GistID   int64
		Path     string
		Checksum string
		Added    time.Time
	}

	// Content is a file together with its slurped body.
	Content struct {
		File
		Body string
	}

	// Listing is what the index page and the JSON api work with: a
	// gist plus all of its files, bodies included.
	Listing struct {
		Gist
		Files []Content
	}
)

// Open loads (or creates) the store database at dbPath. The returned
// store is safe for concurrent use, sqlite serializes writers and the
// body cache has its own synchronization.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store gists, cause %w", dir, err)
		}
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_fk=true&mode=rwc", dbPath)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", dbPath, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping gist store %v, cause %v", dbPath, err)
	}
	s := &Store{db: conn}
	s.bodies, _ = bigcache.NewBigCache(bigcache.DefaultConfig(10 * time.Minute))
	err = s.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to init gist store %v, cause %v", dbPath, err)
	}
	return s, nil
}

// Create stores a new gist and its first file in one transaction. The
// file at path is read immediately to compute its checksum, which also
// warms the body cache.
func (s *Store) Create(ctx context.Context, title, author, path string, public bool) (Gist, error) {
	if title == "" {
		return Gist{}, errors.New("gist title must not be empty")
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return Gist{}, ContentUnavailable{Path: path, cause: err}
	}
	sum := checksum(body)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Gist{}, fmt.Errorf("unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `insert into gists(title, author, public) values (?, ?, ?)`, title, author, public)
	if err != nil {
		return Gist{}, fmt.Errorf("unable to store gist %v, cause %w", title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Gist{}, fmt.Errorf("unable to read id of gist %v, cause %w", title, err)
	}
	_, err = tx.ExecContext(ctx, `insert into files(gist_id, path, checksum) values (?, ?, ?)`, id, path, sum)
	if err != nil {
		return Gist{}, mapConstraint(err, path, sum)
	}
	err = tx.Commit()
	if err != nil {
		return Gist{}, fmt.Errorf("unable to commit gist %v, cause %w", title, err)
	}
	s.bodies.Set(sum, body)
	return Gist{ID: id, Title: title, Author: author, Public: public}, nil
}

// AddFile attaches another file to an existing gist.
func (s *Store) AddFile(ctx context.Context, gistID int64, path string) (File, error) {
	var exists int64
	err := s.db.QueryRowContext(ctx, `select gist_id from gists where gist_id = ?`, gistID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, GistNotFound{ID: gistID}
	} else if err != nil {
		return File{}, fmt.Errorf("unable to check gist %v, cause %w", gistID, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return File{}, ContentUnavailable{Path: path, cause: err}
	}
	sum := checksum(body)
	res, err := s.db.ExecContext(ctx, `insert into files(gist_id, path, checksum) values (?, ?, ?)`, gistID, path, sum)
	if err != nil {
		return File{}, mapConstraint(err, path, sum)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return File{}, fmt.Errorf("unable to read id of file %v, cause %w", path, err)
	}
	f := File{ID: id, GistID: gistID, Path: path, Checksum: sum}
	err = s.db.QueryRowContext(ctx, `select added from files where file_id = ?`, id).Scan(&f.Added)
	if err != nil {
		return File{}, fmt.Errorf("unable to read file %v back, cause %w", path, err)
	}
	s.bodies.Set(sum, body)
	return f, nil
}

// ListRecent returns up to limit public gists, newest first. Files
// within a gist come newest first as well (added desc, then file id
// desc to break ties within the same second).
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `select g.gist_id, g.title, g.author, g.public, f.file_id, f.path, f.checksum, f.added
	from gists g
	inner join files f on f.gist_id = g.gist_id
	where g.public = 1
	and g.gist_id in (select gist_id from gists where public = 1 order by gist_id desc limit ?)
	order by g.gist_id desc, f.added desc, f.file_id desc`, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to list recent gists, cause %w", err)
	}
	defer rows.Close()
	return s.collect(rows)
}

// Get returns one gist with its files, public or not. Listing is the
// only place the public flag filters anything, direct links keep
// working for private gists.
func (s *Store) Get(ctx context.Context, gistID int64) (Listing, error) {
	rows, err := s.db.QueryContext(ctx, `select g.gist_id, g.title, g.author, g.public, f.file_id, f.path, f.checksum, f.added
	from gists g
	inner join files f on f.gist_id = g.gist_id
	where g.gist_id = ?
	order by f.added desc, f.file_id desc`, gistID)
	if err != nil {
		return Listing{}, fmt.Errorf("unable to load gist %v, cause %w", gistID, err)
	}
	defer rows.Close()
	out, err := s.collect(rows)
	if err != nil {
		return Listing{}, err
	}
	if len(out) == 0 {
		// every gist owns at least one file, zero rows means the
		// gist itself is missing
		return Listing{}, GistNotFound{ID: gistID}
	}
	return out[0], nil
}

func (s *Store) collect(rows *sql.Rows) ([]Listing, error) {
	var out []Listing
	for rows.Next() {
		var g Gist
		var c Content
		err := rows.Scan(&g.ID, &g.Title, &g.Author, &g.Public, &c.File.ID, &c.Path, &c.Checksum, &c.Added)
		if err != nil {
			return nil, fmt.Errorf("unable to scan gist row, cause %v", err)
		}
		c.GistID = g.ID
		body, err := s.slurp(c.Path, c.Checksum)
		if err != nil {
			return nil, err
		}
		c.Body = body
		if len(out) == 0 || out[len(out)-1].ID != g.ID {
			out = append(out, Listing{Gist: g})
		}
		last := &out[len(out)-1]
		last.Files = append(last.Files, c)
	}
	return out, rows.Err()
}

// slurp reads the body of a file record, going to disk only when the
// checksum is not in the cache. Checksums are unique across the store
// which makes them exact cache keys.
func (s *Store) slurp(path, sum string) (string, error) {
	body, err := s.bodies.Get(sum)
	if err == nil {
		return string(body), nil
	}
	body, err = os.ReadFile(path)
	if err != nil {
		return "", ContentUnavailable{Path: path, cause: err}
	}
	s.bodies.Set(sum, body)
	return string(body), nil
}

func mapConstraint(err error, path, sum string) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return DuplicateContent{Path: path, Checksum: sum}
	}
	return fmt.Errorf("unable to store file %v, cause %w", path, err)
}

func checksum(body []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists gists(
			gist_id integer not null primary key autoincrement,
			title text not null,
			author text,
			public integer not null default 1
		)`,
		`create table if not exists files(
			file_id integer not null primary key autoincrement,
			gist_id integer not null,
			path text not null,
			checksum text not null unique,
			added timestamp not null default current_timestamp,
			foreign key (gist_id) references gists(gist_id)
		)`,
		`create index if not exists idx_files_gist_id
			on files(gist_id)
		`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
