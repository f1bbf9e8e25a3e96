// Package knowledge provides the catalog lookup layer over parts, repairs,
// and blog content, backed by SQLite with FTS5 full-text indexes.
//
// Lookup failures degrade to empty results at this boundary: the assistant
// must stay usable with a degraded catalog, so errors are logged and never
// propagated to the conversation engine.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/partdesk/backend/internal/model/part"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store wraps the catalog database.
type Store struct {
	db *sql.DB
}

// Open connects to the catalog database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS parts (
		part_id TEXT PRIMARY KEY,
		mpn_id TEXT,
		part_name TEXT NOT NULL,
		part_price REAL,
		install_difficulty TEXT,
		install_time TEXT,
		symptoms TEXT,
		appliance_types TEXT,
		brand TEXT,
		availability TEXT,
		product_url TEXT,
		install_video_url TEXT
	);
	CREATE VIRTUAL TABLE IF NOT EXISTS parts_fts USING fts5(
		part_name, symptoms, brand, content='parts', content_rowid='rowid'
	);
	CREATE TRIGGER IF NOT EXISTS parts_ai AFTER INSERT ON parts BEGIN
		INSERT INTO parts_fts(rowid, part_name, symptoms, brand)
		VALUES (new.rowid, new.part_name, new.symptoms, new.brand);
	END;
	CREATE TRIGGER IF NOT EXISTS parts_ad AFTER DELETE ON parts BEGIN
		INSERT INTO parts_fts(parts_fts, rowid, part_name, symptoms, brand)
		VALUES ('delete', old.rowid, old.part_name, old.symptoms, old.brand);
	END;

	CREATE TABLE IF NOT EXISTS repairs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product TEXT NOT NULL,
		symptom TEXT NOT NULL,
		description TEXT,
		percentage REAL,
		difficulty TEXT,
		parts TEXT,
		symptom_detail_url TEXT,
		repair_video_url TEXT
	);
	CREATE VIRTUAL TABLE IF NOT EXISTS repairs_fts USING fts5(
		product, symptom, description, content='repairs', content_rowid='id'
	);
	CREATE TRIGGER IF NOT EXISTS repairs_ai AFTER INSERT ON repairs BEGIN
		INSERT INTO repairs_fts(rowid, product, symptom, description)
		VALUES (new.id, new.product, new.symptom, new.description);
	END;
	CREATE TRIGGER IF NOT EXISTS repairs_ad AFTER DELETE ON repairs BEGIN
		INSERT INTO repairs_fts(repairs_fts, rowid, product, symptom, description)
		VALUES ('delete', old.id, old.product, old.symptom, old.description);
	END;

	CREATE TABLE IF NOT EXISTS blogs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		url TEXT
	);
	CREATE VIRTUAL TABLE IF NOT EXISTS blogs_fts USING fts5(
		title, content='blogs', content_rowid='id'
	);
	CREATE TRIGGER IF NOT EXISTS blogs_ai AFTER INSERT ON blogs BEGIN
		INSERT INTO blogs_fts(rowid, title) VALUES (new.id, new.title);
	END;
	CREATE TRIGGER IF NOT EXISTS blogs_ad AFTER DELETE ON blogs BEGIN
		INSERT INTO blogs_fts(blogs_fts, rowid, title) VALUES ('delete', old.id, old.title);
	END;
	`
	_, err := s.db.Exec(schema)
	return err
}

// ftsQuery turns free text into an FTS5 prefix query, skipping short noise
// terms. Returns "" when nothing is worth searching for.
func ftsQuery(text string) string {
	terms := strings.Fields(text)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if len(term) <= 2 {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, ``)+`"*`)
	}
	return strings.Join(quoted, " OR ")
}

// SearchParts looks up parts for a free-text query. An exact part_id or
// mpn_id match takes precedence over ranked full-text search. An empty
// query-term list yields an empty result, not an error.
func (s *Store) SearchParts(ctx context.Context, query string, limit int) []part.Record {
	trimmed := strings.TrimSpace(query)

	if exact := s.FetchPart(ctx, trimmed); exact != nil {
		return []part.Record{*exact}
	}

	match := ftsQuery(query)
	if match == "" {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.part_id, p.mpn_id, p.part_name, p.part_price, p.install_difficulty,
		       p.install_time, p.symptoms, p.appliance_types, p.brand, p.availability,
		       p.product_url, p.install_video_url
		FROM parts_fts fts JOIN parts p ON fts.rowid = p.rowid
		WHERE parts_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		log.Printf("[knowledge] part search failed: %v", err)
		return nil
	}
	defer rows.Close()

	return scanParts(rows)
}

// FetchPart returns the part with the given id (or manufacturer part
// number), or nil when unknown.
func (s *Store) FetchPart(ctx context.Context, id string) *part.Record {
	if strings.TrimSpace(id) == "" {
		return nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT part_id, mpn_id, part_name, part_price, install_difficulty,
		       install_time, symptoms, appliance_types, brand, availability,
		       product_url, install_video_url
		FROM parts WHERE part_id = ? OR mpn_id = ?`, id, id)

	record, err := scanPart(row)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		log.Printf("[knowledge] part fetch failed for %s: %v", id, err)
		return nil
	}
	return record
}

// SearchRepairs finds repair guide entries matching the symptom text, ranked
// by reported frequency descending. product, when non-empty, filters to one
// appliance family.
func (s *Store) SearchRepairs(ctx context.Context, symptom, product string, limit int) []part.Repair {
	match := ftsQuery(symptom)
	if match == "" {
		return nil
	}

	query := `
		SELECT r.product, r.symptom, r.description, r.percentage, r.difficulty,
		       r.parts, r.symptom_detail_url, r.repair_video_url
		FROM repairs_fts fts JOIN repairs r ON fts.rowid = r.id
		WHERE repairs_fts MATCH ?`
	args := []any{match}
	if product != "" {
		query += ` AND r.product LIKE ?`
		args = append(args, "%"+product+"%")
	}
	query += ` ORDER BY r.percentage DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("[knowledge] repair search failed: %v", err)
		return nil
	}
	defer rows.Close()

	return scanRepairs(rows)
}

// RelatedRepairs returns repair entries referencing the part id, ranked by
// frequency descending.
func (s *Store) RelatedRepairs(ctx context.Context, partID string) []part.Repair {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product, symptom, description, percentage, difficulty,
		       parts, symptom_detail_url, repair_video_url
		FROM repairs WHERE parts LIKE ?
		ORDER BY percentage DESC`, "%"+partID+"%")
	if err != nil {
		log.Printf("[knowledge] related repair lookup failed for %s: %v", partID, err)
		return nil
	}
	defer rows.Close()

	return scanRepairs(rows)
}

// SearchBlogs finds advice articles matching the query.
func (s *Store) SearchBlogs(ctx context.Context, query string, limit int) []part.Blog {
	match := ftsQuery(query)
	if match == "" {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.title, b.url
		FROM blogs_fts fts JOIN blogs b ON fts.rowid = b.id
		WHERE blogs_fts MATCH ?
		LIMIT ?`, match, limit)
	if err != nil {
		log.Printf("[knowledge] blog search failed: %v", err)
		return nil
	}
	defer rows.Close()

	var blogs []part.Blog
	for rows.Next() {
		var b part.Blog
		var url sql.NullString
		if err := rows.Scan(&b.Title, &url); err != nil {
			log.Printf("[knowledge] blog row scan failed: %v", err)
			return blogs
		}
		b.URL = url.String
		blogs = append(blogs, b)
	}
	return blogs
}

// InsertPart adds or replaces a catalog part. Used by the import tool and
// tests.
func (s *Store) InsertPart(ctx context.Context, r part.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO parts (part_id, mpn_id, part_name, part_price,
			install_difficulty, install_time, symptoms, appliance_types,
			brand, availability, product_url, install_video_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PartID, r.MPNID, r.Name, r.Price, r.InstallDifficulty, r.InstallTime,
		r.Symptoms, r.ApplianceTypes, r.Brand, r.Availability, r.ProductURL, r.InstallVideoURL)
	if err != nil {
		return fmt.Errorf("inserting part %s: %w", r.PartID, err)
	}
	return nil
}

// InsertRepair adds a repair guide entry.
func (s *Store) InsertRepair(ctx context.Context, r part.Repair) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repairs (product, symptom, description, percentage,
			difficulty, parts, symptom_detail_url, repair_video_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Product, r.Symptom, r.Description, r.Percentage, r.Difficulty,
		r.Parts, r.SymptomDetailURL, r.RepairVideoURL)
	if err != nil {
		return fmt.Errorf("inserting repair %q: %w", r.Symptom, err)
	}
	return nil
}

// InsertBlog adds an advice article reference.
func (s *Store) InsertBlog(ctx context.Context, b part.Blog) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO blogs (title, url) VALUES (?, ?)`, b.Title, b.URL)
	if err != nil {
		return fmt.Errorf("inserting blog %q: %w", b.Title, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner) (*part.Record, error) {
	var r part.Record
	var mpn, difficulty, installTime, symptoms, appliances, brand, availability, productURL, videoURL sql.NullString
	var price sql.NullFloat64

	err := row.Scan(&r.PartID, &mpn, &r.Name, &price, &difficulty, &installTime,
		&symptoms, &appliances, &brand, &availability, &productURL, &videoURL)
	if err != nil {
		return nil, err
	}

	r.MPNID = mpn.String
	r.Price = price.Float64
	r.InstallDifficulty = difficulty.String
	r.InstallTime = installTime.String
	r.Symptoms = symptoms.String
	r.ApplianceTypes = appliances.String
	r.Brand = brand.String
	r.Availability = availability.String
	r.ProductURL = productURL.String
	r.InstallVideoURL = videoURL.String
	return &r, nil
}

func scanParts(rows *sql.Rows) []part.Record {
	var records []part.Record
	for rows.Next() {
		record, err := scanPart(rows)
		if err != nil {
			log.Printf("[knowledge] part row scan failed: %v", err)
			return records
		}
		records = append(records, *record)
	}
	return records
}

func scanRepairs(rows *sql.Rows) []part.Repair {
	var repairs []part.Repair
	for rows.Next() {
		var r part.Repair
		var description, difficulty, parts, detailURL, videoURL sql.NullString
		var percentage sql.NullFloat64
		if err := rows.Scan(&r.Product, &r.Symptom, &description, &percentage,
			&difficulty, &parts, &detailURL, &videoURL); err != nil {
			log.Printf("[knowledge] repair row scan failed: %v", err)
			return repairs
		}
		r.Description = description.String
		r.Percentage = percentage.Float64
		r.Difficulty = difficulty.String
		r.Parts = parts.String
		r.SymptomDetailURL = detailURL.String
		r.RepairVideoURL = videoURL.String
		repairs = append(repairs, r)
	}
	return repairs
}
