package debugsink

import (
	"database/sql"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// Archive stores crops in a SQLite database.
type Archive struct {
	db   *sql.DB
	path string
}

// Record is one archived crop.
type Record struct {
	ID             string    `json:"id"`
	Slot           string    `json:"slot"`
	CapturedAt     time.Time `json:"captured_at"`
	Card           string    `json:"card,omitempty"`
	Rank           string    `json:"rank,omitempty"`
	RankConfidence float64   `json:"rank_confidence"`
	RankRunnerUp   string    `json:"rank_runner_up,omitempty"`
	RankMargin     float64   `json:"rank_margin"`
	Suit           string    `json:"suit,omitempty"`
	SuitPixels     float64   `json:"suit_pixels"`
	SuitCoverage   float64   `json:"suit_coverage"`

	// PNG-encoded images, only populated by Get.
	CardPNG       []byte `json:"-"`
	SuitRegionPNG []byte `json:"-"`
	SuitMaskPNG   []byte `json:"-"`
}

// NewArchive opens the database at dbPath, creating it if needed, and runs
// migrations.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The writer goroutine and tool calls may share the handle.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	a := &Archive{db: db, path: dbPath}
	if err := a.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return a, nil
}

func (a *Archive) runMigrations() error {
	migrations := []string{
		// One row per submitted crop
		`CREATE TABLE IF NOT EXISTS crops (
			id TEXT PRIMARY KEY,
			slot TEXT NOT NULL,
			captured_at DATETIME NOT NULL,
			card TEXT NOT NULL DEFAULT '',
			rank TEXT NOT NULL DEFAULT '',
			rank_confidence REAL NOT NULL DEFAULT 0,
			rank_runner_up TEXT NOT NULL DEFAULT '',
			rank_margin REAL NOT NULL DEFAULT 0,
			suit TEXT NOT NULL DEFAULT '',
			suit_pixels REAL NOT NULL DEFAULT 0,
			suit_coverage REAL NOT NULL DEFAULT 0,
			card_png BLOB,
			suit_region_png BLOB,
			suit_mask_png BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_crops_slot ON crops(slot, captured_at)`,
	}

	for _, migration := range migrations {
		if _, err := a.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Submit implements recognition.DebugSink.
func (a *Archive) Submit(crop recognition.DebugCrop) error {
	cardPNG, err := encodeOptional(crop.Card)
	if err != nil {
		return err
	}
	regionPNG, err := encodeOptional(crop.SuitRegion)
	if err != nil {
		return err
	}
	maskPNG, err := encodeOptional(grayOrNil(crop.SuitMask))
	if err != nil {
		return err
	}

	res := crop.Result
	card := ""
	if res.Card != nil {
		card = res.Card.String()
	}
	captured := crop.Time
	if captured.IsZero() {
		captured = time.Now()
	}

	_, err = a.db.Exec(
		`INSERT INTO crops (id, slot, captured_at, card, rank, rank_confidence, rank_runner_up, rank_margin,
			suit, suit_pixels, suit_coverage, card_png, suit_region_png, suit_mask_png)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), crop.Slot, captured.UTC(), card,
		res.Rank.Label, res.Rank.Confidence, res.Rank.RunnerUp, res.Rank.Margin,
		res.Suit.Label, res.Suit.Confidence, res.Suit.Coverage,
		cardPNG, regionPNG, maskPNG,
	)
	if err != nil {
		return fmt.Errorf("failed to archive crop: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first, without image data.
// An empty slot matches every slot; a limit of zero or less means no limit.
func (a *Archive) List(slot string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.Query(
		`SELECT id, slot, captured_at, card, rank, rank_confidence, rank_runner_up, rank_margin,
			suit, suit_pixels, suit_coverage
		 FROM crops
		 WHERE ? = '' OR slot = ?
		 ORDER BY captured_at DESC, created_at DESC
		 LIMIT ?`,
		slot, slot, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Slot, &r.CapturedAt, &r.Card, &r.Rank, &r.RankConfidence,
			&r.RankRunnerUp, &r.RankMargin, &r.Suit, &r.SuitPixels, &r.SuitCoverage); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns one record including its PNG images.
func (a *Archive) Get(id string) (*Record, error) {
	var r Record
	err := a.db.QueryRow(
		`SELECT id, slot, captured_at, card, rank, rank_confidence, rank_runner_up, rank_margin,
			suit, suit_pixels, suit_coverage, card_png, suit_region_png, suit_mask_png
		 FROM crops WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Slot, &r.CapturedAt, &r.Card, &r.Rank, &r.RankConfidence,
		&r.RankRunnerUp, &r.RankMargin, &r.Suit, &r.SuitPixels, &r.SuitCoverage,
		&r.CardPNG, &r.SuitRegionPNG, &r.SuitMaskPNG)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("crop %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Count returns the number of archived crops.
func (a *Archive) Count() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM crops`).Scan(&n)
	return n, err
}

func encodeOptional(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, nil
	}
	return imaging.EncodePNG(img)
}
