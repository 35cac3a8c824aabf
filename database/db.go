package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// ─── Models ──────────────────────────────────────────────────────────────────

type Itinerary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Itinerary   string    `json:"itinerary"`
	FlightsJSON string    `json:"flights_json"`
	PDFData     []byte    `json:"pdf_data,omitempty"` // stored in DB, no filesystem needed
	CreatedAt   time.Time `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// InitDB connects to PostgreSQL when configured. Persistence is optional: with
// no DATABASE_URL and no DB_HOST the server runs without it and the PDF
// download endpoint is unavailable.
func InitDB() {
	if os.Getenv("DATABASE_URL") == "" && os.Getenv("DB_HOST") == "" {
		log.Println("⚠️  DATABASE_URL not set — itineraries will not be persisted, PDF download disabled")
		return
	}

	dsn := buildDSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database may take a moment to come up alongside the service.
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect to database after retries: %v", err)
	}

	DB = db
	migrate()
	log.Println("✅ Database connected and migrated")
}

// Enabled reports whether persistence is available.
func Enabled() bool {
	return DB != nil
}

func buildDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "wayfarer")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, sslmode)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func migrate() {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS itineraries (
			id            TEXT PRIMARY KEY,
			source        TEXT NOT NULL,
			destination   TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			itinerary     TEXT,
			flights_json  TEXT,
			pdf_data      BYTEA,
			created_at    TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_itineraries_created_at
			ON itineraries(created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			log.Fatalf("❌ Migration failed: %v\nSQL: %s", err, m)
		}
	}
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func SaveItinerary(i *Itinerary) error {
	_, err := DB.Exec(`
		INSERT INTO itineraries (id, source, destination, start_date, end_date, itinerary, flights_json, pdf_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.Source, i.Destination, i.StartDate, i.EndDate, i.Itinerary, i.FlightsJSON, i.PDFData)
	return err
}

func GetItinerary(id string) (*Itinerary, error) {
	i := &Itinerary{}
	err := DB.QueryRow(`
		SELECT id, source, destination, start_date, end_date, itinerary, flights_json, pdf_data, created_at
		FROM itineraries WHERE id = $1`, id).
		Scan(&i.ID, &i.Source, &i.Destination, &i.StartDate, &i.EndDate,
			&i.Itinerary, &i.FlightsJSON, &i.PDFData, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
