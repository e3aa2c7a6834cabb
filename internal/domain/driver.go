package domain

// StoreDriver names a snapshot storage backend.
type StoreDriver string

const (
	StoreDriverFile     StoreDriver = "file"
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverPgx      StoreDriver = "pgx"
	StoreDriverMySQL    StoreDriver = "mysql"
	StoreDriverMongoDB  StoreDriver = "mongodb"
	StoreDriverS3       StoreDriver = "s3"
)

// StoreConfig holds the connection metadata for a snapshot backend.
type StoreConfig struct {
	Driver StoreDriver `json:"driver" toml:"driver"`
	// DSN is a file path (file, sqlite), a driver DSN (postgres, pgx, mysql)
	// or a connection URI (mongodb). Unused for s3.
	DSN string `json:"dsn" toml:"dsn"`

	// Mongo
	Database   string `json:"database" toml:"database"`
	Collection string `json:"collection" toml:"collection"`

	// S3
	Bucket    string `json:"bucket" toml:"bucket"`
	Region    string `json:"region" toml:"region"`
	Endpoint  string `json:"endpoint" toml:"endpoint"`
	PathStyle bool   `json:"pathStyle" toml:"path_style"`
	Key       string `json:"key" toml:"key"`
}
