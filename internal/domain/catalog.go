package domain

import "time"

// S3Secret is the credential payload registered with the engine as a named secret.
type S3Secret struct {
	Name     string
	KeyID    string
	Secret   string
	Endpoint string // host[:port], no scheme
	Region   string
	URLStyle string // "path" or "vhost"
	UseSSL   bool
}

// AttachResult describes the outcome of an attach operation.
type AttachResult struct {
	Alias           string `json:"alias"`
	DataPath        string `json:"data_path"`
	MetadataPath    string `json:"metadata_path"`
	MetadataExisted bool   `json:"metadata_existed"` // metadata store was present before this attach
	AlreadyAttached bool   `json:"already_attached"` // alias was already attached in this session; ATTACH was skipped
}

// RelationCount is the row count of one loaded relation.
type RelationCount struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// LoadResult describes a completed dataset load.
type LoadResult struct {
	Scale     float64         `json:"scale"`
	Catalog   string          `json:"catalog"`
	Relations []RelationCount `json:"relations"`
	Duration  time.Duration   `json:"duration_ns"`
}

// QueryResult summarizes one executed benchmark query.
type QueryResult struct {
	Query    int           `json:"query"`
	Columns  []string      `json:"columns"`
	Rows     int64         `json:"rows"`
	Checksum string        `json:"checksum"`
	Duration time.Duration `json:"duration_ns"`

	// Data holds the result rows when the runner retains them for comparison.
	Data [][]any `json:"-"`
}

// VerifyResult compares a lake query result with the reference result.
type VerifyResult struct {
	Query  int         `json:"query"`
	Match  bool        `json:"match"`
	Reason string      `json:"reason,omitempty"`
	Lake   QueryResult `json:"lake"`
	Ref    QueryResult `json:"reference"`
}

// CatalogStatus is a read-only view of a catalog's metadata store.
type CatalogStatus struct {
	Backend      string   `json:"backend"`
	MetadataPath string   `json:"metadata_path"`
	Exists       bool     `json:"exists"`
	DataPath     string   `json:"data_path,omitempty"`
	Snapshots    int64    `json:"snapshots"`
	Tables       []string `json:"tables"`
}
