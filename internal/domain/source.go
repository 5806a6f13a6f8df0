package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SourceKindLocal marks sources created by the local upload flow. Any other
// kind value is a remote loader type tag (e.g. "url", "github").
const SourceKindLocal = "local"

// Sync frequency tags. SyncNever excludes a source from scheduled re-sync.
const (
	SyncNever   = "never"
	SyncDaily   = "daily"
	SyncWeekly  = "weekly"
	SyncMonthly = "monthly"
)

// RemoteConfig is a custom type for storing the opaque remote source
// configuration as JSON in the database. The core never interprets it; it is
// passed verbatim to the resolved remote loader.
type RemoteConfig map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
func (c RemoteConfig) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database deserialization.
func (c *RemoteConfig) Scan(value interface{}) error {
	if value == nil {
		*c = RemoteConfig{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan RemoteConfig")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, c)
}

// Source represents a registered ingestion source that may be re-synced.
// Created on first successful ingestion and updated in place on resync; this
// core never deletes source records.
type Source struct {
	ID            string       `gorm:"type:text;primaryKey" json:"id"`
	User          string       `gorm:"type:text;not null;index" json:"user"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Kind          string       `gorm:"type:text;not null" json:"kind"`
	Retriever     string       `gorm:"type:text" json:"retriever"`
	RemoteConfig  RemoteConfig `gorm:"type:text" json:"remote_config"`
	SyncFrequency string       `gorm:"type:text;default:never;index" json:"sync_frequency"`
	Tokens        int          `gorm:"default:0" json:"tokens"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Source.
func (Source) TableName() string {
	return "sources"
}
