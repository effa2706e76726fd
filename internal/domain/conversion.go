package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversionStatus represents the outcome of a conversion
type ConversionStatus string

const (
	ConversionStatusCompleted ConversionStatus = "COMPLETED"
	ConversionStatusUnchanged ConversionStatus = "UNCHANGED"
	ConversionStatusFailed    ConversionStatus = "FAILED"
)

// Conversion records one fetch-parse-emit cycle
type Conversion struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	SourceURL   string           `db:"source_url" json:"sourceUrl"`
	Digest      string           `db:"digest" json:"digest"`
	Contest     string           `db:"contest" json:"contest"`
	Status      ConversionStatus `db:"status" json:"status"`
	Error       string           `db:"error" json:"error,omitempty"`
	Problems    int              `db:"problems" json:"problems"`
	Sessions    int              `db:"sessions" json:"sessions"`
	Runs        int              `db:"runs" json:"runs"`
	Result      *ParsedResult    `db:"-" json:"result,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
}

// NewConversion creates a new conversion for the given source
func NewConversion(sourceURL string) *Conversion {
	return &Conversion{
		ID:        uuid.New(),
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
	}
}

// Complete marks the conversion as finished with the given status
func (c *Conversion) Complete(status ConversionStatus, err error) {
	now := time.Now()
	c.Status = status
	c.CompletedAt = &now
	if err != nil {
		c.Error = err.Error()
	}
}

// Attach copies record counts and the parsed result onto the conversion
func (c *Conversion) Attach(result *ParsedResult) {
	c.Result = result
	c.Contest = result.Contest
	c.Problems = len(result.Problems)
	c.Sessions = len(result.Sessions)
	c.Runs = len(result.Runs)
}
