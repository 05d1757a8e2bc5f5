package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StorageType selects how a tier's retention cap is expressed.
type StorageType string

const (
	// StorageTypeAge caps a tier by record age in days.
	StorageTypeAge StorageType = "Age"
	// StorageTypeSize caps a tier by accumulated payload bytes.
	StorageTypeSize StorageType = "Size"
)

const maxRetentionDays = 365

var (
	// ErrConfigExists is returned when an add would create a second
	// retention configuration. Exactly one may exist.
	ErrConfigExists = errors.New("retention configuration already exists")

	// ErrConfigNotFound is returned by updates against a missing
	// configuration.
	ErrConfigNotFound = errors.New("retention configuration not found")
)

// RetentionConfig is the single persistent retention policy record. Purge
// runs are only eligible between StartTime and EndTime (hour and minute
// only, recomputed against the current day on every run).
type RetentionConfig struct {
	ID                 uuid.UUID   `json:"id"`
	OnlineStorageType  StorageType `json:"onlineStorageType"`
	OnlineDays         int         `json:"onlineDays"`
	OnlineSize         int64       `json:"onlineSize"`
	ArchiveStorageType StorageType `json:"archiveStorageType"`
	ArchivedDays       int         `json:"archivedDays"`
	ArchivedSize       int64       `json:"archivedSize"`
	StartTime          time.Time   `json:"startTime"`
	EndTime            time.Time   `json:"endTime"`
}

// Validate checks field ranges, not the singleton invariant.
func (c RetentionConfig) Validate() error {
	switch c.OnlineStorageType {
	case StorageTypeAge, StorageTypeSize:
	default:
		return fmt.Errorf("invalid online storage type %q", c.OnlineStorageType)
	}
	switch c.ArchiveStorageType {
	case StorageTypeAge, StorageTypeSize:
	default:
		return fmt.Errorf("invalid archive storage type %q", c.ArchiveStorageType)
	}
	if c.OnlineDays < 0 || c.OnlineDays > maxRetentionDays {
		return fmt.Errorf("online days %d outside 0-%d", c.OnlineDays, maxRetentionDays)
	}
	if c.ArchivedDays < 0 || c.ArchivedDays > maxRetentionDays {
		return fmt.Errorf("archived days %d outside 0-%d", c.ArchivedDays, maxRetentionDays)
	}
	if c.OnlineSize < 0 || c.ArchivedSize < 0 {
		return errors.New("tier sizes must not be negative")
	}
	return nil
}

// TierPolicy is the per-tier slice of the configuration the retention
// engine acts on.
type TierPolicy struct {
	Strategy StorageType
	MaxDays  int
	MaxBytes int64
}

// PolicyFor extracts the policy for one tier.
func (c RetentionConfig) PolicyFor(tier TierKind) TierPolicy {
	if tier == TierArchive {
		return TierPolicy{Strategy: c.ArchiveStorageType, MaxDays: c.ArchivedDays, MaxBytes: c.ArchivedSize}
	}
	return TierPolicy{Strategy: c.OnlineStorageType, MaxDays: c.OnlineDays, MaxBytes: c.OnlineSize}
}
