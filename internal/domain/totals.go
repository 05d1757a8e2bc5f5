package domain

import "time"

// TierKind names one of the two retention tiers.
type TierKind string

const (
	TierWorking TierKind = "working"
	TierArchive TierKind = "archive"
)

// CountAndSize is a message count plus accumulated payload byte size.
type CountAndSize struct {
	MessageCount int64 `json:"messageCount"`
	ByteSize     int64 `json:"byteSize"`
}

// DailyRollup is the pre-aggregated per-day bucket a tier maintains on every
// insert. Day is truncated to midnight UTC. Rollups exist so purge decisions
// are O(days), never O(records).
type DailyRollup struct {
	Day          time.Time `json:"day"`
	MessageCount int64     `json:"messageCount"`
	ByteSize     int64     `json:"byteSize"`
}

// MinuteCounter is one bucket of the incrementally maintained per-minute,
// per-category materialized view. MessageCount only ever increases;
// LastModified records the aggregation run that last touched the bucket and
// is the watermark source for the next run.
type MinuteCounter struct {
	Minute       time.Time `json:"minuteOfDay"`
	Category     Category  `json:"type"`
	MessageCount int64     `json:"messageCount"`
	LastModified time.Time `json:"lastModified"`
}

// CategoryCount is a per-category message count.
type CategoryCount struct {
	Category     Category `json:"type"`
	MessageCount int64    `json:"messageCount"`
}

// CategoryCountAndSize is a per-category count plus byte size.
type CategoryCountAndSize struct {
	Category     Category `json:"type"`
	MessageCount int64    `json:"messageCount"`
	ByteSize     int64    `json:"byteSize"`
}

// TierCountAndSize is a per-tier count plus byte size, summed from that
// tier's daily rollups.
type TierCountAndSize struct {
	Tier         TierKind `json:"tier"`
	MessageCount int64    `json:"messageCount"`
	ByteSize     int64    `json:"byteSize"`
}

// IntersectionTotals is a read-mostly per-intersection aggregate. It is
// queried, not maintained, by this system.
type IntersectionTotals struct {
	IntersectionID     string   `json:"intersectionId"`
	IntersectionRegion string   `json:"intersectionRegion"`
	IntersectionName   string   `json:"intersectionName"`
	Category           Category `json:"type"`
	MessageCount       int64    `json:"messageCount"`
	ByteSize           int64    `json:"byteSize"`
}
