package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies the kind of connected-vehicle telemetry a message
// carries. One Kafka topic exists per category.
type Category string

const (
	// CategorySPAT is a signal phase and timing message.
	CategorySPAT Category = "SPAT"
	// CategoryBSM is a basic safety message.
	CategoryBSM Category = "BSM"
	// CategorySRM is a signal request message.
	CategorySRM Category = "SRM"
	// CategoryTIM is a traveler information message.
	CategoryTIM Category = "TIM"
)

// Categories lists every known telemetry category in stable order.
var Categories = []Category{CategorySPAT, CategoryBSM, CategorySRM, CategoryTIM}

// ParseCategory maps a string onto a known Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown telemetry category %q", s)
}

// MessageRecord is one accepted telemetry message. The payload is carried
// opaquely; records are immutable once written and are removed only by the
// retention engine.
type MessageRecord struct {
	TimeStamp time.Time       `json:"timeStamp"`
	Category  Category        `json:"type"`
	ByteSize  int64           `json:"byteSize"`
	Payload   json.RawMessage `json:"logEntry"`
}

// UnknownMessage is the decoded form of an envelope flagged upstream as an
// unrecognized message shape. The UnErrorType field doubles as the marker
// that identifies the variant on the wire.
type UnknownMessage struct {
	Type      string `json:"Type"`
	Data      string `json:"Data"`
	ErrorType string `json:"UnErrorType"`
}

// NonParseableMessage is the decoded form of an envelope the upstream
// pipeline recognized but could not parse. NpErrorType is the wire marker.
type NonParseableMessage struct {
	Type      string `json:"Type"`
	Data      string `json:"Data"`
	ErrorType string `json:"NpErrorType"`
	Cause     string `json:"Cause"`
}

// ObjectTrackingRecord mirrors the timestamp and size of every object placed
// in the archive object store, so tier-size queries never hit the object
// store itself.
type ObjectTrackingRecord struct {
	ObjectKey string    `json:"objectKey"`
	TimeStamp time.Time `json:"timeStamp"`
	ByteSize  int64     `json:"byteSize"`
}
