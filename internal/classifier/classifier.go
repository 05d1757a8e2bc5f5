package classifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

// Marker fields set by upstream processing to flag problem envelopes. An
// envelope carrying neither is treated as valid opaque telemetry.
const (
	unknownMarker      = "UnErrorType"
	nonParseableMarker = "NpErrorType"
)

// Kind discriminates the classification outcome.
type Kind int

const (
	// KindValid means the envelope is opaque telemetry and Record is set.
	KindValid Kind = iota
	// KindUnknown means upstream flagged an unrecognized message shape.
	KindUnknown
	// KindNonParseable means upstream recognized but could not parse the
	// payload.
	KindNonParseable
)

// Result is the tagged classification outcome. Exactly one of the variant
// fields is populated, matching Kind.
type Result struct {
	Kind         Kind
	Record       *domain.MessageRecord
	Unknown      *domain.UnknownMessage
	NonParseable *domain.NonParseableMessage
}

// Classify inspects one inbound envelope and decides what it is. The
// declared category comes from the topic the envelope arrived on; now is
// stamped onto valid records so the function stays pure.
//
// A marker field that is present but whose variant fails to decode is an
// error: the caller logs and drops the envelope, nothing is persisted.
func Classify(raw []byte, category domain.Category, now time.Time) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Result{}, fmt.Errorf("envelope is not a JSON object: %w", err)
	}

	if _, ok := fields[unknownMarker]; ok {
		var unknown domain.UnknownMessage
		if err := json.Unmarshal(raw, &unknown); err != nil {
			return Result{}, fmt.Errorf("decode unknown-message envelope: %w", err)
		}
		return Result{Kind: KindUnknown, Unknown: &unknown}, nil
	}

	if _, ok := fields[nonParseableMarker]; ok {
		var nonParseable domain.NonParseableMessage
		if err := json.Unmarshal(raw, &nonParseable); err != nil {
			return Result{}, fmt.Errorf("decode non-parseable envelope: %w", err)
		}
		return Result{Kind: KindNonParseable, NonParseable: &nonParseable}, nil
	}

	// No markers: the whole envelope is the opaque payload.
	payload := make(json.RawMessage, len(raw))
	copy(payload, raw)
	record := &domain.MessageRecord{
		TimeStamp: now.UTC(),
		Category:  category,
		ByteSize:  int64(len(raw)),
		Payload:   payload,
	}
	return Result{Kind: KindValid, Record: record}, nil
}
