package classifier

import (
	"testing"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	t.Run("Valid Envelope", func(t *testing.T) {
		raw := []byte(`{"intersectionId":"4021","speed":12.4,"heading":270}`)

		res, err := Classify(raw, domain.CategoryBSM, now)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Kind != KindValid {
			t.Fatalf("expected KindValid, got %v", res.Kind)
		}
		if res.Record == nil {
			t.Fatal("expected a record to be populated")
		}
		if res.Record.Category != domain.CategoryBSM {
			t.Errorf("expected category BSM, got %s", res.Record.Category)
		}
		if res.Record.ByteSize != int64(len(raw)) {
			t.Errorf("expected byte size %d, got %d", len(raw), res.Record.ByteSize)
		}
		if !res.Record.TimeStamp.Equal(now) {
			t.Errorf("expected timestamp %v, got %v", now, res.Record.TimeStamp)
		}
		if string(res.Record.Payload) != string(raw) {
			t.Error("payload should be the whole envelope, uninterpreted")
		}
	})

	t.Run("Unknown Marker", func(t *testing.T) {
		raw := []byte(`{"Type":"SPAT","Data":"0x4f","UnErrorType":"UnknownMessageType"}`)

		res, err := Classify(raw, domain.CategorySPAT, now)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Kind != KindUnknown {
			t.Fatalf("expected KindUnknown, got %v", res.Kind)
		}
		if res.Unknown.ErrorType != "UnknownMessageType" {
			t.Errorf("unexpected error type %q", res.Unknown.ErrorType)
		}
		if res.Record != nil {
			t.Error("unknown outcome must not carry a record")
		}
	})

	t.Run("NonParseable Marker", func(t *testing.T) {
		raw := []byte(`{"Type":"TIM","Data":"garbled","NpErrorType":"ParseFailure","Cause":"unexpected end of input"}`)

		res, err := Classify(raw, domain.CategoryTIM, now)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Kind != KindNonParseable {
			t.Fatalf("expected KindNonParseable, got %v", res.Kind)
		}
		if res.NonParseable.Cause != "unexpected end of input" {
			t.Errorf("unexpected cause %q", res.NonParseable.Cause)
		}
	})

	t.Run("Marker Present But Undecodable", func(t *testing.T) {
		// Data must be a string; a number degrades to logged-and-dropped.
		raw := []byte(`{"UnErrorType":"UnknownMessageType","Data":42}`)

		_, err := Classify(raw, domain.CategorySRM, now)

		if err == nil {
			t.Fatal("expected a decode error")
		}
	})

	t.Run("Not A JSON Object", func(t *testing.T) {
		_, err := Classify([]byte(`[1,2,3]`), domain.CategoryBSM, now)
		if err == nil {
			t.Fatal("expected an error for a non-object envelope")
		}
	})

	t.Run("Exactly One Outcome Per Input", func(t *testing.T) {
		// The unknown marker wins even when both could in theory appear;
		// the two markers are mutually exclusive upstream.
		cases := map[string]Kind{
			`{"UnErrorType":"x","Type":"BSM","Data":"d"}`:              KindUnknown,
			`{"NpErrorType":"x","Type":"BSM","Data":"d","Cause":"c"}`:  KindNonParseable,
			`{"anything":"else"}`:                                      KindValid,
		}
		for raw, want := range cases {
			res, err := Classify([]byte(raw), domain.CategoryBSM, now)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", raw, err)
			}
			if res.Kind != want {
				t.Errorf("envelope %s: expected kind %v, got %v", raw, want, res.Kind)
			}
			populated := 0
			if res.Record != nil {
				populated++
			}
			if res.Unknown != nil {
				populated++
			}
			if res.NonParseable != nil {
				populated++
			}
			if populated != 1 {
				t.Errorf("envelope %s: expected exactly one populated variant, got %d", raw, populated)
			}
		}
	})
}
