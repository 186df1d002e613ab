package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeedbackKind tells whether an alert fired too early or too late
type FeedbackKind string

const (
	TooEarly FeedbackKind = "too_early"
	TooLate  FeedbackKind = "too_late"
)

// String method for FeedbackKind
func (k FeedbackKind) String() string {
	return string(k)
}

// Valid reports whether k is a supported feedback kind
func (k FeedbackKind) Valid() bool {
	return k == TooEarly || k == TooLate
}

// Sign returns +1 for TooLate and -1 for TooEarly
func (k FeedbackKind) Sign() int64 {
	if k == TooLate {
		return 1
	}
	return -1
}

// ParseFeedbackKind accepts the canonical names as well as the short
// "early"/"late" and hyphenated forms
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "too_early", "too-early", "early":
		return TooEarly, nil
	case "too_late", "too-late", "late":
		return TooLate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFeedbackKind, s)
	}
}

// FeedbackRecord is one entry of the append-only adjustment audit log
type FeedbackRecord struct {
	ID                 uuid.UUID       `json:"id"`
	ItemName           ItemName        `json:"item_name"`
	Date               time.Time       `json:"date"`
	ResultingUsageRate decimal.Decimal `json:"resulting_usage_rate"`
	Kind               FeedbackKind    `json:"kind"`
	Delta              decimal.Decimal `json:"delta"`
	RecordedAt         time.Time       `json:"recorded_at"`
}
