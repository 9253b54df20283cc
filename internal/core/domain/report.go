package domain

import (
	"errors"
	"strings"
	"time"
)

// Category is the closed set of incident categories a report can carry.
type Category string

const (
	CategoryTraffic          Category = "traffic"
	CategoryTrash            Category = "trash"
	CategoryFight            Category = "fight"
	CategoryIllegalParking   Category = "illegal_parking"
	CategoryIllegalGathering Category = "illegal_gathering"
	CategoryDrone            Category = "drone"
	CategoryOther            Category = "other"
)

var validCategories = map[Category]struct{}{
	CategoryTraffic:          {},
	CategoryTrash:            {},
	CategoryFight:            {},
	CategoryIllegalParking:   {},
	CategoryIllegalGathering: {},
	CategoryDrone:            {},
	CategoryOther:            {},
}

// NormalizeCategory lower-cases and trims the input and falls back to
// CategoryOther for anything outside the enumeration, including empty input.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validCategories[c]; ok {
		return c
	}
	return CategoryOther
}

var ErrReportNotFound = errors.New("report not found")
var ErrForbidden = errors.New("access forbidden")

// Report is a single citizen-submitted incident record.
//
// ReportedAt is stamped server-side at creation and never changes afterwards.
// UserID is nil for anonymous submissions; the submitting IP is recorded for
// every report and serves as the throttling key when no user is attached.
type Report struct {
	ID         string    `json:"id" bson:"_id"`
	ReportedAt time.Time `json:"reportedAt" bson:"reported_at"`
	Latitude   float64   `json:"latitude" bson:"latitude"`
	Longitude  float64   `json:"longitude" bson:"longitude"`
	Category   Category  `json:"category" bson:"category"`
	Message    string    `json:"message,omitempty" bson:"message,omitempty"`
	UserID     *string   `json:"userId,omitempty" bson:"user_id,omitempty"`
	IPAddress  string    `json:"ipAddress" bson:"ip_address"`
}

// OwnedBy reports whether the report belongs to the given user.
// Anonymous reports belong to nobody.
func (r *Report) OwnedBy(userID string) bool {
	return r.UserID != nil && *r.UserID == userID
}
