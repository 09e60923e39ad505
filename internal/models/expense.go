package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryHealth,
	CategoryUtilities,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryNames returns the categories joined for use in messages.
func CategoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Amount is a monetary value stored as integer cents.
// It is exchanged with clients as a decimal JSON number.
type Amount int64

// MaxAmount is the largest amount a single expense may carry. Per-owner
// sums of capped amounts stay well inside int64 cents.
const MaxAmount Amount = 1_000_000_000 * 100

// ValidAmount reports whether v is a positive amount of at least one cent
// and at most MaxAmount.
func ValidAmount(v float64) bool {
	if !(v > 0) || v > MaxAmount.Float() {
		return false
	}
	return AmountFromFloat(v) > 0
}

// AmountFromFloat converts a decimal value to cents, rounding half away from zero.
func AmountFromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Float returns the amount in decimal units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

func (a Amount) String() string {
	return strconv.FormatFloat(a.Float(), 'f', 2, 64)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Float(), 'f', -1, 64)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	*a = AmountFromFloat(v)
	return nil
}

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date. The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts either a plain date (2024-03-15) or an RFC 3339
// timestamp, in which case the date part in the timestamp's offset is used.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// DaysUntil returns the number of whole days from d to other.
// Both dates are midnight UTC, so the Unix difference divides evenly.
func (d Date) DaysUntil(other Date) int {
	return int((other.Unix() - d.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense is a single spending record owned by one user.
type Expense struct {
	ID          string    `json:"id"`
	Amount      Amount    `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Date        Date      `json:"date"`
	OwnerID     string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
