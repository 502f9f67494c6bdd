package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Plastic    WasteType = "plastic"
	Paper      WasteType = "paper"
	Glass      WasteType = "glass"
	Metal      WasteType = "metal"
	Organic    WasteType = "organic"
	Electronic WasteType = "electronic"
	Other      WasteType = "other"
)

// DisposalRecycling is the only disposal method the metrics treat specially.
const DisposalRecycling = "recycling"

// DateLayout is the ISO calendar date layout used for entry dates.
const DateLayout = "2006-01-02"

type (
	WasteType string

	Date struct {
		time.Time
	}

	// PollutionFactors are kg of pollutant (or CO2-equivalent) per kg of waste.
	PollutionFactors struct {
		Air    float64
		Water  float64
		Soil   float64
		Carbon float64
	}

	// Attachment is a file embedded into an entry as a data URL.
	Attachment struct {
		Name         string `json:"name"`
		SizeBytes    int64  `json:"size"`
		MediaType    string `json:"type"`
		LastModified int64  `json:"lastModified"` // Unix milliseconds
		Data         string `json:"data"`
	}

	// Entry is one logged waste disposal event. Entries are never edited after creation.
	Entry struct {
		ID             string       `json:"id,omitempty"`
		Type           WasteType    `json:"type"`
		WeightKg       float64      `json:"weight"`
		DisposalMethod string       `json:"disposalMethod"`
		Date           Date         `json:"date"`
		RecordedAt     time.Time    `json:"timestamp"`
		Attachments    []Attachment `json:"files"`
	}
)

var (
	ErrInvalidWasteType      = errors.New("invalid waste type")
	ErrInvalidWeight         = errors.New("invalid weight")
	ErrInvalidDate           = errors.New("invalid date")
	ErrEmptyDisposalMethod   = errors.New("empty disposal method")
	ErrDisposalMethodTooLong = errors.New("disposal method too long (max 64 characters)")
	ErrInvalidMonth          = errors.New("invalid month")
	ErrInvalidAttachment     = errors.New("invalid attachment")
)

// pollutionFactors is static configuration; nothing writes to it after init.
var pollutionFactors = map[WasteType]PollutionFactors{
	Plastic:    {Air: 0.8, Water: 0.3, Soil: 0.2, Carbon: 2.1},
	Paper:      {Air: 0.2, Water: 0.1, Soil: 0.05, Carbon: 0.4},
	Glass:      {Air: 0.1, Water: 0.05, Soil: 0.02, Carbon: 0.2},
	Metal:      {Air: 0.3, Water: 0.1, Soil: 0.1, Carbon: 0.8},
	Organic:    {Air: 0.4, Water: 0.2, Soil: 0.1, Carbon: 0.6},
	Electronic: {Air: 1.2, Water: 0.8, Soil: 0.5, Carbon: 3.2},
	Other:      {Air: 0.5, Water: 0.2, Soil: 0.15, Carbon: 1.0},
}

// WasteTypes returns every known waste type in display order.
func WasteTypes() []WasteType {
	return []WasteType{Plastic, Paper, Glass, Metal, Organic, Electronic, Other}
}

// DisposalMethods lists the methods offered by the entry forms.
func DisposalMethods() []string {
	return []string{DisposalRecycling, "landfill", "composting", "incineration"}
}

// FactorsFor returns the pollution factors for t.
func FactorsFor(t WasteType) (PollutionFactors, bool) {
	f, ok := pollutionFactors[t]
	return f, ok
}

// ParseWasteType normalizes s and checks it against the factor table.
func ParseWasteType(s string) (WasteType, error) {
	t := WasteType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidWasteType
	}
	return t, nil
}

func (t WasteType) Valid() bool {
	_, ok := pollutionFactors[t]
	return ok
}

func (t WasteType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns now's calendar date, as seen in now's location, as a UTC Date.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// MonthKey returns the YYYY-MM key the date falls into.
func (d Date) MonthKey() MonthKey {
	return MonthKey(d.Time.Format(monthLayout))
}

func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (a Attachment) Validate() error {
	if strings.TrimSpace(a.Name) == "" || a.SizeBytes < 0 || a.MediaType == "" {
		return ErrInvalidAttachment
	}
	return nil
}

// NewEntry validates the inputs and builds an entry with a fresh ID.
func NewEntry(t WasteType, weightKg float64, method string, date Date, recordedAt time.Time, files []Attachment) (Entry, error) {
	e := Entry{
		ID:             uuid.NewString(),
		Type:           t,
		WeightKg:       weightKg,
		DisposalMethod: strings.TrimSpace(method),
		Date:           date,
		RecordedAt:     recordedAt.UTC(),
		Attachments:    append([]Attachment(nil), files...),
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidWasteType
	}
	if e.WeightKg <= 0 || math.IsNaN(e.WeightKg) || math.IsInf(e.WeightKg, 0) {
		return ErrInvalidWeight
	}
	if strings.TrimSpace(e.DisposalMethod) == "" {
		return ErrEmptyDisposalMethod
	}
	if len(e.DisposalMethod) > 64 {
		return ErrDisposalMethodTooLong
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	for _, a := range e.Attachments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsRecycling reports whether the entry was disposed of through recycling.
func (e Entry) IsRecycling() bool {
	return e.DisposalMethod == DisposalRecycling
}

// Factors returns the entry's pollution factors; zero for unknown types.
func (e Entry) Factors() PollutionFactors {
	return pollutionFactors[e.Type]
}
