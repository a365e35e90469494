// Package brief holds the visitor's answers while they move through the
// wizard and validates them before a lead is submitted.
package brief

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnknownField is returned when a field name doesn't match any brief field.
	ErrUnknownField = errors.New("brief: unknown field")
	// ErrFieldKind is returned when a boolean field is set with text or the reverse.
	ErrFieldKind = errors.New("brief: wrong field kind")
	// ErrNotInCatalog is returned when a choice is outside its catalog.
	ErrNotInCatalog = errors.New("brief: value not in catalog")
	ErrRequired     = errors.New("brief: required")
	ErrInvalidEmail = errors.New("brief: invalid email")
	ErrShortPhone   = errors.New("brief: phone too short")
)

// LeadBrief is everything the visitor told us about their business.
type LeadBrief struct {
	Name                string
	BusinessName        string
	BusinessType        string
	BusinessDescription string
	TargetAudience      string
	Email               string
	Phone               string
	SelectedTheme       string
	PreferredColors     string
	WebsiteGoal         string
	// FeaturesNeeded keeps insertion order and never holds duplicates.
	FeaturesNeeded  []string
	HasLogo         bool
	HasContent      bool
	HasPhotos       bool
	Competitors     string
	AdditionalNotes string
	BudgetRange     string
	Deadline        string
}

type Field string

const (
	FieldName                Field = "name"
	FieldBusinessName        Field = "businessName"
	FieldBusinessType        Field = "businessType"
	FieldBusinessDescription Field = "businessDescription"
	FieldTargetAudience      Field = "targetAudience"
	FieldEmail               Field = "email"
	FieldPhone               Field = "phone"
	FieldSelectedTheme       Field = "selectedTheme"
	FieldPreferredColors     Field = "preferredColors"
	FieldWebsiteGoal         Field = "websiteGoal"
	FieldHasLogo             Field = "hasLogo"
	FieldHasContent          Field = "hasContent"
	FieldHasPhotos           Field = "hasPhotos"
	FieldCompetitors         Field = "competitors"
	FieldAdditionalNotes     Field = "additionalNotes"
	FieldBudgetRange         Field = "budgetRange"
	FieldDeadline            Field = "deadline"
)

var fields = []Field{
	FieldName, FieldBusinessName, FieldBusinessType, FieldBusinessDescription,
	FieldTargetAudience, FieldEmail, FieldPhone, FieldSelectedTheme,
	FieldPreferredColors, FieldWebsiteGoal, FieldHasLogo, FieldHasContent,
	FieldHasPhotos, FieldCompetitors, FieldAdditionalNotes, FieldBudgetRange,
	FieldDeadline,
}

func ParseField(s string) (Field, error) {
	f := Field(s)
	if !slices.Contains(fields, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// IsFlag reports whether the field holds a boolean.
func (f Field) IsFlag() bool {
	return f == FieldHasLogo || f == FieldHasContent || f == FieldHasPhotos
}

// IsChoice reports whether the field only accepts catalog values.
func (f Field) IsChoice() bool {
	switch f {
	case FieldSelectedTheme, FieldWebsiteGoal, FieldBudgetRange, FieldDeadline, FieldBusinessType:
		return true
	}
	return false
}

// Store is the form state of one wizard session. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	brief  LeadBrief
	themes []Theme
}

// NewStore creates an empty brief whose theme defaults to the first of themes.
func NewStore(themes []Theme) *Store {
	s := &Store{themes: themes}
	if len(themes) > 0 {
		s.brief.SelectedTheme = themes[0].ID
	}
	return s
}

// Brief returns a copy of the current answers.
func (s *Store) Brief() LeadBrief {
	b := s.brief
	b.FeaturesNeeded = slices.Clone(s.brief.FeaturesNeeded)
	return b
}

// Set writes a text or choice field. An empty value clears a choice.
func (s *Store) Set(f Field, v string) error {
	if !slices.Contains(fields, f) {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if f.IsFlag() {
		return fmt.Errorf("%w: %s is a flag", ErrFieldKind, f)
	}
	if f.IsChoice() && v != "" {
		if !slices.Contains(s.catalog(f), v) {
			return fmt.Errorf("%w: %s=%q", ErrNotInCatalog, f, v)
		}
	}

	b := &s.brief
	switch f {
	case FieldName:
		b.Name = v
	case FieldBusinessName:
		b.BusinessName = v
	case FieldBusinessType:
		b.BusinessType = v
	case FieldBusinessDescription:
		b.BusinessDescription = v
	case FieldTargetAudience:
		b.TargetAudience = v
	case FieldEmail:
		b.Email = v
	case FieldPhone:
		b.Phone = v
	case FieldSelectedTheme:
		b.SelectedTheme = v
	case FieldPreferredColors:
		b.PreferredColors = v
	case FieldWebsiteGoal:
		b.WebsiteGoal = v
	case FieldCompetitors:
		b.Competitors = v
	case FieldAdditionalNotes:
		b.AdditionalNotes = v
	case FieldBudgetRange:
		b.BudgetRange = v
	case FieldDeadline:
		b.Deadline = v
	}
	return nil
}

func (s *Store) SetFlag(f Field, v bool) error {
	p, err := s.flag(f)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s *Store) ToggleFlag(f Field) error {
	p, err := s.flag(f)
	if err != nil {
		return err
	}
	*p = !*p
	return nil
}

// Choose picks the index-th catalog entry of a choice field.
func (s *Store) Choose(f Field, index int) error {
	if !f.IsChoice() {
		return fmt.Errorf("%w: %s is not a choice", ErrFieldKind, f)
	}
	values := s.catalog(f)
	if index < 0 || index >= len(values) {
		return fmt.Errorf("%w: %s[%d]", ErrNotInCatalog, f, index)
	}
	return s.Set(f, values[index])
}

// ToggleFeature adds the feature when absent and removes it when present.
func (s *Store) ToggleFeature(feature string) error {
	if !slices.Contains(Features, feature) {
		return fmt.Errorf("%w: feature %q", ErrNotInCatalog, feature)
	}
	if i := slices.Index(s.brief.FeaturesNeeded, feature); i >= 0 {
		s.brief.FeaturesNeeded = slices.Delete(s.brief.FeaturesNeeded, i, i+1)
		return nil
	}
	s.brief.FeaturesNeeded = append(s.brief.FeaturesNeeded, feature)
	return nil
}

func (s *Store) SelectTheme(id string) error {
	return s.Set(FieldSelectedTheme, id)
}

func (s *Store) flag(f Field) (*bool, error) {
	switch f {
	case FieldHasLogo:
		return &s.brief.HasLogo, nil
	case FieldHasContent:
		return &s.brief.HasContent, nil
	case FieldHasPhotos:
		return &s.brief.HasPhotos, nil
	}
	if slices.Contains(fields, f) {
		return nil, fmt.Errorf("%w: %s is not a flag", ErrFieldKind, f)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
}

func (s *Store) catalog(f Field) []string {
	switch f {
	case FieldSelectedTheme:
		return themeIDs(s.themes)
	case FieldWebsiteGoal:
		return goalIDs()
	case FieldBudgetRange:
		return BudgetRanges
	case FieldDeadline:
		return Deadlines
	case FieldBusinessType:
		return BusinessTypes
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone only checks length; formatting is left to the visitor.
func ValidPhone(phone string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(phone)) >= 10
}

// NameReady reports whether the visitor typed enough of a name to continue.
func NameReady(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= 2
}

// CanSubmit reports whether the brief has the contact details a lead needs.
func CanSubmit(b LeadBrief) bool {
	return b.BusinessName != "" && b.Email != "" && b.Phone != "" &&
		ValidEmail(b.Email) && ValidPhone(b.Phone)
}

// Problem is an inline validation message for a field.
type Problem struct {
	Field Field
	Err   error
}

// Problems lists what blocks submission. Format errors are only reported for
// fields the visitor started typing into.
func Problems(b LeadBrief) []Problem {
	var out []Problem
	if b.BusinessName == "" {
		out = append(out, Problem{Field: FieldBusinessName, Err: ErrRequired})
	}
	switch {
	case b.Email == "":
		out = append(out, Problem{Field: FieldEmail, Err: ErrRequired})
	case !ValidEmail(b.Email):
		out = append(out, Problem{Field: FieldEmail, Err: ErrInvalidEmail})
	}
	switch {
	case b.Phone == "":
		out = append(out, Problem{Field: FieldPhone, Err: ErrRequired})
	case !ValidPhone(b.Phone):
		out = append(out, Problem{Field: FieldPhone, Err: ErrShortPhone})
	}
	return out
}
