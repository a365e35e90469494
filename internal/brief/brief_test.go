package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThemes = []Theme{{ID: "ios26"}, {ID: "cyber"}}

func TestNewStoreDefaultsTheme(t *testing.T) {
	s := NewStore(testThemes)
	assert.Equal(t, "ios26", s.Brief().SelectedTheme)
	assert.Empty(t, s.Brief().FeaturesNeeded)
}

func TestSetTextFields(t *testing.T) {
	s := NewStore(testThemes)
	require.NoError(t, s.Set(FieldName, "Айгерім"))
	require.NoError(t, s.Set(FieldBusinessName, "Aru Coffee"))
	require.NoError(t, s.Set(FieldCompetitors, "coffeeboom.kz"))

	b := s.Brief()
	assert.Equal(t, "Айгерім", b.Name)
	assert.Equal(t, "Aru Coffee", b.BusinessName)
	assert.Equal(t, "coffeeboom.kz", b.Competitors)
}

func TestSetRejectsUnknownAndWrongKind(t *testing.T) {
	s := NewStore(testThemes)
	assert.ErrorIs(t, s.Set(Field("favouriteColour"), "x"), ErrUnknownField)
	assert.ErrorIs(t, s.Set(FieldHasLogo, "true"), ErrFieldKind)
	assert.ErrorIs(t, s.SetFlag(FieldEmail, true), ErrFieldKind)
	assert.ErrorIs(t, s.SetFlag(Field("nope"), true), ErrUnknownField)
}

func TestChoiceFieldsStayInCatalog(t *testing.T) {
	s := NewStore(testThemes)

	assert.ErrorIs(t, s.Set(FieldWebsiteGoal, "world-domination"), ErrNotInCatalog)
	assert.ErrorIs(t, s.Set(FieldBudgetRange, "1 ₸"), ErrNotInCatalog)
	assert.ErrorIs(t, s.Set(FieldDeadline, "yesterday"), ErrNotInCatalog)
	assert.ErrorIs(t, s.SelectTheme("modern"), ErrNotInCatalog)

	require.NoError(t, s.Set(FieldWebsiteGoal, "booking"))
	require.NoError(t, s.SelectTheme("cyber"))
	require.NoError(t, s.Choose(FieldBudgetRange, 3))
	require.NoError(t, s.Choose(FieldDeadline, 0))

	b := s.Brief()
	assert.Equal(t, "booking", b.WebsiteGoal)
	assert.Equal(t, "cyber", b.SelectedTheme)
	assert.Equal(t, "500,000+ ₸", b.BudgetRange)
	assert.Equal(t, "1 апта", b.Deadline)

	require.NoError(t, s.Set(FieldWebsiteGoal, ""))
	assert.Empty(t, s.Brief().WebsiteGoal)
}

func TestChooseOutOfRange(t *testing.T) {
	s := NewStore(testThemes)
	assert.ErrorIs(t, s.Choose(FieldBusinessType, len(BusinessTypes)), ErrNotInCatalog)
	assert.ErrorIs(t, s.Choose(FieldBusinessType, -1), ErrNotInCatalog)
	assert.ErrorIs(t, s.Choose(FieldName, 0), ErrFieldKind)
}

func TestToggleFeatureKeepsSetSemantics(t *testing.T) {
	s := NewStore(testThemes)
	require.NoError(t, s.ToggleFeature("Блог"))
	require.NoError(t, s.ToggleFeature("Карта"))
	require.NoError(t, s.ToggleFeature("Галерея"))
	require.NoError(t, s.ToggleFeature("Карта"))

	assert.Equal(t, []string{"Блог", "Галерея"}, s.Brief().FeaturesNeeded)
	assert.ErrorIs(t, s.ToggleFeature("Telepathy"), ErrNotInCatalog)
}

func TestBriefReturnsCopy(t *testing.T) {
	s := NewStore(testThemes)
	require.NoError(t, s.ToggleFeature("Блог"))

	b := s.Brief()
	b.FeaturesNeeded[0] = "mutated"
	assert.Equal(t, []string{"Блог"}, s.Brief().FeaturesNeeded)
}

func TestFlags(t *testing.T) {
	s := NewStore(testThemes)
	require.NoError(t, s.ToggleFlag(FieldHasLogo))
	require.NoError(t, s.SetFlag(FieldHasPhotos, true))
	require.NoError(t, s.ToggleFlag(FieldHasPhotos))

	b := s.Brief()
	assert.True(t, b.HasLogo)
	assert.False(t, b.HasContent)
	assert.False(t, b.HasPhotos)
}

func TestValidators(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.c", true},
		{"owner@aru.kz", true},
		{"a@b", false},
		{"a b@c.d", false},
		{"@b.c", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidEmail(tt.email), tt.email)
	}

	assert.True(t, ValidPhone("+7 777 123 45 67"))
	assert.True(t, ValidPhone("  8777123456  "))
	assert.False(t, ValidPhone("  877712345 "))

	assert.True(t, NameReady(" Ai "))
	assert.False(t, NameReady(" A  "))
	assert.True(t, NameReady("Әл"))
}

func TestCanSubmit(t *testing.T) {
	b := LeadBrief{BusinessName: "Aru", Email: "a@b.c", Phone: "+77771234567"}
	assert.True(t, CanSubmit(b))
	assert.Empty(t, Problems(b))

	noName := b
	noName.BusinessName = ""
	assert.False(t, CanSubmit(noName))

	badEmail := b
	badEmail.Email = "a@b"
	assert.False(t, CanSubmit(badEmail))

	shortPhone := b
	shortPhone.Phone = "12345"
	assert.False(t, CanSubmit(shortPhone))
	assert.Equal(t, []Problem{{Field: FieldPhone, Err: ErrShortPhone}}, Problems(shortPhone))
}

func TestProblemsOnEmptyBrief(t *testing.T) {
	got := Problems(LeadBrief{})
	assert.Equal(t, []Problem{
		{Field: FieldBusinessName, Err: ErrRequired},
		{Field: FieldEmail, Err: ErrRequired},
		{Field: FieldPhone, Err: ErrRequired},
	}, got)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("featuresNeeded")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Empty(t, f)

	f, err = ParseField("budgetRange")
	require.NoError(t, err)
	assert.Equal(t, FieldBudgetRange, f)
	assert.True(t, f.IsChoice())
	assert.False(t, f.IsFlag())
}
