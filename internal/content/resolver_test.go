package content

import (
	"encoding/json"
	"testing"

	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() model.Page {
	return model.Page{ID: uuid.New(), Slug: "home", Title: "Home", Status: model.PageStatusPublished}
}

func section(page model.Page, typ string, position int, visible bool) model.Section {
	return model.Section{ID: uuid.New(), PageID: page.ID, Type: typ, Position: position, Visible: visible}
}

func block(s model.Section, position int, content string, translations map[string]string) model.Block {
	b := model.Block{ID: uuid.New(), SectionID: s.ID, Type: "text", Position: position, Content: content}
	for lang, text := range translations {
		b.Translations = append(b.Translations, model.BlockTranslation{ID: uuid.New(), BlockID: b.ID, Lang: lang, Content: text})
	}
	return b
}

func TestResolve_TranslationFallback(t *testing.T) {
	page := testPage()
	s := section(page, SectionText, 0, true)
	b := block(s, 0, "default", map[string]string{"en": "A"})

	tests := []struct {
		name           string
		lang           string
		fallback       string
		expected       string
		expectedSource Tier
	}{
		{"requested language present", "en", "sl", "A", TierRequested},
		{"falls back to configured language", "sl", "en", "A", TierFallback},
		{"falls back to default content", "sl", "de", "default", TierDefault},
		{"language match is case-insensitive", "EN", "", "A", TierRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Resolve(page, []model.Section{s}, []model.Block{b}, tt.lang, tt.fallback)

			require.Len(t, tree.Sections, 1)
			require.Len(t, tree.Sections[0].Blocks, 1)
			assert.Equal(t, tt.expected, tree.Sections[0].Blocks[0].Content)
			assert.Equal(t, tt.expectedSource, tree.Sections[0].Blocks[0].Source)
		})
	}
}

func TestResolve_FallbackAppliesPerBlock(t *testing.T) {
	page := testPage()
	s := section(page, SectionRichText, 0, true)
	blocks := []model.Block{
		block(s, 0, "one", map[string]string{"sl": "ena"}),
		block(s, 1, "two", map[string]string{"en": "TWO"}),
		block(s, 2, "three", nil),
	}

	tree := Resolve(page, []model.Section{s}, blocks, "sl", "en")

	got := tree.Sections[0].Blocks
	require.Len(t, got, 3)
	assert.Equal(t, "ena", got[0].Content)
	assert.Equal(t, "TWO", got[1].Content)
	assert.Equal(t, "three", got[2].Content)
}

func TestResolve_SectionOrderingAndVisibility(t *testing.T) {
	page := testPage()
	sections := []model.Section{
		section(page, SectionText, 2, true),
		section(page, SectionText, 0, true),
		section(page, SectionHero, 5, false),
		section(page, SectionText, 1, true),
	}

	tree := Resolve(page, sections, nil, "en", "en")

	require.Len(t, tree.Sections, 3)
	for i, s := range tree.Sections {
		assert.Equal(t, i, s.Position)
		assert.NotEqual(t, SectionHero, s.Type)
	}
}

func TestResolve_BlocksOrderedByPosition(t *testing.T) {
	page := testPage()
	s := section(page, SectionText, 0, true)
	blocks := []model.Block{
		block(s, 3, "c", nil),
		block(s, 1, "a", nil),
		block(s, 2, "b", nil),
	}

	tree := Resolve(page, []model.Section{s}, blocks, "en", "en")

	var contents []string
	for _, b := range tree.Sections[0].Blocks {
		contents = append(contents, b.Content)
	}
	assert.Equal(t, []string{"a", "b", "c"}, contents)
}

func TestResolve_EmptyInputs(t *testing.T) {
	page := testPage()

	tree := Resolve(page, nil, nil, "en", "en")
	assert.NotNil(t, tree.Sections)
	assert.Empty(t, tree.Sections)

	s := section(page, SectionHero, 0, true)
	tree = Resolve(page, []model.Section{s}, nil, "en", "en")
	require.Len(t, tree.Sections, 1)
	assert.NotNil(t, tree.Sections[0].Blocks)
	assert.Empty(t, tree.Sections[0].Blocks)
}

func TestResolve_UnknownSectionTypeOmitted(t *testing.T) {
	page := testPage()
	sections := []model.Section{
		section(page, "testimonials", 0, true),
		section(page, SectionText, 1, true),
	}

	tree := Resolve(page, sections, nil, "en", "en")

	require.Len(t, tree.Sections, 1)
	assert.Equal(t, SectionText, tree.Sections[0].Type)
}

func TestResolve_IgnoresBlocksOfOtherSections(t *testing.T) {
	page := testPage()
	s := section(page, SectionText, 0, true)
	stray := block(model.Section{ID: uuid.New()}, 0, "stray", nil)

	tree := Resolve(page, []model.Section{s}, []model.Block{stray}, "en", "en")

	assert.Empty(t, tree.Sections[0].Blocks)
}

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name        string
		sectionType string
		raw         string
		expected    Settings
	}{
		{
			name:        "hero",
			sectionType: SectionHero,
			raw:         `{"title":"Breathe","ctaText":"Book","ctaLink":"/services"}`,
			expected:    HeroSettings{Title: "Breathe", CTAText: "Book", CTALink: "/services"},
		},
		{
			name:        "services defaults columns",
			sectionType: SectionServices,
			raw:         `{"showPrices":true}`,
			expected:    ServicesSettings{Columns: 3, ShowPrices: true},
		},
		{
			name:        "image banner",
			sectionType: SectionImageBanner,
			raw:         `{"imageUrl":"https://cdn/x.jpg","overlay":true}`,
			expected:    ImageBannerSettings{ImageURL: "https://cdn/x.jpg", Overlay: true},
		},
		{
			name:        "malformed known type yields zero settings",
			sectionType: SectionRichText,
			raw:         `{"alignment":`,
			expected:    RichTextSettings{},
		},
		{
			name:        "empty document",
			sectionType: SectionText,
			raw:         ``,
			expected:    TextSettings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeSettings(tt.sectionType, json.RawMessage(tt.raw))
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.sectionType, got.SectionType())
		})
	}
}

func TestDecodeSettings_Unknown(t *testing.T) {
	got := DecodeSettings("carousel", json.RawMessage(`{"speed":3}`))

	unknown, ok := got.(UnknownSettings)
	require.True(t, ok)
	assert.Equal(t, "carousel", unknown.SectionType())
	assert.JSONEq(t, `{"speed":3}`, string(unknown.Raw))
	assert.False(t, IsKnownSectionType("carousel"))
	assert.True(t, IsKnownSectionType(SectionHero))
}
