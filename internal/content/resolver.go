// Package content resolves stored CMS pages into language-specific render trees.
package content

import (
	"sort"
	"strings"

	"wellspring/internal/model"

	"github.com/google/uuid"
)

// Tier names the source a block's content was taken from.
type Tier string

const (
	TierRequested Tier = "requested"
	TierFallback  Tier = "fallback"
	TierDefault   Tier = "default"
)

// RenderTree is a page ready for display in one language.
type RenderTree struct {
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Lang        string            `json:"lang"`
	Sections    []RenderedSection `json:"sections"`
}

type RenderedSection struct {
	ID       uuid.UUID       `json:"id"`
	Type     string          `json:"type"`
	Position int             `json:"position"`
	Settings Settings        `json:"settings"`
	Blocks   []RenderedBlock `json:"blocks"`
}

type RenderedBlock struct {
	ID       uuid.UUID `json:"id"`
	Type     string    `json:"type"`
	Position int       `json:"position"`
	Content  string    `json:"content"`
	Lang     string    `json:"lang,omitempty"`
	Source   Tier      `json:"source"`
}

// Resolve builds the render tree of page for lang. Invisible sections and
// sections of an unknown type are left out; the rest are ordered by position.
// Each block independently takes its translation in lang, else in fallbackLang,
// else its own default content. Resolve never fails.
func Resolve(page model.Page, sections []model.Section, blocks []model.Block, lang, fallbackLang string) RenderTree {
	lang = normaliseLang(lang)
	fallbackLang = normaliseLang(fallbackLang)

	tree := RenderTree{
		Slug:        page.Slug,
		Title:       page.Title,
		Description: page.Description,
		Lang:        lang,
		Sections:    []RenderedSection{},
	}

	visible := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if s.Visible {
			visible = append(visible, s)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Position < visible[j].Position
	})

	bySection := make(map[uuid.UUID][]model.Block, len(visible))
	for _, b := range blocks {
		bySection[b.SectionID] = append(bySection[b.SectionID], b)
	}

	for _, s := range visible {
		settings := DecodeSettings(s.Type, s.Settings)
		if _, unknown := settings.(UnknownSettings); unknown {
			continue
		}

		sectionBlocks := bySection[s.ID]
		sort.SliceStable(sectionBlocks, func(i, j int) bool {
			return sectionBlocks[i].Position < sectionBlocks[j].Position
		})

		rendered := RenderedSection{
			ID:       s.ID,
			Type:     s.Type,
			Position: s.Position,
			Settings: settings,
			Blocks:   make([]RenderedBlock, 0, len(sectionBlocks)),
		}
		for _, b := range sectionBlocks {
			rendered.Blocks = append(rendered.Blocks, resolveBlock(b, lang, fallbackLang))
		}
		tree.Sections = append(tree.Sections, rendered)
	}

	return tree
}

func resolveBlock(b model.Block, lang, fallbackLang string) RenderedBlock {
	out := RenderedBlock{
		ID:       b.ID,
		Type:     b.Type,
		Position: b.Position,
		Content:  b.Content,
		Source:   TierDefault,
	}

	if t, ok := findTranslation(b.Translations, lang); ok {
		out.Content, out.Lang, out.Source = t.Content, lang, TierRequested
		return out
	}
	if fallbackLang != "" && fallbackLang != lang {
		if t, ok := findTranslation(b.Translations, fallbackLang); ok {
			out.Content, out.Lang, out.Source = t.Content, fallbackLang, TierFallback
		}
	}
	return out
}

func findTranslation(translations []model.BlockTranslation, lang string) (model.BlockTranslation, bool) {
	if lang == "" {
		return model.BlockTranslation{}, false
	}
	for _, t := range translations {
		if normaliseLang(t.Lang) == lang {
			return t, true
		}
	}
	return model.BlockTranslation{}, false
}

func normaliseLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
