package content

import (
	"encoding/json"
)

// Section types understood by the renderer.
const (
	SectionHero        = "hero"
	SectionRichText    = "richText"
	SectionServices    = "services"
	SectionImageBanner = "imageBanner"
	SectionText        = "text"
)

// Settings is the decoded, type-specific configuration of a section.
// Exactly one variant exists per known section type; anything else decodes to
// UnknownSettings.
type Settings interface {
	SectionType() string
}

type HeroSettings struct {
	Title           string `json:"title,omitempty"`
	Subtitle        string `json:"subtitle,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	CTAText         string `json:"ctaText,omitempty"`
	CTALink         string `json:"ctaLink,omitempty"`
}

type RichTextSettings struct {
	Alignment string `json:"alignment,omitempty"`
	MaxWidth  string `json:"maxWidth,omitempty"`
}

type ServicesSettings struct {
	Title        string   `json:"title,omitempty"`
	Columns      int      `json:"columns,omitempty"`
	ShowPrices   bool     `json:"showPrices"`
	ServiceSlugs []string `json:"serviceSlugs,omitempty"`
}

type ImageBannerSettings struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Alt      string `json:"alt,omitempty"`
	Height   string `json:"height,omitempty"`
	Overlay  bool   `json:"overlay"`
}

type TextSettings struct {
	Alignment string `json:"alignment,omitempty"`
}

// UnknownSettings keeps the raw document of a section type this build does not know.
type UnknownSettings struct {
	Type string          `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

func (HeroSettings) SectionType() string        { return SectionHero }
func (RichTextSettings) SectionType() string    { return SectionRichText }
func (ServicesSettings) SectionType() string    { return SectionServices }
func (ImageBannerSettings) SectionType() string { return SectionImageBanner }
func (TextSettings) SectionType() string        { return SectionText }
func (u UnknownSettings) SectionType() string   { return u.Type }

// DecodeSettings turns the stored settings document of a section into its
// variant. Malformed or empty documents of a known type yield that type's zero
// settings, so bad admin input degrades a section instead of failing the page.
func DecodeSettings(sectionType string, raw json.RawMessage) Settings {
	switch sectionType {
	case SectionHero:
		var s HeroSettings
		decodeInto(raw, &s)
		return s
	case SectionRichText:
		var s RichTextSettings
		decodeInto(raw, &s)
		return s
	case SectionServices:
		s := ServicesSettings{Columns: 3}
		decodeInto(raw, &s)
		return s
	case SectionImageBanner:
		var s ImageBannerSettings
		decodeInto(raw, &s)
		return s
	case SectionText:
		var s TextSettings
		decodeInto(raw, &s)
		return s
	default:
		return UnknownSettings{Type: sectionType, Raw: raw}
	}
}

// IsKnownSectionType reports whether sectionType has a settings variant.
func IsKnownSectionType(sectionType string) bool {
	_, unknown := DecodeSettings(sectionType, nil).(UnknownSettings)
	return !unknown
}

func decodeInto(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}
