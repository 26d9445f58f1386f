package feed

import (
	"fmt"
	"strings"
)

const (
	ProfileHome    = "home"
	ProfileWelcome = "welcome"

	DefaultPageSize   = 20
	DefaultDisplayCap = 4
)

// Profile is a named feed configuration.
type Profile struct {
	Name       string
	Query      string
	PageSize   int
	DisplayCap int
	Vocabulary Vocabulary
}

// Request converts the profile into a fetch request.
func (p Profile) Request() Request {
	return Request{
		Query:      p.Query,
		PageSize:   p.PageSize,
		DisplayCap: p.DisplayCap,
		Vocabulary: p.Vocabulary,
	}
}

// DefaultProfiles returns the built-in home and welcome profiles.
// The welcome page searches only for cancer and lists its terms in a
// different order; neither list is treated as authoritative.
func DefaultProfiles() Profiles {
	welcome, _ := NewVocabulary("cancer", "tumor", "oncology", "health", "treatment", "diagnosis", "medicine", "thyroid")
	return Profiles{
		ProfileHome: {
			Name:       ProfileHome,
			Query:      "cancer OR thyroid",
			PageSize:   DefaultPageSize,
			DisplayCap: DefaultDisplayCap,
			Vocabulary: DefaultVocabulary(),
		},
		ProfileWelcome: {
			Name:       ProfileWelcome,
			Query:      "cancer",
			PageSize:   DefaultPageSize,
			DisplayCap: DefaultDisplayCap,
			Vocabulary: welcome,
		},
	}
}

// Profiles is a lookup of named profiles.
type Profiles map[string]Profile

// Lookup finds a profile by case-insensitive name.
func (p Profiles) Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = ProfileHome
	}
	prof, ok := p[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q", ErrUnknownProfile, name)
	}
	return prof, nil
}
