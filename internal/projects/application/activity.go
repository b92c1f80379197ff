package application

import (
	"context"

	"github.com/freelog/freelog/internal/i18n"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

// ActivityEntry is a feed item with its title rendered for one locale.
type ActivityEntry struct {
	projects.Activity
	Title string `json:"title"`
	When  string `json:"when"`
}

// Activity returns the project's feed, newest first, localized to locale.
func (s *Service) Activity(ctx context.Context, viewer *profiles.Profile, projectID string, locale i18n.Locale) ([]ActivityEntry, error) {
	p, err := s.Get(ctx, viewer, projectID)
	if err != nil {
		return nil, err
	}
	dict, err := i18n.Get(locale)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := projects.BuildActivity(p)
	out := make([]ActivityEntry, len(items))
	for i, a := range items {
		out[i] = ActivityEntry{
			Activity: a,
			Title:    i18n.T(dict, a.TitleKey, a.TitleValues),
			When:     i18n.FormatRelativeTime(now, a.Date, dict),
		}
	}
	return out, nil
}
