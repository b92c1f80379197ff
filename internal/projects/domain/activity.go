package domain

import (
	"sort"
	"time"

	profiles "github.com/freelog/freelog/internal/profiles/domain"
)

// ActivityType classifies an entry in a project's activity feed.
type ActivityType string

const (
	ActivityUpload  ActivityType = "upload"
	ActivityReview  ActivityType = "review"
	ActivityComment ActivityType = "comment"
)

// Activity is one feed entry. TitleKey and TitleValues are an i18n key and
// its placeholders; the presentation layer turns them into text.
type Activity struct {
	ID          string            `json:"id"`
	Type        ActivityType      `json:"type"`
	TitleKey    string            `json:"-"`
	TitleValues map[string]string `json:"-"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	User        string            `json:"user,omitempty"`
	UserRole    profiles.Role     `json:"user_role,omitempty"`
}

// BuildActivity derives the activity feed for a project, newest first.
func BuildActivity(p *Project) []Activity {
	var items []Activity
	for _, d := range p.Deliverables {
		for _, v := range d.Versions {
			items = append(items, Activity{
				ID:          "upload-" + v.ID,
				Type:        ActivityUpload,
				TitleKey:    "activity.upload",
				TitleValues: map[string]string{"deliverable": d.Name},
				Description: v.Comment,
				Date:        v.UploadedAt,
			})

			if v.ReviewedAt != nil {
				key := "activity.returned"
				if v.Status == StatusDelivered {
					key = "activity.approved"
				}
				items = append(items, Activity{
					ID:          "review-" + v.ID,
					Type:        ActivityReview,
					TitleKey:    key,
					TitleValues: map[string]string{"deliverable": d.Name, "status": string(v.Status)},
					Date:        *v.ReviewedAt,
				})
			}

			for _, c := range v.Comments {
				items = append(items, Activity{
					ID:          "comment-" + c.ID,
					Type:        ActivityComment,
					TitleKey:    "activity.comment",
					TitleValues: map[string]string{"user": c.UserName, "deliverable": d.Name},
					Description: c.Content,
					Date:        c.CreatedAt,
					User:        c.UserName,
					UserRole:    c.UserRole,
				})
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}
