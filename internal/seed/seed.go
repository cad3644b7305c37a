// Package seed loads the demo community the portal starts with.
package seed

import (
	"fmt"
	"time"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/store"
)

// DefaultPassword is shared by every seeded account
const DefaultPassword = "Password123!"

const day = 24 * time.Hour

type account struct {
	id, name, email, bio, cv string
	role                     models.RoleType
}

var accounts = []account{
	{"user-1", "Alex Johnson", "admin@majlis.local", "Majlis coordinator and learning event organizer.", "", models.RoleAdmin},
	{"user-2", "Maria Garcia", "maria@majlis.local", "Cloud track mentor with a focus on serverless architecture.", "", models.RoleMember},
	{"user-3", "Chen Wei", "chen@majlis.local", "Frontend mentor specializing in modern UI/UX and accessibility.", "", models.RoleMember},
	{"user-4", "David Miller", "david@majlis.local", "Data Science mentor, helping with Python and machine learning.", "", models.RoleMember},
	{"user-5", "Aisha Bello", "aisha@majlis.local", "Project Management professional and agile coach.", "", models.RoleMember},
	{"user-6", "Fatimah Al-Baik", "fatimah@student.majlis.local", "Eager to learn about cloud technologies and DevOps.", "/sample-cv.pdf", models.RoleStudent},
	{"user-7", "Omar Khan", "omar@student.majlis.local", "Aspiring full-stack developer.", "/sample-cv.pdf", models.RoleStudent},
	{"user-8", "Lina Haddad", "lina@student.majlis.local", "Focusing on UI design and user experience research.", "/sample-cv.pdf", models.RoleStudent},
	{"user-9", "Yusuf Saleh", "yusuf@student.majlis.local", "Learning data analysis with Python and SQL.", "/sample-cv.pdf", models.RoleStudent},
	{"user-10", "Sara Rahman", "sara@student.majlis.local", "Interested in cybersecurity and network infrastructure.", "", models.RoleStudent},
}

// Users builds the seeded accounts, all sharing one password hash
func Users(hasher store.PasswordHasher, now time.Time) ([]models.User, error) {
	hash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := make([]models.User, 0, len(accounts))
	for _, a := range accounts {
		u := models.User{
			ID:           a.id,
			Name:         a.name,
			Email:        a.email,
			Role:         a.role,
			Bio:          a.bio,
			PasswordHash: hash,
			CreatedAt:    now.Add(-30 * day),
		}
		if a.cv != "" {
			cv := a.cv
			u.CVURL = &cv
		}
		users = append(users, u)
	}
	return users, nil
}

func ratings(pairs ...int) []models.Rating {
	out := make([]models.Rating, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Rating{UserID: fmt.Sprintf("user-%d", pairs[i]), Rating: pairs[i+1]})
	}
	return out
}

// Posts builds the seeded feed. Authors are snapshots of users.
func Posts(users []models.User, now time.Time) []models.Post {
	author := func(id string) models.Author {
		for _, u := range users {
			if u.ID == id {
				return u.Snapshot()
			}
		}
		return models.Author{ID: id}
	}

	return []models.Post{
		{
			ID:        "post-1",
			Type:      models.PostTypeAnnouncement,
			Title:     "Q3 Learning Summit Schedule",
			Content:   "The schedule for our Q3 Learning Summit is now live! Please review the session list and register for the workshops you plan to attend. All sessions will be recorded.",
			Author:    author("user-1"),
			CreatedAt: now.Add(-2 * day),
		},
		{
			ID:        "post-2",
			Type:      models.PostTypeActivity,
			Title:     "Cloud Practitioner Study Group",
			Content:   "Our weekly study group for the Cloud Practitioner certification meets on Tuesdays and Thursdays at 4 PM. All are welcome to join and prepare together.",
			Author:    author("user-2"),
			CreatedAt: now.Add(-1 * day),
			Ratings:   ratings(6, 5, 7, 5, 8, 4, 9, 5, 10, 4, 3, 5),
			Media:     &models.Media{URL: "https://images.unsplash.com/photo-1516542076529-1ea3854896f2?q=80&w=800", Kind: models.MediaImage},
		},
		{
			ID:        "post-3",
			Type:      models.PostTypePost,
			Title:     "Great Resource for Learning TypeScript",
			Content:   "I found this excellent tutorial series on advanced TypeScript patterns. It has really helped clarify concepts like generics and decorators. Highly recommend for frontend developers!",
			Author:    author("user-7"),
			CreatedAt: now.Add(-3 * day),
		},
		{
			ID:        "post-4",
			Type:      models.PostTypePost,
			Title:     "Thanks to the Mentors!",
			Content:   "Just wanted to give a huge thank you to the mentors for their time and guidance over the past few weeks. The mock interview sessions were incredibly helpful.",
			Author:    author("user-8"),
			CreatedAt: now,
		},
		{
			ID:        "post-5",
			Type:      models.PostTypeActivity,
			Title:     "Data Visualization Workshop Recap",
			Content:   "For those who missed it, here is a summary of our workshop on data visualization with D3.js. You can find the code examples and presentation slides attached.",
			Author:    author("user-5"),
			CreatedAt: now.Add(-5 * day),
			Ratings:   ratings(6, 4, 7, 5, 8, 5),
		},
		{
			ID:        "post-6",
			Type:      models.PostTypeActivity,
			Title:     "Mock Interview Circle",
			Content:   "We are starting a new mock interview circle for students preparing for technical interviews. This is a great opportunity to practice and get constructive feedback.",
			Author:    author("user-3"),
			CreatedAt: now.Add(-4 * day),
			Ratings:   ratings(6, 5, 7, 5, 8, 5, 9, 5, 10, 5),
			Media:     &models.Media{URL: "https://videos.pexels.com/video-files/3209828/3209828-sd_640_360_25fps.mp4", Kind: models.MediaVideo},
		},
	}
}

// Feedback builds the seeded feedback queue
func Feedback(users []models.User, now time.Time) []models.Feedback {
	author := func(id string) models.Author {
		for _, u := range users {
			if u.ID == id {
				return u.Snapshot()
			}
		}
		return models.Author{ID: id}
	}

	return []models.Feedback{
		{
			ID:        "feedback-1",
			Author:    author("user-7"),
			Title:     "Improve onboarding checklist",
			Content:   "The initial onboarding checklist for new members could be more detailed. Specifically, adding a step about setting up local development environments would be helpful.",
			Status:    models.FeedbackPending,
			CreatedAt: now.Add(-6 * day),
		},
		{
			ID:        "feedback-2",
			Author:    author("user-8"),
			Title:     "Clarify role upgrade process",
			Content:   "It would be beneficial to have a clear document outlining the criteria and process for a Student to be promoted to a Member role.",
			Status:    models.FeedbackPending,
			CreatedAt: now.Add(-3 * day),
		},
		{
			ID:        "feedback-3",
			Author:    author("user-3"),
			Title:     "Add keyboard shortcuts",
			Content:   "For power users, adding keyboard shortcuts for common actions like creating a post or submitting feedback would improve efficiency.",
			Status:    models.FeedbackOpened,
			CreatedAt: now.Add(-10 * day),
			Reply: &models.FeedbackReply{
				Text:      "Thank you for the suggestion! We have added this to our development backlog for the next release cycle. We appreciate your input on improving the platform experience.",
				AuthorID:  "user-1",
				CreatedAt: now.Add(-9 * day),
			},
		},
	}
}

// Load replaces the store contents with the demo data
func Load(st *store.Store, hasher store.PasswordHasher, now time.Time) error {
	users, err := Users(hasher, now)
	if err != nil {
		return err
	}
	st.Seed(users, Posts(users, now), Feedback(users, now))
	return nil
}
