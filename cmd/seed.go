package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	briefsapp "github.com/freelog/freelog/internal/briefs/application"
	"github.com/freelog/freelog/internal/calendar"
	clients "github.com/freelog/freelog/internal/clients/domain"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/frontend"
	"github.com/freelog/freelog/internal/infrastructure/oauth"
	"github.com/freelog/freelog/internal/log"
	"github.com/freelog/freelog/internal/money"
	profilesapp "github.com/freelog/freelog/internal/profiles/application"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projectsapp "github.com/freelog/freelog/internal/projects/application"
	projects "github.com/freelog/freelog/internal/projects/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample clients, projects and payments",
	Long: `Create a demo freelancer with five clients, three projects, their
deliverables, versions, reviews and payments. Profiles are created the way
the dev identity provider would, so signing in with the same email through
/auth/dev lands on the seeded data. Does nothing when the freelancer
already has clients.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("freelancer", "Jane Doe <jane@freelog.dev>", "freelancer identity as a mail address")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	freelancer, _ := cmd.Flags().GetString("freelancer")
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	created, err := seed(cmd.Context(), a.services, freelancer)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !created {
		_, _ = fmt.Fprintln(out, "Sample data already present")
		return nil
	}
	_, _ = fmt.Fprintln(out, "Sample data created; sign in as", freelancer)
	return nil
}

// samplePDF stands in for every seeded deliverable file.
const samplePDF = "%PDF-1.4\n% freelog sample deliverable\n%%EOF\n"

type sampleVersion struct {
	file, comment string
	review        projects.DeliverableStatus // empty leaves the version in review
	reviewNote    string
	thread        []sampleComment
}

type sampleComment struct {
	byClient bool
	content  string
}

type sampleDeliverable struct {
	name, description, due string
	versions               []sampleVersion
}

type samplePayment struct {
	amount           float64
	description, due string
	paid             bool
}

type sampleProject struct {
	name, description, client string
	status                    projects.ProjectStatus
	start, due                string
	budget                    float64
	deliverables              []sampleDeliverable
	payments                  []samplePayment
}

var sampleClients = []clients.NewClientInput{
	{Name: "Acme Inc", Contact: "John Smith", Email: "john@acmeinc.com", Phone: "(555) 123-4567"},
	{Name: "TechStart", Contact: "Sarah Johnson", Email: "sarah@techstart.io", Phone: "(555) 234-5678"},
	{Name: "Global Foods", Contact: "Michael Brown", Email: "michael@globalfoods.com", Phone: "(555) 345-6789"},
	{Name: "Fitness Pro", Contact: "Jessica Lee", Email: "jessica@fitnesspro.com", Phone: "(555) 456-7890"},
	{Name: "Retail Shop", Contact: "David Wilson", Email: "david@retailshop.com", Phone: "(555) 567-8901"},
}

var sampleProjects = []sampleProject{
	{
		name:        "Website Redesign",
		description: "Complete redesign of the company website with new branding and improved UX.",
		client:      "Acme Inc",
		status:      projects.ProjectInProgress,
		start:       "2025-05-15",
		due:         "2025-06-20",
		budget:      5000,
		deliverables: []sampleDeliverable{
			{
				name: "Homepage Design", description: "Design of the main homepage with new branding elements.", due: "2025-06-01",
				versions: []sampleVersion{
					{file: "homepage-design-v1.pdf", comment: "First draft of the homepage design.", thread: []sampleComment{
						{byClient: true, content: "I like the overall design, but can we make the header more prominent?"},
						{content: "Sure, I'll update the header in the next version."},
					}},
					{file: "homepage-design-v2.pdf", comment: "Updated version with client feedback incorporated.", review: projects.StatusDelivered},
				},
			},
			{
				name: "About Page Design", description: "Design of the about page with team section and company history.", due: "2025-06-10",
				versions: []sampleVersion{
					{file: "about-page-v1.pdf", comment: "Initial design for the about page.", review: projects.StatusReturned,
						reviewNote: "The team section needs more visual hierarchy."},
				},
			},
		},
		payments: []samplePayment{
			{amount: 2500, description: "50% Upfront Payment", due: "2025-05-15", paid: true},
			{amount: 2500, description: "Final Payment", due: "2025-06-20"},
		},
	},
	{
		name:        "Brand Identity",
		description: "Create a new brand identity including logo, color palette, and brand guidelines.",
		client:      "TechStart",
		status:      projects.ProjectInReview,
		start:       "2025-05-20",
		due:         "2025-06-25",
		budget:      3500,
		deliverables: []sampleDeliverable{
			{
				name: "Logo Design", description: "Main logo design with variations for different use cases.", due: "2025-06-05",
				versions: []sampleVersion{
					{file: "logo-design-v1.pdf", comment: "First concepts for the logo design.", thread: []sampleComment{
						{byClient: true, content: "I prefer the second logo concept. Can we explore more variations of that one?"},
					}},
				},
			},
			{
				name: "Brand Guidelines", description: "Comprehensive brand guidelines document.", due: "2025-06-15",
				versions: []sampleVersion{
					{file: "brand-guidelines-v1.pdf", comment: "Draft of the brand guidelines document."},
				},
			},
		},
		payments: []samplePayment{
			{amount: 1750, description: "50% Upfront Payment", due: "2025-05-20", paid: true},
			{amount: 1750, description: "Final Payment", due: "2025-06-25"},
		},
	},
	{
		name:        "Marketing Campaign",
		description: "Design and develop assets for the summer marketing campaign.",
		client:      "Global Foods",
		status:      projects.ProjectInProgress,
		start:       "2025-06-01",
		due:         "2025-07-05",
		budget:      4000,
		deliverables: []sampleDeliverable{
			{name: "Social Media Banners", description: "Set of banners for various social media platforms.", due: "2025-06-20"},
		},
		payments: []samplePayment{
			{amount: 1000, description: "25% Upfront Payment", due: "2025-06-01", paid: true},
			{amount: 1500, description: "Progress Payment", due: "2025-06-15"},
			{amount: 1500, description: "Final Payment", due: "2025-07-05"},
		},
	},
}

// seeder carries the profiles the sample data is created as.
type seeder struct {
	svc        frontend.Services
	freelancer *profiles.Profile
	clients    map[string]*profiles.Profile // by company name
	clientIDs  map[string]string            // client record id by company name
}

// seed loads the sample data for the freelancer identified by addr. It
// reports false when the freelancer already has clients.
func seed(ctx context.Context, svc frontend.Services, addr string) (bool, error) {
	s := &seeder{
		svc:       svc,
		clients:   map[string]*profiles.Profile{},
		clientIDs: map[string]string{},
	}

	freelancer, err := s.profile(ctx, addr, profiles.RoleFreelancer, "")
	if err != nil {
		return false, err
	}
	s.freelancer = freelancer

	existing, err := svc.Clients.List(ctx, freelancer)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		log.Info(log.CatApp, "Skipping seed", "profile", freelancer.ID, "clients", len(existing))
		return false, nil
	}

	for _, in := range sampleClients {
		c, err := svc.Clients.Create(ctx, freelancer, in)
		if err != nil {
			return false, fmt.Errorf("seeding client %s: %w", in.Name, err)
		}
		s.clientIDs[in.Name] = c.ID
	}
	// The first two contacts get client accounts so their review threads exist.
	for _, in := range sampleClients[:2] {
		p, err := s.profile(ctx, fmt.Sprintf("%s <%s>", in.Contact, in.Email), profiles.RoleClient, in.Name)
		if err != nil {
			return false, err
		}
		s.clients[in.Name] = p
	}

	for _, sp := range sampleProjects {
		if err := s.project(ctx, sp); err != nil {
			return false, fmt.Errorf("seeding project %s: %w", sp.name, err)
		}
	}

	if _, err := svc.Briefs.Create(ctx, freelancer, briefsapp.Input{Name: "Website Project Brief", Template: "website"}); err != nil {
		return false, fmt.Errorf("seeding brief: %w", err)
	}

	log.Info(log.CatApp, "Seeded sample data", "profile", freelancer.ID,
		"clients", len(sampleClients), "projects", len(sampleProjects))
	return true, nil
}

// profile signs addr in through the dev provider and completes its setup.
func (s *seeder) profile(ctx context.Context, addr string, role profiles.Role, company string) (*profiles.Profile, error) {
	id, err := oauth.NewDev().Exchange(ctx, addr)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Profiles.Ensure(ctx, profilesapp.Identity{ID: id.ID, Email: id.Email, Name: id.Name})
	if err != nil {
		return nil, err
	}
	if p.Role != "" {
		return p, nil
	}
	name := id.Name
	if name == "" {
		name = p.FullName
	}
	return s.svc.Profiles.Setup(ctx, p, profiles.SetupInput{Role: role, FullName: name, Company: company})
}

func (s *seeder) project(ctx context.Context, sp sampleProject) error {
	in := projects.NewProjectInput{
		Name:        sp.name,
		Description: sp.description,
		ClientID:    s.clientIDs[sp.client],
		Status:      sp.status,
		StartDate:   mustDate(sp.start),
		DueDate:     mustDate(sp.due),
		Budget:      money.FromFloat(sp.budget),
	}
	p, err := s.svc.Projects.Create(ctx, s.freelancer, in)
	if err != nil {
		return err
	}

	reviewer := s.clients[sp.client]
	for _, sd := range sp.deliverables {
		d, err := s.svc.Projects.AddDeliverable(ctx, s.freelancer, p.ID, projects.NewDeliverableInput{
			Name:        sd.name,
			Description: sd.description,
			DueDate:     mustDate(sd.due),
		})
		if err != nil {
			return err
		}
		for _, sv := range sd.versions {
			if err := s.version(ctx, d.ID, reviewer, sv); err != nil {
				return fmt.Errorf("deliverable %s: %w", sd.name, err)
			}
		}
	}

	for _, pay := range sp.payments {
		in := finance.NewPaymentInput{
			ProjectID:   p.ID,
			Amount:      money.FromFloat(pay.amount),
			Description: pay.description,
			Status:      finance.StatusToBePaid,
			DueDate:     mustDate(pay.due),
		}
		if pay.paid {
			in.Status = finance.StatusPaid
			in.PaidDate = in.DueDate
		}
		if _, err := s.svc.Finance.Create(ctx, s.freelancer, in); err != nil {
			return fmt.Errorf("payment %s: %w", pay.description, err)
		}
	}
	return nil
}

func (s *seeder) version(ctx context.Context, deliverableID string, reviewer *profiles.Profile, sv sampleVersion) error {
	v, err := s.svc.Projects.AddVersion(ctx, s.freelancer, deliverableID, projectsapp.Upload{
		FileName: sv.file,
		Size:     int64(len(samplePDF)),
		Body:     strings.NewReader(samplePDF),
		Comment:  sv.comment,
	})
	if err != nil {
		return err
	}

	for _, c := range sv.thread {
		author := s.freelancer
		if c.byClient {
			if reviewer == nil {
				continue
			}
			author = reviewer
		}
		if _, err := s.svc.Projects.AddComment(ctx, author, v.ID, c.content); err != nil {
			return err
		}
	}
	if sv.review != "" && reviewer != nil {
		if _, err := s.svc.Projects.ReviewVersion(ctx, reviewer, deliverableID, v.ID, sv.review, sv.reviewNote); err != nil {
			return err
		}
	}
	return nil
}

func mustDate(s string) calendar.Date {
	d, err := calendar.Parse(s)
	if err != nil {
		panic(fmt.Sprintf("invalid sample date %q: %v", s, err))
	}
	return d
}
