package seed

import (
	_ "embed"
	"fmt"
	"log"
	"strings"

	"adminhub/internal/database"
	"adminhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configures the seeder. Counts of zero skip that entity.
type Options struct {
	Users      int    `yaml:"users"`
	Events     int    `yaml:"events"`
	Drafts     int    `yaml:"drafts"`
	Reports    int    `yaml:"reports"`
	SOS        int    `yaml:"sos"`
	Comments   int    `yaml:"comments"`
	Broadcasts int    `yaml:"broadcasts"`
	Cities     []City `yaml:"cities"`
	SkipBcrypt bool   `yaml:"skip_bcrypt"`
	BatchSize  int    `yaml:"batch_size"`
	MaxDays    int    `yaml:"max_days"`
	DryRun     bool   `yaml:"-"`
	RandomSeed int64  `yaml:"-"`
}

// Preset is a named Options bundle loaded from presets.yaml.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Options     `yaml:",inline"`
}

//go:embed presets.yaml
var presetsYAML []byte

// Presets parses the embedded preset list.
func Presets() (map[string]Preset, error) {
	return ParsePresets(presetsYAML)
}

// ParsePresets decodes a YAML list of presets keyed by lower-case name.
func ParsePresets(data []byte) (map[string]Preset, error) {
	var list []Preset
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	out := make(map[string]Preset, len(list))
	for _, p := range list {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		out[name] = p
	}
	return out, nil
}

// Summary counts what a run created.
type Summary struct {
	Categories int
	Users      int
	Events     int
	Drafts     int
	Comments   int
	Reports    int
	SOS        int
	Broadcasts int
}

// Seeder populates a database according to Options.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if len(opts.Cities) == 0 {
		opts.Cities = DefaultCities
	}
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// NewSeederFromPreset builds a Seeder from a named embedded preset.
func NewSeederFromPreset(db *gorm.DB, name string) (*Seeder, error) {
	presets, err := Presets()
	if err != nil {
		return nil, err
	}
	preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	log.Printf("applying preset %s: %s", preset.Name, preset.Description)
	return NewSeeder(db, preset.Options), nil
}

// ClearAll empties every table.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		log.Println("[dry-run] ClearAll skipped")
		return nil
	}
	log.Println("🗑️  Clearing existing data...")
	return database.TruncateAllTables(s.db)
}

func (s *Seeder) city() City {
	return s.opts.Cities[gofakeit.Number(0, len(s.opts.Cities)-1)]
}

// Run seeds categories, users, posts, drafts, broadcasts, comments, reports
// and SOS alerts in dependency order.
func (s *Seeder) Run() (*Summary, error) {
	summary := &Summary{}

	var categoryIDs []uint
	if !s.opts.DryRun {
		if err := Categories(s.db); err != nil {
			return nil, fmt.Errorf("seed categories: %w", err)
		}
		var categories []models.Category
		if err := s.db.Where("parent_id IS NOT NULL").Find(&categories).Error; err != nil {
			return nil, err
		}
		for _, c := range categories {
			categoryIDs = append(categoryIDs, c.ID)
		}
		summary.Categories = len(BuiltInCategories)
	}

	users := make([]*models.User, 0, s.opts.Users)
	for range s.opts.Users {
		user, err := s.factory.CreateUser(s.city())
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Printf("✓ %d users created", summary.Users)
	if len(users) == 0 {
		return summary, nil
	}
	pickUser := func() *models.User { return users[gofakeit.Number(0, len(users)-1)] }

	events := make([]*models.EventPost, 0, s.opts.Events)
	for range s.opts.Events {
		var categoryID *uint
		if len(categoryIDs) > 0 && gofakeit.Bool() {
			id := categoryIDs[gofakeit.Number(0, len(categoryIDs)-1)]
			categoryID = &id
		}
		events = append(events, s.factory.BuildEvent(pickUser(), s.city(), categoryID))
	}
	if err := s.factory.CreateEventsBatch(events); err != nil {
		return nil, fmt.Errorf("seed events: %w", err)
	}
	summary.Events = len(events)
	log.Printf("✓ %d events created", summary.Events)

	if s.opts.Drafts > 0 || s.opts.Broadcasts > 0 {
		moderator, err := s.factory.CreateUser(s.city(), func(u *models.User) {
			u.Username = "moderator" + gofakeit.DigitN(4)
			u.Email = u.Username + "@example.com"
			u.IsAdmin = true
		})
		if err != nil {
			return nil, fmt.Errorf("seed moderator: %w", err)
		}
		for range s.opts.Drafts {
			if _, err := s.factory.CreateDraft(moderator, s.city()); err != nil {
				return nil, fmt.Errorf("seed drafts: %w", err)
			}
			summary.Drafts++
		}
		for range s.opts.Broadcasts {
			if _, err := s.factory.CreateNotification(moderator, s.city()); err != nil {
				return nil, fmt.Errorf("seed notifications: %w", err)
			}
			summary.Broadcasts++
		}
	}

	if len(events) > 0 {
		pickEvent := func() *models.EventPost { return events[gofakeit.Number(0, len(events)-1)] }
		for range s.opts.Comments {
			if _, err := s.factory.CreateComment(pickUser(), pickEvent()); err != nil {
				return nil, fmt.Errorf("seed comments: %w", err)
			}
			summary.Comments++
		}
		for range s.opts.Reports {
			if _, err := s.factory.CreatePostReport(pickUser(), pickEvent()); err != nil {
				return nil, fmt.Errorf("seed reports: %w", err)
			}
			summary.Reports++
		}
	}

	for range s.opts.SOS {
		if _, err := s.factory.CreateSOS(pickUser(), s.city()); err != nil {
			return nil, fmt.Errorf("seed sos: %w", err)
		}
		summary.SOS++
	}

	log.Printf("🎉 seeding complete: %+v", *summary)
	return summary, nil
}
