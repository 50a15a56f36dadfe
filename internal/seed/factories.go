// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"time"

	"adminhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// City is a seeding anchor; generated coordinates scatter around it.
type City struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// DefaultCities anchor generated posts and alerts when a preset names none.
var DefaultCities = []City{
	{Name: "Bengaluru", Lat: 12.9716, Lng: 77.5946},
	{Name: "Mumbai", Lat: 19.0760, Lng: 72.8777},
	{Name: "Chennai", Lat: 13.0827, Lng: 80.2707},
}

var hashtagPool = []string{"flood", "traffic", "fire", "rescue", "power", "roads", "missing", "storm", "help", "update"}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.RandomSeed != 0 {
		gofakeit.Seed(opts.RandomSeed)
	} else {
		gofakeit.Seed(time.Now().UnixNano())
	}
	return &Factory{db: db, opts: opts, nextID: 1000}
}

func (f *Factory) passwordHash() string {
	if f.opts.SkipBcrypt {
		return "password123"
	}
	if f.hash == "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		f.hash = string(hashed)
	}
	return f.hash
}

func (f *Factory) persist(value any, setID func(uint), what string) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		log.Printf("[dry-run] %s id=%d", what, f.nextID)
		return nil
	}
	return f.db.Create(value).Error
}

// CreateUser constructs and persists an app user living in city.
func (f *Factory) CreateUser(city City, overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    f.passwordHash(),
		DisplayName: gofakeit.Name(),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		City:        city.Name,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, func(id uint) { user.ID = id }, "CreateUser"); err != nil {
		return nil, err
	}
	return user, nil
}

// near scatters a point within roughly 15km of the city centre.
func near(city City) (float64, float64) {
	return city.Lat + gofakeit.Float64Range(-0.12, 0.12), city.Lng + gofakeit.Float64Range(-0.12, 0.12)
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(gofakeit.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// BuildEvent constructs an event post without persisting it.
func (f *Factory) BuildEvent(user *models.User, city City, categoryID *uint, overrides ...func(*models.EventPost)) *models.EventPost {
	lat, lng := near(city)
	created := f.createdAt()
	eventTime := created.Add(-time.Duration(gofakeit.Number(0, 180)) * time.Minute)

	event := &models.EventPost{
		UserID:      user.ID,
		Title:       gofakeit.Sentence(gofakeit.Number(3, 7)),
		Description: gofakeit.Paragraph(1, 3, 12, " "),
		PostType:    gofakeit.RandomString([]string{models.PostTypeIncident, models.PostTypeRescue, models.PostTypeGeneral}),
		MediaType:   models.MediaTypeNone,
		Hashtags:    []string{gofakeit.RandomString(hashtagPool), gofakeit.RandomString(hashtagPool)},
		CategoryID:  categoryID,
		Latitude:    &lat,
		Longitude:   &lng,
		Address:     gofakeit.Street(),
		City:        city.Name,
		EventTime:   &eventTime,
		Status:      models.EventStatus(gofakeit.RandomString([]string{"Pending", "Pending", "Approved", "Rejected"})),
		CreatedAt:   created,
	}
	if gofakeit.Number(0, 9) < 4 {
		event.AttachmentURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
		event.MediaType = models.MediaTypeImage
	}
	if event.Status == models.EventStatusRejected {
		event.RejectionReason = gofakeit.RandomString([]string{"duplicate", "not an emergency", "insufficient detail"})
	}
	for _, override := range overrides {
		override(event)
	}
	return event
}

// CreateEventsBatch persists events in chunks of opts.BatchSize.
func (f *Factory) CreateEventsBatch(events []*models.EventPost) error {
	if f.opts.DryRun {
		for _, e := range events {
			f.nextID++
			e.ID = f.nextID
		}
		log.Printf("[dry-run] CreateEventsBatch: %d events (no DB write)", len(events))
		return nil
	}
	size := f.opts.BatchSize
	if size <= 0 {
		size = 100
	}
	return f.db.CreateInBatches(events, size).Error
}

// CreateDraft persists an admin draft.
func (f *Factory) CreateDraft(author *models.User, city City) (*models.EventDraft, error) {
	lat, lng := near(city)
	draft := &models.EventDraft{
		AuthorID:    author.ID,
		Title:       gofakeit.Sentence(5),
		Description: gofakeit.Paragraph(1, 2, 10, " "),
		PostType:    models.PostTypeGeneral,
		MediaType:   models.MediaTypeNone,
		Latitude:    &lat,
		Longitude:   &lng,
		City:        city.Name,
	}
	if err := f.persist(draft, func(id uint) { draft.ID = id }, "CreateDraft"); err != nil {
		return nil, err
	}
	return draft, nil
}

// CreateComment persists a comment by user on event.
func (f *Factory) CreateComment(user *models.User, event *models.EventPost) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  event.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(10),
	}
	if err := f.persist(comment, func(id uint) { comment.ID = id }, "CreateComment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreatePostReport persists an open report against event with its snapshot.
func (f *Factory) CreatePostReport(reporter *models.User, event *models.EventPost) (*models.Report, error) {
	owner := event.UserID
	report := &models.Report{
		ReporterID:     reporter.ID,
		ReportedUserID: &owner,
		TargetType:     models.ReportTargetPost,
		TargetID:       event.ID,
		Reason:         gofakeit.RandomString([]string{"spam", "misleading", "abusive", "duplicate"}),
		Details:        gofakeit.Sentence(8),
		Status:         models.ReportStatusOpen,
		Snapshot: models.ReportSnapshot{
			Title:    event.Title,
			Body:     event.Description,
			MediaURL: event.AttachmentURL,
		},
	}
	if err := f.persist(report, func(id uint) { report.ID = id }, "CreatePostReport"); err != nil {
		return nil, err
	}
	return report, nil
}

// CreateSOS persists an alert with one to three contacts.
func (f *Factory) CreateSOS(user *models.User, city City) (*models.SOSEvent, error) {
	lat, lng := near(city)
	event := &models.SOSEvent{
		UserID:    user.ID,
		Latitude:  lat,
		Longitude: lng,
		Address:   gofakeit.Street() + ", " + city.Name,
		Message:   gofakeit.RandomString([]string{"Need help urgently", "Accident on the road", "Trapped by flooding", ""}),
		CreatedAt: f.createdAt(),
	}
	contacts := gofakeit.Number(1, 3)
	for range contacts {
		status := models.ContactStatusSent
		if gofakeit.Number(0, 9) == 0 {
			status = models.ContactStatusFailed
		}
		event.Contacts = append(event.Contacts, models.SOSContact{
			Name:   gofakeit.FirstName(),
			Phone:  gofakeit.Phone(),
			Status: status,
		})
	}
	event.Status = event.DeriveStatus()
	if err := f.persist(event, func(id uint) { event.ID = id }, "CreateSOS"); err != nil {
		return nil, err
	}
	return event, nil
}

// CreateNotification persists a sent broadcast with plausible delivery counters.
func (f *Factory) CreateNotification(admin *models.User, city City) (*models.Notification, error) {
	audience := models.AudienceAll
	if gofakeit.Bool() {
		audience = "city:" + city.Name
	}
	total := gofakeit.Number(10, 500)
	failed := 0
	if gofakeit.Number(0, 4) == 0 {
		failed = gofakeit.Number(1, total)
	}
	sentAt := f.createdAt()
	n := &models.Notification{
		Title:           gofakeit.RandomString([]string{"Heavy rain alert", "Road closure", "Blood donation camp", "Power maintenance"}),
		Message:         gofakeit.Sentence(12),
		Audience:        audience,
		TotalUsers:      total,
		DeliveredUsers:  total - failed,
		FailedUsers:     failed,
		Status:          models.DeliveryStatus(total, total-failed, failed),
		CreatedByUserID: admin.ID,
		SentAt:          &sentAt,
		CreatedAt:       sentAt,
	}
	if err := f.persist(n, func(id uint) { n.ID = id }, "CreateNotification"); err != nil {
		return nil, err
	}
	return n, nil
}
