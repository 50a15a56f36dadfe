package eventqueue

import (
	"time"

	"adminhub/internal/models"
)

// Item is the unified row shown in the moderation queue for both live posts
// and drafts.
type Item struct {
	ID            uint      `json:"id"`
	IsDraft       bool      `json:"is_draft"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserAvatar    string    `json:"user_avatar,omitempty"`
	Category      string    `json:"category"`
	CategoryID    *uint     `json:"category_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	PostType      string    `json:"post_type"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	MediaType     string    `json:"media_type"`
	Hashtags      []string  `json:"hashtags,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	Status        string    `json:"status"`
	EventTime     time.Time `json:"event_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// Key identifies an item across the posts and drafts collections, whose ids overlap.
func (it Item) Key() string {
	if it.IsDraft {
		return "draft:" + uitoa(it.ID)
	}
	return "event:" + uitoa(it.ID)
}

// Coordinates returns the item position when both coordinates are present.
func (it Item) Coordinates() (Point, bool) {
	if it.Latitude == nil || it.Longitude == nil {
		return Point{}, false
	}
	return Point{Lat: *it.Latitude, Lng: *it.Longitude}, true
}

// FromEvent converts a live post.
func FromEvent(e models.EventPost) Item {
	item := Item{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		UserID:        e.UserID,
		CategoryID:    e.CategoryID,
		PostType:      e.PostType,
		AttachmentURL: e.AttachmentURL,
		MediaType:     mediaTypeOrNone(e.MediaType),
		Hashtags:      e.Hashtags,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		Address:       e.Address,
		City:          e.City,
		Status:        NormalizeStatus(string(e.Status)),
		EventTime:     eventTime(e.EventTime, e.CreatedAt),
		CreatedAt:     e.CreatedAt,
	}
	if e.User != nil {
		item.UserName = e.User.Name()
		item.UserAvatar = e.User.AvatarURL
	}
	if e.Category != nil {
		item.CategoryName = e.Category.Name
	}
	item.Category = NormalizeCategory(item.CategoryName, e.PostType)
	return item
}

// FromDraft converts an unpublished draft. Drafts always queue as pending.
func FromDraft(d models.EventDraft) Item {
	item := Item{
		ID:            d.ID,
		IsDraft:       true,
		Title:         d.Title,
		Description:   d.Description,
		UserID:        d.AuthorID,
		CategoryID:    d.CategoryID,
		PostType:      d.PostType,
		AttachmentURL: d.AttachmentURL,
		MediaType:     mediaTypeOrNone(d.MediaType),
		Hashtags:      d.Hashtags,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Address:       d.Address,
		City:          d.City,
		Status:        string(models.EventStatusPending),
		EventTime:     eventTime(d.EventTime, d.CreatedAt),
		CreatedAt:     d.CreatedAt,
	}
	if d.Author != nil {
		item.UserName = d.Author.Name()
		item.UserAvatar = d.Author.AvatarURL
	}
	if d.Category != nil {
		item.CategoryName = d.Category.Name
	}
	item.Category = NormalizeCategory(item.CategoryName, d.PostType)
	return item
}

// Merge converts posts followed by drafts into one slice.
// categories, when non-nil, fills in names for records whose category was not preloaded.
func Merge(events []models.EventPost, drafts []models.EventDraft, categories map[uint]string) []Item {
	items := make([]Item, 0, len(events)+len(drafts))
	for _, e := range events {
		items = append(items, withCategoryName(FromEvent(e), categories))
	}
	for _, d := range drafts {
		items = append(items, withCategoryName(FromDraft(d), categories))
	}
	return items
}

func withCategoryName(item Item, categories map[uint]string) Item {
	if item.CategoryName != "" || item.CategoryID == nil || categories == nil {
		return item
	}
	if name, ok := categories[*item.CategoryID]; ok {
		item.CategoryName = name
		item.Category = NormalizeCategory(name, item.PostType)
	}
	return item
}

func eventTime(at *time.Time, created time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return *at
	}
	return created
}

func mediaTypeOrNone(mt string) string {
	if mt == "" {
		return models.MediaTypeNone
	}
	return mt
}
