package domain

import "context"

// AdRepository persists advertisements for the backend.
type AdRepository interface {
	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, ad *Advertisement) error
	Update(ctx context.Context, ad *Advertisement) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Advertisement, error)
	// Find returns one window of matching ads, newest first, and the total match count.
	Find(ctx context.Context, filter AdFilter) ([]Advertisement, int, error)
	CountBySeller(ctx context.Context, sellerID int64, status AdStatus) (int, error)
}

// ImageStore keeps uploaded pictures and returns their public URLs.
type ImageStore interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// EventPublisher broadcasts advertisement lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Mailer notifies users by email.
type Mailer interface {
	SendAdCreatedEmail(toEmail, adTitle string) error
}

const (
	SubjectAdCreated = "ad.created"
	SubjectAdUpdated = "ad.updated"
	SubjectAdDeleted = "ad.deleted"
)
