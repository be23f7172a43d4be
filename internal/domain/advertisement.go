package domain

import (
	"fmt"
	"time"
)

// --- Enums ---

// Condition describes the physical state of the advertised item.
type Condition string

const (
	ConditionNew         Condition = "NEW"
	ConditionUsedPerfect Condition = "USED_PERFECT"
	ConditionUsedLikeNew Condition = "USED_LIKE_NEW"
	ConditionUsedGood    Condition = "USED_GOOD"
	ConditionUsedFair    Condition = "USED_FAIR"
)

// IsValid checks if the Condition is one of the defined constants.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionUsedPerfect, ConditionUsedLikeNew, ConditionUsedGood, ConditionUsedFair:
		return true
	}
	return false
}

// AdStatus is the publication status of an advertisement.
type AdStatus string

const (
	AdStatusActive   AdStatus = "ACTIVE"
	AdStatusInactive AdStatus = "INACTIVE"
	AdStatusSold     AdStatus = "SOLD"
)

// IsValid checks if the AdStatus is one of the defined constants.
func (s AdStatus) IsValid() bool {
	switch s {
	case AdStatusActive, AdStatusInactive, AdStatusSold:
		return true
	}
	return false
}

// --- Advertisement ---

// Image is a stored picture attached to an advertisement.
type Image struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Preview bool   `json:"preview"`
}

// ImageUpload is a picture sent together with a create or update request.
type ImageUpload struct {
	FileName string `json:"fileName"`
	Data     []byte `json:"-"`
	Preview  bool   `json:"preview"`
}

// Advertisement is a classifieds listing. Only the owning seller mutates it.
type Advertisement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Condition   Condition `json:"condition"`
	Status      AdStatus  `json:"status"`
	SellerID    int64     `json:"sellerId"`
	CityID      int64     `json:"cityId"`
	CategoryID  int64     `json:"categoryId"`
	Images      []Image   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PreviewImage returns the preview picture, if any.
func (a *Advertisement) PreviewImage() (Image, bool) {
	for _, img := range a.Images {
		if img.Preview {
			return img, true
		}
	}
	return Image{}, false
}

// AdvertisementPayload carries the editable fields of an advertisement.
type AdvertisementPayload struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Condition   Condition `json:"condition"`
	Status      AdStatus  `json:"status,omitempty"`
	CityID      int64     `json:"cityId"`
	CategoryID  int64     `json:"categoryId"`
}

// Validate checks the invariants every backend enforces regardless of the
// client-side form validation.
func (p AdvertisementPayload) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if !p.Condition.IsValid() {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidInput, p.Condition)
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, p.Status)
	}
	if p.CityID <= 0 || p.CategoryID <= 0 {
		return fmt.Errorf("%w: city and category are required", ErrInvalidInput)
	}
	return nil
}

// ValidateImages enforces the single-preview rule.
func ValidateImages(images []ImageUpload) error {
	previews := 0
	for _, img := range images {
		if img.Preview {
			previews++
		}
	}
	if previews > 1 {
		return fmt.Errorf("%w: at most one preview image is allowed", ErrInvalidInput)
	}
	return nil
}

// SellerSummary is the public part of the seller shown on an ad page.
type SellerSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// AdvertisementDetail is an advertisement with its references resolved.
type AdvertisementDetail struct {
	Advertisement
	Location     CityLocation  `json:"location"`
	CategoryName string        `json:"categoryName"`
	Seller       SellerSummary `json:"seller"`
}

// Page is one page of advertisements. PageNumber is zero based.
type Page struct {
	Items         []Advertisement `json:"items"`
	TotalPages    int             `json:"totalPages"`
	TotalElements int             `json:"totalElements"`
	PageNumber    int             `json:"pageNumber"`
}
