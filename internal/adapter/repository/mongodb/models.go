package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
)

type imageDocument struct {
	ID      string `bson:"id"`
	URL     string `bson:"url"`
	Preview bool   `bson:"preview"`
}

// adDocument is the MongoDB representation of an advertisement. The numeric
// id doubles as _id and is allocated from the counters collection.
type adDocument struct {
	ID          int64           `bson:"_id"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Price       float64         `bson:"price"`
	Condition   string          `bson:"condition"`
	Status      string          `bson:"status"`
	SellerID    int64           `bson:"seller_id"`
	CityID      int64           `bson:"city_id"`
	CategoryID  int64           `bson:"category_id"`
	Images      []imageDocument `bson:"images"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

func fromDomainAd(ad *domain.Advertisement) *adDocument {
	images := make([]imageDocument, 0, len(ad.Images))
	for _, img := range ad.Images {
		images = append(images, imageDocument{ID: img.ID, URL: img.URL, Preview: img.Preview})
	}
	return &adDocument{
		ID:          ad.ID,
		Title:       ad.Title,
		Description: ad.Description,
		Price:       ad.Price,
		Condition:   string(ad.Condition),
		Status:      string(ad.Status),
		SellerID:    ad.SellerID,
		CityID:      ad.CityID,
		CategoryID:  ad.CategoryID,
		Images:      images,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
}

func (d *adDocument) toDomainAd() domain.Advertisement {
	images := make([]domain.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domain.Image{ID: img.ID, URL: img.URL, Preview: img.Preview})
	}
	return domain.Advertisement{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Condition:   domain.Condition(d.Condition),
		Status:      domain.AdStatus(d.Status),
		SellerID:    d.SellerID,
		CityID:      d.CityID,
		CategoryID:  d.CategoryID,
		Images:      images,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
