package mock

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/categorytree"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ListAdvertisements returns one zero-based page of active advertisements.
func (b *Backend) ListAdvertisements(ctx context.Context, criteria domain.SearchCriteria, page, pageSize int) (*domain.Page, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.ListAdvertisements")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize))

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidInput)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	filter := domain.AdFilter{
		Keyword:  criteria.Keyword,
		CityIDs:  b.cityScope(criteria),
		Status:   domain.AdStatusActive,
		MinPrice: criteria.MinPrice,
		MaxPrice: criteria.MaxPrice,
		Offset:   page * pageSize,
		Limit:    pageSize,
	}
	if criteria.CategoryID > 0 {
		b.mu.RLock()
		ids := categorytree.Descendants(b.categories, criteria.CategoryID)
		b.mu.RUnlock()
		if ids == nil {
			ids = []int64{}
		}
		filter.CategoryIDs = ids
	}

	items, total, err := b.repo.Find(ctx, filter)
	if err != nil {
		b.log.Error("Failed to list advertisements", zap.Error(err))
		return nil, fmt.Errorf("list advertisements: %w", err)
	}
	if items == nil {
		items = []domain.Advertisement{}
	}
	return &domain.Page{
		Items:         items,
		TotalPages:    (total + pageSize - 1) / pageSize,
		TotalElements: total,
		PageNumber:    page,
	}, nil
}

func (b *Backend) GetAdvertisement(ctx context.Context, id int64) (*domain.AdvertisementDetail, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.GetAdvertisement")
	defer span.End()
	span.SetAttributes(attribute.Int64("ad_id", id))

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	ad, err := b.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("advertisement %d: %w", id, err)
	}
	return b.detail(ad), nil
}

// detail resolves the location, category and seller of ad.
func (b *Backend) detail(ad *domain.Advertisement) *domain.AdvertisementDetail {
	d := &domain.AdvertisementDetail{Advertisement: *ad}
	d.Location, _ = b.resolveCity(ad.CityID)

	b.mu.RLock()
	defer b.mu.RUnlock()
	d.CategoryName = categorytree.ResolveName(b.categories, ad.CategoryID)
	if u, ok := b.users[ad.SellerID]; ok {
		d.Seller = domain.SellerSummary{
			ID:        u.profile.ID,
			FirstName: u.profile.FirstName,
			Phone:     u.profile.Phone,
			AvatarURL: u.profile.AvatarURL,
		}
	}
	return d
}

// checkReferences rejects unknown cities and categories.
func (b *Backend) checkReferences(p domain.AdvertisementPayload) error {
	if _, ok := b.resolveCity(p.CityID); !ok {
		return fmt.Errorf("%w: unknown city %d", domain.ErrInvalidInput, p.CityID)
	}
	b.mu.RLock()
	name := categorytree.ResolveName(b.categories, p.CategoryID)
	b.mu.RUnlock()
	if name == "" {
		return fmt.Errorf("%w: unknown category %d", domain.ErrInvalidInput, p.CategoryID)
	}
	return nil
}

// storeImages uploads the images in order. The first one becomes the preview
// when none is flagged.
func (b *Backend) storeImages(ctx context.Context, adID int64, uploads []domain.ImageUpload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	hasPreview := false
	for _, u := range uploads {
		hasPreview = hasPreview || u.Preview
	}
	for i, u := range uploads {
		url, err := b.images.Upload(ctx, u.FileName, u.Data)
		if err != nil {
			b.removeImages(ctx, images)
			return nil, fmt.Errorf("upload image %q: %w", u.FileName, err)
		}
		images = append(images, domain.Image{
			ID:      strconv.FormatInt(adID, 10) + "-" + strconv.Itoa(i+1),
			URL:     url,
			Preview: u.Preview || (!hasPreview && i == 0),
		})
	}
	return images, nil
}

func (b *Backend) removeImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := b.images.Delete(ctx, img.URL); err != nil && !errors.Is(err, domain.ErrNotFound) {
			b.log.Warn("Failed to delete image", zap.String("url", img.URL), zap.Error(err))
		}
	}
}

func (b *Backend) CreateAdvertisement(ctx context.Context, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.CreateAdvertisement")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	claims, err := b.authorize(token, "")
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateImages(images); err != nil {
		return nil, err
	}
	if err := b.checkReferences(payload); err != nil {
		return nil, err
	}
	if payload.Status == "" {
		payload.Status = domain.AdStatusActive
	}

	ad := &domain.Advertisement{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Condition:   payload.Condition,
		Status:      payload.Status,
		SellerID:    claims.UserID,
		CityID:      payload.CityID,
		CategoryID:  payload.CategoryID,
		Images:      []domain.Image{},
	}
	if err := b.repo.Create(ctx, ad); err != nil {
		b.log.Error("Failed to create advertisement", zap.Error(err))
		return nil, fmt.Errorf("create advertisement: %w", err)
	}
	if len(images) > 0 {
		stored, err := b.storeImages(ctx, ad.ID, images)
		if err != nil {
			if delErr := b.repo.Delete(ctx, ad.ID); delErr != nil {
				b.log.Error("Failed to roll back advertisement", zap.Int64("ad_id", ad.ID), zap.Error(delErr))
			}
			return nil, err
		}
		ad.Images = stored
		if err := b.repo.Update(ctx, ad); err != nil {
			return nil, fmt.Errorf("attach images: %w", err)
		}
	}

	b.log.Info("Advertisement created", zap.Int64("ad_id", ad.ID), zap.Int64("seller_id", ad.SellerID))
	if b.metrics != nil {
		b.metrics.AdsCreatedTotal.Inc()
	}
	b.publish(ctx, domain.SubjectAdCreated, ad)
	if err := b.mailer.SendAdCreatedEmail(claims.Email, ad.Title); err != nil {
		b.log.Warn("Failed to send ad created email", zap.String("email", claims.Email), zap.Error(err))
	}
	return b.detail(ad), nil
}

// owned loads the advertisement and checks that the caller owns it.
func (b *Backend) owned(ctx context.Context, id int64, token string) (*domain.Advertisement, error) {
	claims, err := b.authorize(token, "")
	if err != nil {
		return nil, err
	}
	ad, err := b.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("advertisement %d: %w", id, err)
	}
	if ad.SellerID != claims.UserID {
		return nil, fmt.Errorf("%w: advertisement %d belongs to another user", domain.ErrForbidden, id)
	}
	return ad, nil
}

// UpdateAdvertisement replaces the editable fields. A nil images slice keeps
// the stored pictures; a non-nil one replaces them.
func (b *Backend) UpdateAdvertisement(ctx context.Context, id int64, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.UpdateAdvertisement")
	defer span.End()
	span.SetAttributes(attribute.Int64("ad_id", id))

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	ad, err := b.owned(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateImages(images); err != nil {
		return nil, err
	}
	if err := b.checkReferences(payload); err != nil {
		return nil, err
	}

	ad.Title = payload.Title
	ad.Description = payload.Description
	ad.Price = payload.Price
	ad.Condition = payload.Condition
	if payload.Status != "" {
		ad.Status = payload.Status
	}
	ad.CityID = payload.CityID
	ad.CategoryID = payload.CategoryID

	var replaced []domain.Image
	if images != nil {
		stored, err := b.storeImages(ctx, ad.ID, images)
		if err != nil {
			return nil, err
		}
		replaced, ad.Images = ad.Images, stored
	}
	if err := b.repo.Update(ctx, ad); err != nil {
		return nil, fmt.Errorf("update advertisement %d: %w", id, err)
	}
	b.removeImages(ctx, replaced)

	b.log.Info("Advertisement updated", zap.Int64("ad_id", ad.ID))
	if b.metrics != nil {
		b.metrics.AdsUpdatedTotal.Inc()
	}
	b.publish(ctx, domain.SubjectAdUpdated, ad)
	return b.detail(ad), nil
}

func (b *Backend) DeleteAdvertisement(ctx context.Context, id int64, token string) error {
	ctx, span := tracer.Start(ctx, "MockBackend.DeleteAdvertisement")
	defer span.End()
	span.SetAttributes(attribute.Int64("ad_id", id))

	if err := b.delay(ctx); err != nil {
		return err
	}
	ad, err := b.owned(ctx, id, token)
	if err != nil {
		return err
	}
	if err := b.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete advertisement %d: %w", id, err)
	}
	b.removeImages(ctx, ad.Images)

	b.log.Info("Advertisement deleted", zap.Int64("ad_id", id))
	if b.metrics != nil {
		b.metrics.AdsDeletedTotal.Inc()
	}
	b.publish(ctx, domain.SubjectAdDeleted, ad)
	return nil
}
