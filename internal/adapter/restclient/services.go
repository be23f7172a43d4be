package restclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
)

// --- Advertisements ---

func (c *Client) ListAdvertisements(ctx context.Context, criteria domain.SearchCriteria, page, pageSize int) (*domain.Page, error) {
	q := criteria.Values()
	q.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		q.Set("size", strconv.Itoa(pageSize))
	}
	var out domain.Page
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/ads", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAdvertisement(ctx context.Context, id int64) (*domain.AdvertisementDetail, error) {
	var out domain.AdvertisementDetail
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/ads/%s", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// adRequest encodes an ad submission. A nil images slice keeps the stored
// images on update; an empty one clears them.
func adRequest(method, path string, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (request, error) {
	fields := map[string]string{}
	for i, img := range images {
		if img.Preview {
			fields["previewIndex"] = strconv.Itoa(i)
		}
	}
	if images != nil && len(images) == 0 {
		fields["clearImages"] = "true"
	}
	body, ct, err := multipartBody(payload, fields, "images", images)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, token: token, body: body, contentType: ct}, nil
}

func (c *Client) CreateAdvertisement(ctx context.Context, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	if err := domain.ValidateImages(images); err != nil {
		return nil, err
	}
	req, err := adRequest(http.MethodPost, "/api/ads", payload, images, token)
	if err != nil {
		return nil, err
	}
	var out domain.AdvertisementDetail
	if err := c.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAdvertisement(ctx context.Context, id int64, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	if err := domain.ValidateImages(images); err != nil {
		return nil, err
	}
	req, err := adRequest(http.MethodPut, idPath("/api/ads/%s", id), payload, images, token)
	if err != nil {
		return nil, err
	}
	var out domain.AdvertisementDetail
	if err := c.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAdvertisement(ctx context.Context, id int64, token string) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: idPath("/api/ads/%s", id), token: token}, nil)
}

// --- Users ---

func (c *Client) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	body, ct, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	var out domain.AuthResult
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/api/auth/login", body: body, contentType: ct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func avatarFiles(avatar *domain.ImageUpload) []domain.ImageUpload {
	if avatar == nil {
		return nil
	}
	return []domain.ImageUpload{*avatar}
}

func (c *Client) RegisterUser(ctx context.Context, payload domain.RegistrationPayload, avatar *domain.ImageUpload) (*domain.UserSummary, error) {
	body, ct, err := multipartBody(payload, nil, "avatar", avatarFiles(avatar))
	if err != nil {
		return nil, err
	}
	var out domain.UserSummary
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/api/users", body: body, contentType: ct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserProfile(ctx context.Context, id int64, token string) (*domain.UserProfile, error) {
	var out domain.UserProfile
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/users/%s", id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, payload domain.ProfilePayload, avatar *domain.ImageUpload, token string) (*domain.UserProfile, error) {
	body, ct, err := multipartBody(payload, nil, "avatar", avatarFiles(avatar))
	if err != nil {
		return nil, err
	}
	var out domain.UserProfile
	if err := c.doJSON(ctx, request{method: http.MethodPut, path: "/api/users/me", token: token, body: body, contentType: ct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Lookups ---

func (c *Client) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var out []domain.Region
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/locations/regions"}, &out)
	return out, err
}

func (c *Client) ListDistricts(ctx context.Context, regionID int64) ([]domain.District, error) {
	var out []domain.District
	err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/locations/regions/%s/districts", regionID)}, &out)
	return out, err
}

func (c *Client) ListCities(ctx context.Context, districtID int64) ([]domain.City, error) {
	var out []domain.City
	err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/locations/districts/%s/cities", districtID)}, &out)
	return out, err
}

func (c *Client) ResolveCity(ctx context.Context, cityID int64) (*domain.CityLocation, error) {
	var out domain.CityLocation
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/locations/cities/%s", cityID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategoriesAsTree(ctx context.Context) ([]domain.CategoryNode, error) {
	var out []domain.CategoryNode
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/categories/tree"}, &out)
	return out, err
}

func (c *Client) CreateCategories(ctx context.Context, payload []domain.NewCategory, token string) ([]domain.CategoryNode, error) {
	body, ct, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	var out []domain.CategoryNode
	err = c.doJSON(ctx, request{method: http.MethodPost, path: "/api/admin/categories", token: token, body: body, contentType: ct}, &out)
	return out, err
}

// --- Admin ---

func (c *Client) GetHitStatistics(ctx context.Context, token string) (map[string]int64, error) {
	var out map[string]int64
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/admin/hits", token: token}, &out)
	return out, err
}

func (c *Client) GenerateLogReport(ctx context.Context, token string, date string) (*domain.LogTask, error) {
	body, ct, err := jsonBody(map[string]string{"date": date})
	if err != nil {
		return nil, err
	}
	var out domain.LogTask
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/api/admin/logs", token: token, body: body, contentType: ct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLogTaskStatus(ctx context.Context, token, taskID string) (*domain.LogTaskState, error) {
	var out domain.LogTaskState
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/admin/logs/" + url.PathEscape(taskID), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DownloadGeneratedLog(ctx context.Context, token, taskID string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: "/api/admin/logs/" + url.PathEscape(taskID) + "/file", token: token})
}

func (c *Client) DownloadArchivedLog(ctx context.Context, token, date string) ([]byte, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	return c.do(ctx, request{method: http.MethodGet, path: "/api/admin/logs/archive/" + url.PathEscape(date), token: token})
}
