package domain

import "context"

// AdvertisementService is the advertisement part of the backend contract.
type AdvertisementService interface {
	ListAdvertisements(ctx context.Context, criteria SearchCriteria, page, pageSize int) (*Page, error)
	GetAdvertisement(ctx context.Context, id int64) (*AdvertisementDetail, error)
	CreateAdvertisement(ctx context.Context, payload AdvertisementPayload, images []ImageUpload, token string) (*AdvertisementDetail, error)
	// UpdateAdvertisement keeps the stored images when images is nil.
	UpdateAdvertisement(ctx context.Context, id int64, payload AdvertisementPayload, images []ImageUpload, token string) (*AdvertisementDetail, error)
	DeleteAdvertisement(ctx context.Context, id int64, token string) error
}

// UserService is the account part of the backend contract.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	RegisterUser(ctx context.Context, payload RegistrationPayload, avatar *ImageUpload) (*UserSummary, error)
	// GetUserProfile accepts an empty token for the public view of a profile.
	GetUserProfile(ctx context.Context, id int64, token string) (*UserProfile, error)
	UpdateUserProfile(ctx context.Context, payload ProfilePayload, avatar *ImageUpload, token string) (*UserProfile, error)
}

// LocationService serves the static region/district/city lookups.
type LocationService interface {
	ListRegions(ctx context.Context) ([]Region, error)
	ListDistricts(ctx context.Context, regionID int64) ([]District, error)
	ListCities(ctx context.Context, districtID int64) ([]City, error)
	ResolveCity(ctx context.Context, cityID int64) (*CityLocation, error)
}

// CategoryService serves the category tree.
type CategoryService interface {
	ListCategoriesAsTree(ctx context.Context) ([]CategoryNode, error)
	CreateCategories(ctx context.Context, payload []NewCategory, token string) ([]CategoryNode, error)
}

// AdminService backs the admin panel.
type AdminService interface {
	GetHitStatistics(ctx context.Context, token string) (map[string]int64, error)
	GenerateLogReport(ctx context.Context, token string, date string) (*LogTask, error)
	GetLogTaskStatus(ctx context.Context, token, taskID string) (*LogTaskState, error)
	DownloadGeneratedLog(ctx context.Context, token, taskID string) ([]byte, error)
	DownloadArchivedLog(ctx context.Context, token, date string) ([]byte, error)
}

// Backend is the full collaborator contract used by the client components.
type Backend interface {
	AdvertisementService
	UserService
	LocationService
	CategoryService
	AdminService
}
