package mock

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
)

// Seed accounts. Both use the password "password123".
const (
	SeedUserEmail  = "anna@classifieds.by"
	SeedAdminEmail = "admin@classifieds.by"
	SeedPassword   = "password123"
)

func seedRegions() []domain.Region {
	return []domain.Region{
		{ID: 1, Name: "Minsk region"},
		{ID: 2, Name: "Brest region"},
		{ID: 3, Name: "Grodno region"},
	}
}

func seedDistricts() []domain.District {
	return []domain.District{
		{ID: 10, RegionID: 1, Name: "Minsk district"},
		{ID: 11, RegionID: 1, Name: "Borisov district"},
		{ID: 20, RegionID: 2, Name: "Brest district"},
		{ID: 21, RegionID: 2, Name: "Pinsk district"},
		{ID: 30, RegionID: 3, Name: "Grodno district"},
	}
}

func seedCities() []domain.City {
	return []domain.City{
		{ID: 100, DistrictID: 10, Name: "Minsk"},
		{ID: 101, DistrictID: 10, Name: "Zaslavl"},
		{ID: 110, DistrictID: 11, Name: "Borisov"},
		{ID: 111, DistrictID: 11, Name: "Zhodino"},
		{ID: 200, DistrictID: 20, Name: "Brest"},
		{ID: 210, DistrictID: 21, Name: "Pinsk"},
		{ID: 300, DistrictID: 30, Name: "Grodno"},
	}
}

func seedCategories() []domain.CategoryNode {
	return []domain.CategoryNode{
		{ID: 1, Name: "Transport", Children: []domain.CategoryNode{
			{ID: 2, Name: "Bicycles", Children: []domain.CategoryNode{
				{ID: 3, Name: "Mountain bikes"},
				{ID: 4, Name: "Road bikes"},
			}},
			{ID: 5, Name: "Cars"},
		}},
		{ID: 6, Name: "Electronics", Children: []domain.CategoryNode{
			{ID: 7, Name: "Phones"},
			{ID: 8, Name: "Laptops"},
		}},
		{ID: 9, Name: "Home and garden"},
	}
}

type seedAd struct {
	title       string
	description string
	price       float64
	condition   domain.Condition
	status      domain.AdStatus
	sellerEmail string
	cityID      int64
	categoryID  int64
	age         time.Duration
}

func seedAds() []seedAd {
	return []seedAd{
		{"Mountain bike Stels", "Aluminium frame, 21 speeds.", 350, domain.ConditionUsedGood, domain.AdStatusActive, SeedUserEmail, 100, 3, 72 * time.Hour},
		{"Road bike Merida", "Carbon fork, new tyres.", 900, domain.ConditionUsedLikeNew, domain.AdStatusActive, SeedUserEmail, 110, 4, 48 * time.Hour},
		{"iPhone 12", "Battery 89%, no scratches.", 420, domain.ConditionUsedPerfect, domain.AdStatusActive, SeedAdminEmail, 200, 7, 24 * time.Hour},
		{"ThinkPad T14", "16 GB RAM, sold already.", 700, domain.ConditionUsedGood, domain.AdStatusSold, SeedUserEmail, 100, 8, 12 * time.Hour},
		{"Garden hose 20m", "Brand new, still packed.", 25, domain.ConditionNew, domain.AdStatusActive, SeedAdminEmail, 300, 9, time.Hour},
	}
}
