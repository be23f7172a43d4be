package domain

// Region is the top level of the location hierarchy.
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// District belongs to exactly one Region.
type District struct {
	ID       int64  `json:"id"`
	RegionID int64  `json:"regionId"`
	Name     string `json:"name"`
}

// City belongs to exactly one District. It is the only location level stored
// on advertisements and users.
type City struct {
	ID         int64  `json:"id"`
	DistrictID int64  `json:"districtId"`
	Name       string `json:"name"`
}

// CityLocation is a city resolved to its full chain of ancestors.
type CityLocation struct {
	Region   Region   `json:"region"`
	District District `json:"district"`
	City     City     `json:"city"`
}
