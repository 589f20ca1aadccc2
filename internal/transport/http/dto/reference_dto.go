package dto

type CityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SubCityResponse struct {
	ID     string `json:"id"`
	CityID string `json:"city_id"`
	Name   string `json:"name"`
}

type AmenityResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type CitiesResponse struct {
	Items []CityResponse `json:"items"`
}

type SubCitiesResponse struct {
	Items []SubCityResponse `json:"items"`
}

type AmenitiesResponse struct {
	Items []AmenityResponse `json:"items"`
}
