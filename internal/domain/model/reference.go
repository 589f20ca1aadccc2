package model

type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SubCity struct {
	ID     string `json:"id"`
	CityID string `json:"city_id"`
	Name   string `json:"name"`
}

type Amenity struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
