package dto

type PlaceResponse struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}
