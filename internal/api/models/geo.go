package models

// Place is one geocoding or autocomplete result.
type Place struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Point   Point  `json:"point"`
	Country string `json:"country,omitempty"`
}

// PlaceList is the response for geocoding and autocomplete queries.
type PlaceList struct {
	Items []Place `json:"items"`
}
