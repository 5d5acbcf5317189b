package openrouteservice

// directionsRequest is the request body for the ORS directions endpoint.
// Coordinates are [lon, lat] pairs, origin first.
type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// directionsResponse is the subset of the ORS directions response we use.
type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
	} `json:"routes"`
}

// geocodeResponse is the GeoJSON FeatureCollection returned by the ORS
// geocode search and autocomplete endpoints.
type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			Name    string `json:"name"`
			Label   string `json:"label"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// errorResponse is the ORS error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
