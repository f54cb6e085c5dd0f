package foursquare

// SearchResponse represents the Foursquare Places nearby-search response.
type SearchResponse struct {
	Results []Place `json:"results"`
}

// Place represents a single place row.
type Place struct {
	FsqID      string     `json:"fsq_id"`
	Name       string     `json:"name"`
	Distance   int        `json:"distance,omitempty"` // meters from the search center
	Rating     *float64   `json:"rating,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	Geocodes   *Geocodes  `json:"geocodes,omitempty"`
	Location   *Location  `json:"location,omitempty"`
}

// Category is a POI category tag.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Geocodes carries the place's coordinate representations.
type Geocodes struct {
	Main *LatLng `json:"main,omitempty"`
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location carries address details.
type Location struct {
	FormattedAddress string `json:"formatted_address,omitempty"`
	Country          string `json:"country,omitempty"`
	Locality         string `json:"locality,omitempty"`
}
