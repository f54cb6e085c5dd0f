package tripadvisor

// NearbyResponse represents the TripAdvisor content API nearby-search
// response.
type NearbyResponse struct {
	Data []LocationRow `json:"data"`
}

// LocationRow represents a single nearby location. Coordinates are not
// guaranteed: some rows carry only an address, which is resolved through
// the fallback geocoder; rows with neither are skipped.
type LocationRow struct {
	LocationID string      `json:"location_id"`
	Name       string      `json:"name"`
	Distance   string      `json:"distance,omitempty"`
	Latitude   string      `json:"latitude,omitempty"`
	Longitude  string      `json:"longitude,omitempty"`
	AddressObj *AddressObj `json:"address_obj,omitempty"`
}

// AddressObj carries the row's address details.
type AddressObj struct {
	Street1       string `json:"street1,omitempty"`
	City          string `json:"city,omitempty"`
	Country       string `json:"country,omitempty"`
	AddressString string `json:"address_string,omitempty"`
}
