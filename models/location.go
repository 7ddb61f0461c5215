package models

// Location is one entry of the country directory.
type Location struct {
	// Code is the lowercase ISO-3166 alpha-2 country code.
	Code string `json:"code"`

	// Name is the common display name.
	Name string `json:"name"`
}

// LocationsResponse is the response for GET /api/v1/locations.
type LocationsResponse struct {
	Success   bool         `json:"success"`
	Locations []Location   `json:"locations"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// LocationResponse is the response for GET /api/v1/locations/:code.
type LocationResponse struct {
	Success  bool         `json:"success"`
	Location *Location    `json:"location,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}
