package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_GTE"`
	Field   string                 `json:"field,omitempty" example:"profile.age"`
	Message string                 `json:"message,omitempty" example:"profile.age must be greater than or equal to 30"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
