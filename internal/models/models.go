package models

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Words  int    `json:"words"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
