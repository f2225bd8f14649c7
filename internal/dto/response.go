package dto

// APIResponse is the uniform envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func Error(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

type StatsResponse struct {
	Accounts          int64 `json:"accounts"`
	ActiveSessions    int64 `json:"activeSessions"`
	BlacklistedTokens int64 `json:"blacklistedTokens"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
