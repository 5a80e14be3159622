package api

// ErrorResponse is the body of every failed request.
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invalid form data"`
}

// Fail builds an ErrorResponse.
func Fail(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

// Result acknowledges an action that has no other payload.
// swagger:model api.Result
type Result struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"sync started"`
}

// OK builds a successful Result.
func OK(msg string) Result {
	return Result{Success: true, Message: msg}
}
