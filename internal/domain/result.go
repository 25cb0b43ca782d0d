package domain

// Result is the outcome of a mutating operation. Rule violations such as a
// daily cap or an insufficient balance are reported here, never as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ok returns a successful result.
func Ok(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Fail returns an unsuccessful result.
func Fail(msg string) Result {
	return Result{Success: false, Message: msg}
}
