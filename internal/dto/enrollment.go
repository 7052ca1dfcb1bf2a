package dto

// UpdateProgressRequest carries a new progress percentage.
type UpdateProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required"`
}

// ValidateEnrollmentRequest carries a teacher's decision (ACCEPT or REJECT).
type ValidateEnrollmentRequest struct {
	Decision string `json:"decision" validate:"required"`
}
