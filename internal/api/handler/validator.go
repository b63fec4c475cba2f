package handler

import "github.com/handmade-gallery/storefront/internal/pkg/validate"

// echoValidator lets Echo call c.Validate(req) with the shared validator.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures are
// *domain.ValidationError so the error handler can list the fields.
func (echoValidator) Validate(i any) error {
	return validate.Struct(i)
}
