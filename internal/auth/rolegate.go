package auth

import "github.com/accesslab/employee-auth-api/internal/model"

// Authorize checks a token's role set against the roles an operation
// requires. An empty required set means any authenticated identity passes.
// Otherwise the check succeeds when the intersection is non-empty: required
// roles are alternatives, never a conjunction.
func Authorize(have []model.Role, required ...model.Role) error {
	if len(required) == 0 {
		return nil
	}
	for _, need := range required {
		for _, r := range have {
			if r == need {
				return nil
			}
		}
	}
	return ErrInsufficientRole
}
