package usecase

import (
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the domain enum tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)

	statuses := make([]string, len(domain.CandidateStatuses))
	for i, s := range domain.CandidateStatuses {
		statuses[i] = string(s)
	}
	roles := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		roles[i] = string(r)
	}

	_ = validation.RegisterEnum(v, "candidate_status", statuses...)
	_ = validation.RegisterEnum(v, "candidate_level",
		string(domain.LevelJunior), string(domain.LevelMid), string(domain.LevelSenior))
	_ = validation.RegisterEnum(v, "live_code_verdict",
		string(domain.VerdictPass), string(domain.VerdictFail), string(domain.VerdictOnHold))
	_ = validation.RegisterEnum(v, "user_role", roles...)
	return v
}
