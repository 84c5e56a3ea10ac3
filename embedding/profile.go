package embedding

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Role tags what a profile embeds.
type Role string

const (
	RoleDocument Role = "document"
	RoleQuery    Role = "query"
)

// Upstage solar embedding models; passage and query share one vector space.
const (
	DefaultBaseURL       = "https://api.upstage.ai/v1"
	DefaultDocumentModel = "solar-embedding-1-large-passage"
	DefaultQueryModel    = "solar-embedding-1-large-query"
)

// Profile is a named embedding configuration.
type Profile struct {
	Name string `validate:"required"`
	// Model is the remote model identifier.
	Model string `validate:"required"`
	Role  Role   `validate:"required,oneof=document query"`
	// Family groups models producing comparable vectors. Derived from Model
	// when empty.
	Family string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewProfile returns a validated profile for model and role, named after both.
func NewProfile(model string, role Role) (Profile, error) {
	p := Profile{Name: string(role) + ":" + model, Model: model, Role: role}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("embedding: invalid profile %q: %w", p.Name, err)
	}
	return nil
}

// ModelFamily returns Family, or Model without its role suffix.
func (p Profile) ModelFamily() string {
	if p.Family != "" {
		return p.Family
	}
	m := p.Model
	for _, suffix := range []string{"-passage", "-query", "-document"} {
		if strings.HasSuffix(m, suffix) {
			return strings.TrimSuffix(m, suffix)
		}
	}
	return m
}

// Compatible reports whether vectors from p and other can be compared.
func (p Profile) Compatible(other Profile) bool {
	return p.ModelFamily() == other.ModelFamily()
}
