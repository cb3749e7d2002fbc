package user

import (
	"context"
	"time"

	"github.com/trezcool/rastreio/core"
)

// User is a person authoring comments on requirements.
type User struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	Name      string    `json:"name" db:"name" yaml:"name"`
	Username  string    `json:"username" db:"username" yaml:"username"`
	Email     string    `json:"email" db:"email" yaml:"email"`
	IsActive  bool      `json:"is_active" db:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" yaml:"updated_at"` // UTC
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,max=150"`
	Username string `json:"username" validate:"required,min=3,max=150,alphanum_"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username, nu.Email, "")
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name     string `json:"name" validate:"max=150"`
	Username string `json:"username" validate:"omitempty,min=3,max=150,alphanum_"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, uu.Username, uu.Email, origUsr.ID)
}

type QueryFilter struct {
	Search   string `query:"q"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
