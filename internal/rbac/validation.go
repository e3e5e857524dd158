package rbac

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	roleNameMin = 2
	roleNameMax = 100
)

// Messages shown for rejected role forms.
const (
	MsgRoleNameRequired   = "Role name is required"
	MsgRoleNameInvalid    = "Role name must be 2-100 characters of letters, digits, spaces, hyphens or underscores"
	MsgRoleNameTaken      = "A role with this name already exists"
	MsgDescriptionTooLong = "Description is too long"
	MsgNoPermissions      = "Select at least one permission"
	MsgInvalidPermissions = "One or more selected permissions do not exist"
	MsgInvalidSections    = "One or more menu sections do not exist"
)

var roleNamePattern = regexp.MustCompile(`^[A-Za-z0-9\s\-_]+$`)

// RoleInput is the editable part of a role.
type RoleInput struct {
	Name          string `validate:"required,rolename"`
	Description   string `validate:"max=1000"`
	PermissionIDs []uint `validate:"min=1"`
}

// MenuAccess is the per-section setting of a role.
type MenuAccess struct {
	Visible  bool `json:"visible"`
	Priority bool `json:"priority"`
}

// normalized clears priority on hidden sections: a priority section is always visible.
func (m MenuAccess) normalized() MenuAccess {
	if !m.Visible {
		m.Priority = false
	}

	return m
}

// ValidRoleName reports whether name, after trimming, is an acceptable role name.
func ValidRoleName(name string) bool {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	return n >= roleNameMin && n <= roleNameMax && roleNamePattern.MatchString(name)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
		return ValidRoleName(fl.Field().String())
	})

	return v
}

// check validates the form fields and returns the collected problems.
// The input is trimmed in place and duplicate permission ids are dropped.
func (s *Service) check(in *RoleInput) *ValidationError {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.PermissionIDs = uniqueIDs(in.PermissionIDs)

	problems := &ValidationError{}

	err := s.validate.Struct(in)
	if err == nil {
		return problems
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		problems.add(err.Error())

		return problems
	}

	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Name":
			if fe.Tag() == "required" {
				problems.add(MsgRoleNameRequired)
			} else {
				problems.add(MsgRoleNameInvalid)
			}
		case "Description":
			problems.add(MsgDescriptionTooLong)
		case "PermissionIDs":
			problems.add(MsgNoPermissions)
		}
	}

	return problems
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
