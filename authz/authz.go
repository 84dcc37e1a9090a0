// Package authz decides whether a principal may act on a resource. Every
// rule works on the owner id resolved from the resource's ownership chain
// (Answer -> Question -> Quiz -> User).
package authz

import (
	"errors"
	"fmt"

	"quizhub/apperrors"
	"quizhub/models"

	"github.com/google/uuid"
)

type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

type Kind string

const (
	KindUser     Kind = "user"
	KindQuiz     Kind = "quiz"
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

const (
	ReasonNotOwner           = "The user doesn't have enough privileges"
	ReasonProtectedSuperuser = "Superuser accounts cannot be deleted"
)

// ErrChainNotLoaded is returned when a parent relation needed to resolve the
// owner was not eagerly loaded.
var ErrChainNotLoaded = errors.New("ownership chain not loaded")

type Principal struct {
	ID        uuid.UUID
	Superuser bool
}

func PrincipalOf(u *models.User) Principal {
	return Principal{ID: u.ID, Superuser: u.IsSuperuser}
}

// Resource is the authorization view of an entity.
type Resource struct {
	Kind    Kind
	OwnerID uuid.UUID
	// Protected marks a superuser account, which cannot be deleted.
	Protected bool
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into a Forbidden error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.Forbidden(d.Reason)
}

// OwnerOf walks the ownership chain of entity and returns the owning user id.
func OwnerOf(entity any) (uuid.UUID, error) {
	switch e := entity.(type) {
	case *models.User:
		return e.ID, nil
	case *models.Quiz:
		return e.OwnerID, nil
	case *models.Question:
		if e.Quiz == nil {
			return uuid.Nil, fmt.Errorf("question %s: %w", e.ID, ErrChainNotLoaded)
		}
		return OwnerOf(e.Quiz)
	case *models.Answer:
		if e.Question == nil {
			return uuid.Nil, fmt.Errorf("answer %s: %w", e.ID, ErrChainNotLoaded)
		}
		return OwnerOf(e.Question)
	default:
		return uuid.Nil, fmt.Errorf("no ownership chain for %T", entity)
	}
}

// ResourceOf builds the Resource for a loaded entity.
func ResourceOf(entity any) (Resource, error) {
	owner, err := OwnerOf(entity)
	if err != nil {
		return Resource{}, err
	}
	r := Resource{OwnerID: owner}
	switch e := entity.(type) {
	case *models.User:
		r.Kind = KindUser
		r.Protected = e.IsSuperuser
	case *models.Quiz:
		r.Kind = KindQuiz
	case *models.Question:
		r.Kind = KindQuestion
	case *models.Answer:
		r.Kind = KindAnswer
	}
	return r, nil
}

type rule func(p Principal, r Resource, a Action) Decision

var rules = map[Kind]rule{
	KindUser:     userRule,
	KindQuiz:     ownerOnlyCreate,
	KindQuestion: ownerOrSuperuser,
	KindAnswer:   ownerOnlyCreate,
}

// Authorize evaluates the rule table for r's kind. Unknown kinds are denied.
func Authorize(p Principal, r Resource, a Action) Decision {
	if p.ID == uuid.Nil {
		return deny(ReasonNotOwner)
	}
	check, ok := rules[r.Kind]
	if !ok {
		return deny(ReasonNotOwner)
	}
	return check(p, r, a)
}

// Check is Authorize for an entity, returning a Forbidden error on denial.
func Check(p Principal, entity any, a Action) error {
	r, err := ResourceOf(entity)
	if err != nil {
		return apperrors.Internal(err)
	}
	return Authorize(p, r, a).Err()
}

func ownerOrSuperuser(p Principal, r Resource, _ Action) Decision {
	if p.Superuser || p.ID == r.OwnerID {
		return allow()
	}
	return deny(ReasonNotOwner)
}

// ownerOnlyCreate lets superusers read and modify but not create under
// somebody else's ownership.
func ownerOnlyCreate(p Principal, r Resource, a Action) Decision {
	if a == Create {
		if p.ID == r.OwnerID {
			return allow()
		}
		return deny(ReasonNotOwner)
	}
	return ownerOrSuperuser(p, r, a)
}

func userRule(p Principal, r Resource, a Action) Decision {
	if a == Delete && r.Protected {
		return deny(ReasonProtectedSuperuser)
	}
	return ownerOrSuperuser(p, r, a)
}
