// Package validator turns raw, partially-trusted request input into typed
// entry changes before any business rule runs.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/penshort/todo/internal/model"
)

// Validator checks entry input. Safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the entry rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
		_, err := model.ParseInstant(fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Validate parses idString and checks raw, returning the typed changes.
// Fields not supplied in raw stay absent.
func (v *Validator) Validate(idString string, raw model.TodoEntryInput) (model.TodoEntryChanges, error) {
	id, err := v.ValidateID(idString)
	if err != nil {
		return model.TodoEntryChanges{}, err
	}

	if err := v.check(raw); err != nil {
		return model.TodoEntryChanges{}, err
	}

	return model.TodoEntryChanges{
		ID:           id,
		Title:        model.FromPtr(raw.Title),
		Description:  model.FromPtr(raw.Description),
		CreatedAt:    model.FromPtr(raw.CreatedAt),
		DueOn:        model.FromPtr(raw.DueOn),
		CompletedOn:  model.FromPtr(raw.CompletedOn),
		LastModified: model.FromPtr(raw.LastModified),
		Completed:    model.FromPtr(raw.Completed),
	}, nil
}

// ValidateID parses a path identifier.
func (v *Validator) ValidateID(idString string) (int64, error) {
	id, err := strconv.ParseInt(idString, 10, 64)
	if err != nil {
		return 0, model.NewValidationError(model.ErrInvalidIdentifierFormat, "id", "ID must be a number")
	}
	return id, nil
}

// ValidateDraft checks a create request and returns the entry draft.
// Timestamps supplied on the draft are dropped; creation assigns them.
func (v *Validator) ValidateDraft(raw model.TodoEntryInput) (*model.TodoEntry, error) {
	if err := v.check(raw); err != nil {
		return nil, err
	}

	draft := &model.TodoEntry{}
	if raw.Title != nil {
		draft.Title = *raw.Title
	}
	if raw.Description != nil {
		draft.Description = *raw.Description
	}
	if raw.Completed != nil {
		draft.Completed = *raw.Completed
	}
	return draft, nil
}

// check runs the struct rules and maps the first failure to an error kind.
func (v *Validator) check(raw model.TodoEntryInput) error {
	err := v.validate.Struct(raw)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		return model.NewValidationError(model.ErrFieldTooLong, fe.Field(),
			fmt.Sprintf("must be %s characters or less", fe.Param()))
	case "instant":
		return model.NewValidationError(model.ErrInvalidTimestampFormat, fe.Field(),
			"dates must be ISO-8601 instants like 2024-03-01T12:00:00.000Z")
	default:
		return fmt.Errorf("validate %s: unexpected rule %q", fe.Field(), fe.Tag())
	}
}
