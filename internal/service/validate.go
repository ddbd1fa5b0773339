package service

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Pre-submission length rules. These are client-side checks only.
const (
	MinUsernameLen         = 3
	MinLoginPasswordLen    = 6
	MinRegisterPasswordLen = 8
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// NormalizeDraft trims text fields and fills in the default priority
// (medium) and status (pending).
func NormalizeDraft(d Draft) Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Deadline = strings.TrimSpace(d.Deadline)
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.Tags != nil {
		tags := make([]string, len(d.Tags))
		for i, tag := range d.Tags {
			tags[i] = strings.TrimSpace(tag)
		}
		d.Tags = tags
	}
	return d
}

// ValidateDraft checks a normalized draft for create.
func ValidateDraft(d Draft) error {
	return fieldErrors(validate.Struct(d), "")
}

// NormalizePatch trims the text fields that are set.
func NormalizePatch(p Patch) Patch {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.Deadline != nil {
		deadline := strings.TrimSpace(*p.Deadline)
		p.Deadline = &deadline
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		for i, tag := range *p.Tags {
			tags[i] = strings.TrimSpace(tag)
		}
		p.Tags = &tags
	}
	return p
}

// ValidatePatch checks the fields a normalized patch sets. An empty
// deadline is allowed and clears the deadline.
func ValidatePatch(p Patch) error {
	var fields []FieldError
	check := func(name string, value any, tag string) {
		if err := fieldErrors(validate.Var(value, tag), name); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				fields = append(fields, ve.Fields...)
			}
		}
	}
	if p.Title != nil {
		check("title", *p.Title, "required")
	}
	if p.Priority != nil {
		check("priority", string(*p.Priority), "oneof=low medium high")
	}
	if p.Status != nil {
		check("status", string(*p.Status), "oneof=pending in-progress completed")
	}
	if p.Deadline != nil {
		check("deadline", *p.Deadline, "omitempty,datetime=2006-01-02")
	}
	if p.Tags != nil {
		for i, tag := range *p.Tags {
			if tag == "" {
				fields = append(fields, FieldError{Field: "tags[" + strconv.Itoa(i) + "]", Code: "required"})
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateFilter checks the priority and status criteria that are set.
func ValidateFilter(f Filter) error {
	var fields []FieldError
	if err := fieldErrors(validate.Var(string(f.Priority), "omitempty,oneof=low medium high"), "priority"); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}
	if err := fieldErrors(validate.Var(string(f.Status), "omitempty,oneof=pending in-progress completed"), "status"); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateLogin checks credentials before a login request.
func ValidateLogin(c Credentials) error {
	return validateCredentials(c, MinLoginPasswordLen)
}

// ValidateRegistration checks credentials before a registration request.
func ValidateRegistration(c Credentials) error {
	return validateCredentials(c, MinRegisterPasswordLen)
}

func validateCredentials(c Credentials, minPassword int) error {
	var fields []FieldError
	if err := fieldErrors(validate.Var(strings.TrimSpace(c.Username), "required,min="+strconv.Itoa(MinUsernameLen)), "username"); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}
	if err := fieldErrors(validate.Var(c.Password, "required,min="+strconv.Itoa(minPassword)), "password"); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// fieldErrors converts validator output into a ValidationError. name
// replaces the field name for single-value checks.
func fieldErrors(err error, name string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: name, Code: "invalid"}}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if name != "" {
			field = name
		}
		fields = append(fields, FieldError{Field: field, Code: codeFor(fe.Tag()), Param: fe.Param()})
	}
	return &ValidationError{Fields: fields}
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min":
		return "too_short"
	case "oneof":
		return "invalid_choice"
	case "datetime":
		return "invalid_date"
	default:
		return tag
	}
}
