package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/slug"
)

// Rules shared by create payloads (struct tags) and partial updates.
const (
	ruleURL         = "http_url"
	ruleEmail       = "email"
	rulePositive    = "gt=0"
	ruleSearchType  = "omitempty,oneof=all projects posts"
	msgSlugRequired = "must contain at least one letter or digit"
)

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func ruleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "http_url", "url":
		return "must be an absolute http(s) URL"
	case "gt":
		if param == "0" {
			return "must be a positive integer"
		}
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		return fmt.Sprintf("failed %s validation", tag)
	}
}

// Struct validates a payload by its struct tags.
func (v *requestValidator) Struct(payload any) portfolio.ValidationErrors {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return portfolio.ValidationErrors{{Field: "body", Message: err.Error()}}
	}
	out := make(portfolio.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &portfolio.ValidationError{Field: fe.Field(), Message: ruleMessage(fe.Tag(), fe.Param())})
	}
	return out
}

// Var validates a single value against rules, reporting it as field.
func (v *requestValidator) Var(field string, value any, rules string) *portfolio.ValidationError {
	err := v.validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &portfolio.ValidationError{Field: field, Message: ruleMessage(fieldErrs[0].Tag(), fieldErrs[0].Param())}
	}
	return &portfolio.ValidationError{Field: field, Message: err.Error()}
}

// fieldChecks accumulates failures across the fields of one request.
type fieldChecks struct {
	v    *requestValidator
	errs portfolio.ValidationErrors
}

func (c *fieldChecks) add(err *portfolio.ValidationError) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *fieldChecks) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// checkOptional validates a partial-update field. Unset passes; null passes
// only for nullable fields; values are checked against rules.
func checkOptional[T any](c *fieldChecks, field string, o portfolio.Optional[T], nullable bool, rules string) {
	if !o.IsSet() {
		return
	}
	if o.IsNull() {
		if !nullable {
			c.add(&portfolio.ValidationError{Field: field, Message: "must not be null"})
		}
		return
	}
	if rules == "" {
		return
	}
	value, _ := o.Get()
	c.add(c.v.Var(field, value, rules))
}

func checkTitle(c *fieldChecks, title string) {
	if title != "" && slug.Derive(title) == "" {
		c.add(&portfolio.ValidationError{Field: "title", Message: msgSlugRequired})
	}
}

func (v *requestValidator) profile(req portfolio.UpsertProfileRequest) error {
	c := &fieldChecks{v: v}
	checkOptional(c, "name", req.Name, false, "")
	checkOptional(c, "title", req.Title, false, "")
	checkOptional(c, "bio", req.Bio, false, "")
	checkOptional(c, "email", req.Email, true, ruleEmail)
	checkOptional(c, "github_url", req.GithubURL, true, ruleURL)
	checkOptional(c, "linkedin_url", req.LinkedinURL, true, ruleURL)
	checkOptional(c, "website_url", req.WebsiteURL, true, ruleURL)
	checkOptional(c, "profile_image_url", req.ProfileImageURL, true, ruleURL)
	return c.err()
}

func (v *requestValidator) updateProject(req portfolio.UpdateProjectRequest) error {
	c := &fieldChecks{v: v}
	checkOptional(c, "title", req.Title, false, "required")
	checkOptional(c, "description", req.Description, false, "required")
	checkOptional(c, "tech_stack", req.TechStack, true, "")
	checkOptional(c, "project_url", req.ProjectURL, true, ruleURL)
	checkOptional(c, "github_url", req.GithubURL, true, ruleURL)
	checkOptional(c, "image_url", req.ImageURL, true, ruleURL)
	checkOptional(c, "is_featured", req.IsFeatured, false, "")
	checkOptional(c, "display_order", req.DisplayOrder, false, "")
	return c.err()
}

func (v *requestValidator) updatePost(req portfolio.UpdatePostRequest) error {
	c := &fieldChecks{v: v}
	checkOptional(c, "title", req.Title, false, "required")
	if title, ok := req.Title.Get(); ok {
		checkTitle(c, title)
	}
	checkOptional(c, "content", req.Content, false, "required")
	checkOptional(c, "excerpt", req.Excerpt, true, "")
	checkOptional(c, "is_published", req.IsPublished, false, "")
	checkOptional(c, "tags", req.Tags, true, "")
	checkOptional(c, "reading_time_minutes", req.ReadingTimeMinutes, true, rulePositive)
	return c.err()
}

func (v *requestValidator) createPost(p createPostPayload) error {
	c := &fieldChecks{v: v, errs: v.Struct(p)}
	checkTitle(c, p.Title)
	return c.err()
}

func (v *requestValidator) createProject(p createProjectPayload) error {
	c := &fieldChecks{v: v, errs: v.Struct(p)}
	return c.err()
}

func (v *requestValidator) search(query, searchType string) error {
	c := &fieldChecks{v: v}
	if query == "" {
		c.add(&portfolio.ValidationError{Field: "q", Message: "is required"})
	}
	c.add(v.Var("type", searchType, ruleSearchType))
	return c.err()
}
