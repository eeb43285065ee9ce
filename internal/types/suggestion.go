//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Suggestion is the structured output of the analysis gateway, or its fallback
type Suggestion struct {
	Headline         string   `json:"headline"`
	Priority         int      `json:"priority"`
	Category         Category `json:"category"`
	SuggestedFormats []string `json:"suggestedFormats"`
	Summary          string   `json:"summary"`

	// Fallback is set when the suggestion was not produced by the service
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Patch is a partial edit of a work item. Nil fields are left unchanged.
type Patch struct {
	Headline         *string   `json:"headline,omitempty" validate:"omitempty,min=1"`
	Priority         *int      `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	Category         *Category `json:"category,omitempty" validate:"omitempty,category"`
	Assignee         *string   `json:"assignee,omitempty"`
	LiveLink         *string   `json:"liveLink,omitempty"`
	Feedback         *string   `json:"feedback,omitempty"`
	Summary          *string   `json:"summary,omitempty"`
	SuggestedFormats []string  `json:"suggestedFormats,omitempty" validate:"omitempty,dive,required"`
	ToggleFormats    []string  `json:"toggleFormats,omitempty" validate:"omitempty,dive,required"`
	AddComment       *string   `json:"addComment,omitempty" validate:"omitempty,min=1"`
}

// Validate validates the Patch using the validator.
// Categories match case-insensitively, as they do everywhere else.
func (p *Patch) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("category", validCategory); err != nil {
		return err
	}
	return validate.Struct(p)
}

func validCategory(fl validator.FieldLevel) bool {
	_, ok := ParseCategory(fl.Field().String())
	return ok
}

// IsEmpty reports whether the patch changes nothing
func (p *Patch) IsEmpty() bool {
	return p.Headline == nil && p.Priority == nil && p.Category == nil &&
		p.Assignee == nil && p.LiveLink == nil && p.Feedback == nil &&
		p.Summary == nil && p.SuggestedFormats == nil && len(p.ToggleFormats) == 0 &&
		p.AddComment == nil
}

// Apply returns a copy of item with the patch applied.
// Stage, ID, CreatedDate and RawContent are never changed by a patch.
func (p *Patch) Apply(item WorkItem) WorkItem {
	out := item.Clone()
	if p.Headline != nil {
		out.Headline = *p.Headline
	}
	if p.Priority != nil {
		out.Priority = CoercePriority(*p.Priority)
	}
	if p.Category != nil {
		out.Category = CoerceCategory(string(*p.Category))
	}
	if p.Assignee != nil {
		out.Assignee = strings.TrimSpace(*p.Assignee)
		if out.Assignee == "" {
			out.Assignee = DefaultAssignee
		}
	}
	if p.LiveLink != nil {
		out.LiveLink = strings.TrimSpace(*p.LiveLink)
	}
	if p.Feedback != nil {
		out.Feedback = *p.Feedback
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}
	if p.SuggestedFormats != nil {
		out.SuggestedFormats = append([]string{}, p.SuggestedFormats...)
	}
	for _, label := range p.ToggleFormats {
		out.ToggleFormat(label)
	}
	if p.AddComment != nil {
		out.Comments = append(out.Comments, *p.AddComment)
	}
	return out
}

// CreateRequest confirms a suggestion into a new work item
type CreateRequest struct {
	Suggestion Suggestion `json:"suggestion"`
	RawText    string     `json:"rawText"`
	Assignee   string     `json:"assignee,omitempty"`
}

// Validate validates the CreateRequest.
func (r *CreateRequest) Validate() error {
	validate := validator.New()
	return validate.Var(r.Suggestion.Headline, "required")
}
