package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxIDLength    = 256
	MaxProperties  = 100
	MaxPropertyKey = 100

	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)

	// weightFactors must lie in [0,1] when present
	weightFactors = []string{"exploitability", "exposure", "privilege_gain", "recency"}
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("nodetype", func(fl validator.FieldLevel) bool {
		_, err := graph.ParseNodeType(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("relation", func(fl validator.FieldLevel) bool {
		_, err := graph.ParseRelationType(fl.Field().String())
		return err == nil
	})
}

// NodeRecord is a node as delivered by a graph-data provider
type NodeRecord struct {
	ID         string         `json:"id" yaml:"id" validate:"required,max=256"`
	Type       string         `json:"type" yaml:"type" validate:"required,nodetype"`
	Critical   bool           `json:"critical" yaml:"critical"`
	Attributes map[string]any `json:"attributes" yaml:"attributes" validate:"omitempty,max=100"`
}

// EdgeRecord is a relationship as delivered by a graph-data provider
type EdgeRecord struct {
	Source     string         `json:"source" yaml:"source" validate:"required,max=256"`
	Target     string         `json:"target" yaml:"target" validate:"required,max=256"`
	Relation   string         `json:"relation" yaml:"relation" validate:"required,relation"`
	Properties map[string]any `json:"properties" yaml:"properties" validate:"omitempty,max=100"`
}

// QueryRequest is an attack-path query before defaults are applied
type QueryRequest struct {
	Target  string `validate:"required,max=256"`
	MaxHops int    `validate:"gte=0"`
	K       int    `validate:"gte=0"`
}

// ValidateNodeRecord validates a provider node record
func ValidateNodeRecord(rec *NodeRecord) error {
	if rec == nil {
		return errors.New("node record cannot be nil")
	}
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("node %q: %w", rec.ID, formatValidationError(err))
	}
	for key := range rec.Attributes {
		if err := ValidatePropertyKey(key); err != nil {
			return fmt.Errorf("node %q: Attributes: %w", rec.ID, err)
		}
	}
	return nil
}

// ValidateEdgeRecord validates a provider edge record, including the range
// of any weight factor it carries
func ValidateEdgeRecord(rec *EdgeRecord) error {
	if rec == nil {
		return errors.New("edge record cannot be nil")
	}
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("edge %s->%s: %w", rec.Source, rec.Target, formatValidationError(err))
	}
	for key := range rec.Properties {
		if err := ValidatePropertyKey(key); err != nil {
			return fmt.Errorf("edge %s->%s: Properties: %w", rec.Source, rec.Target, err)
		}
	}
	for _, key := range weightFactors {
		raw, ok := rec.Properties[key]
		if !ok {
			continue
		}
		f, ok := graph.Float(raw)
		if !ok {
			return fmt.Errorf("edge %s->%s: %s: must be numeric, got %v", rec.Source, rec.Target, key, raw)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("edge %s->%s: %s: value %g is outside range [0, 1]", rec.Source, rec.Target, key, f)
		}
	}
	return nil
}

// ValidateQuery validates the raw arguments of an attack-path query
func ValidateQuery(req *QueryRequest) error {
	if req == nil {
		return errors.New("query cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidatePropertyKey validates an attribute or property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a readable message
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failing field
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s, got %v", field, param, e.Value())
		case "nodetype":
			return fmt.Errorf("%s: unknown node type %q", field, e.Value())
		case "relation":
			return fmt.Errorf("%s: unknown relation %q", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
