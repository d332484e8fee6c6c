package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "manifest.schema.json"

//go:embed schema/manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is a single schema or invariant violation.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/tools/3/install/0")
	Message string // Human-readable error message
	Keyword string // Schema keyword or invariant that failed
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError reports every problem found while loading a manifest.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid manifest (%d issue(s)): %s", len(e.Issues), strings.Join(parts, "; "))
}

// manifestSchema compiles the embedded schema on first use.
func manifestSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("decoding manifest schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("registering manifest schema: %w", err)
			return
		}
		if compiledSchema, err = c.Compile(schemaURL); err != nil {
			compileErr = fmt.Errorf("compiling manifest schema: %w", err)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw manifest YAML against the embedded schema. A returned
// error means the document could not be checked at all; schema violations
// are reported in the result.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := manifestSchema()
	if err != nil {
		return nil, err
	}

	inst, err := schemaInstance(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	return &ValidationResult{Issues: schemaIssues(ve)}, nil
}

// ValidateFile is Validate on the contents of path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// schemaInstance turns YAML into the JSON value model the validator expects,
// with numbers kept as json.Number.
func schemaInstance(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	buf, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("converting manifest to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decoding manifest JSON: %w", err)
	}
	return inst, nil
}

// schemaIssues flattens the error tree into its leaves. Wrapper keywords
// (oneOf on the update field, $ref into definitions) are dropped in favour
// of the property-level causes beneath them, and repeats are removed.
func schemaIssues(root *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	seen := map[ValidationIssue]bool{}

	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		for _, cause := range ve.Causes {
			walk(cause)
		}
		if len(ve.Causes) > 0 || ve.ErrorKind == nil {
			return
		}
		kw := ve.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		switch keyword := kw[len(kw)-1]; keyword {
		case "oneOf", "anyOf", "allOf", "$ref":
		default:
			issue := ValidationIssue{
				Path:    instancePath(ve.InstanceLocation),
				Message: ve.ErrorKind.LocalizedString(printer),
				Keyword: keyword,
			}
			if !seen[issue] {
				seen[issue] = true
				issues = append(issues, issue)
			}
		}
	}
	walk(root)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	return issues
}

func instancePath(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	return "/" + strings.Join(loc, "/")
}

// jsonCompatible rewrites decoded YAML so json.Marshal accepts it. Non-string
// map keys (a bare `1:`) become strings and are left for the schema to reject.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonCompatible(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = jsonCompatible(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonCompatible(e)
		}
		return out
	default:
		return val
	}
}
