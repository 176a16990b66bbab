package testgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const requestSchemaURL = "schema://test-request.json"

// requestSchema describes the JSON form of a TestRequest accepted by the
// CLI --request flag and the HTTP API. Legacy level labels are accepted.
var requestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"job_description": map[string]any{
			"type":      "string",
			"minLength": 1,
			"pattern":   `\S`,
		},
		"company_domain": map[string]any{
			"type": "string",
			"enum": domainEnum(),
		},
		"experience_level": map[string]any{
			"type": "string",
			"enum": []any{string(LevelEntry), string(LevelMid), string(LevelSenior), legacySeniorLabel},
		},
		"mcq_count": map[string]any{
			"type":    "integer",
			"minimum": MinMCQ,
			"maximum": MaxMCQ,
		},
		"include_coding": map[string]any{"type": "boolean"},
		"short_answer_count": map[string]any{
			"type":    "integer",
			"minimum": MinShortAnswer,
			"maximum": MaxShortAnswer,
		},
	},
	"required":             []any{"job_description", "company_domain", "experience_level"},
	"additionalProperties": false,
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// ParseRequest decodes and schema-validates a JSON TestRequest. Omitted
// counts and include_coding take their defaults.
func ParseRequest(raw []byte) (TestRequest, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return TestRequest{}, &ValidationError{Field: "request", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return TestRequest{}, fmt.Errorf("compile request schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return TestRequest{}, &ValidationError{Field: "request", Message: fmt.Sprintf("schema validation failed: %v", err)}
	}

	req := DefaultRequest()
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&req); err != nil {
		return TestRequest{}, &ValidationError{Field: "request", Message: err.Error()}
	}

	level, err := ParseExperienceLevel(string(req.ExperienceLevel))
	if err != nil {
		return TestRequest{}, err
	}
	req.ExperienceLevel = level

	return req, nil
}

// getCompiledSchema compiles the request schema once.
func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler expects a parsed JSON value, so round-trip the Go
		// literal to normalize its number and slice types.
		defBytes, err := json.Marshal(requestSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(requestSchemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(requestSchemaURL)
	})
	return compiledSchema, compileErr
}

func domainEnum() []any {
	out := make([]any, len(Domains))
	for i, d := range Domains {
		out[i] = d
	}
	return out
}
