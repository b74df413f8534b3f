package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"qna/pkg/errs"
)

// Request payload schemas. Handlers validate the shape of a body here
// before anything reaches the repository; business rules (lengths,
// existence) stay in the repository layer.

const questionSchemaJSON = `{
	"type": "object",
	"required": ["title", "content"],
	"properties": {
		"title": {"type": "string"},
		"content": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

const answerSchemaJSON = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {"type": "string"}
	},
	"additionalProperties": false
}`

const credentialsSchemaJSON = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string"},
		"password": {"type": "string"}
	},
	"additionalProperties": false
}`

var (
	questionSchema    = mustCompileSchema(questionSchemaJSON)
	answerSchema      = mustCompileSchema(answerSchemaJSON)
	credentialsSchema = mustCompileSchema(credentialsSchemaJSON)
)

func mustCompileSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return rs
}

// validateBody checks body against schema and reports the first keyword
// failure as a ValidationError.
func validateBody(ctx context.Context, schema *jsonschema.Schema, body []byte) error {
	keyErrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return errs.Validation("body", "must be valid JSON")
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		field := strings.TrimPrefix(ke.PropertyPath, "/")
		if field == "" {
			field = "body"
		}
		return errs.Validation(field, ke.Message)
	}
	return nil
}
