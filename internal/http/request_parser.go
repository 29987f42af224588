package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"ledger/internal/core"
)

const maxBodyBytes = 64 << 10

// createTransactionSchema describes the POST body. Unknown properties are
// ignored; the domain constructor re-checks trimmed values.
const createTransactionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "amount", "type"],
  "properties": {
    "title":  {"type": "string", "minLength": 1},
    "amount": {"type": "number"},
    "type":   {"type": "string", "enum": ["deposit", "withdrawal"]}
  }
}`

var createTransactionValidator = mustCompileSchema(createTransactionSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

type createTransactionRequest struct {
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

// ParseCreateTransaction reads the body, validates it against the schema
// and builds the domain input. Every client mistake is a *core.ValidationError.
func ParseCreateTransaction(r *http.Request) (core.CreateTransactionInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.CreateTransactionInput{}, core.NewValidationError("body", fmt.Sprintf("request body must not exceed %d bytes", maxBodyBytes))
		}
		return core.CreateTransactionInput{}, fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return core.CreateTransactionInput{}, core.NewValidationError("body", "request body is required")
	}

	if err := validateSchema(createTransactionValidator, body); err != nil {
		return core.CreateTransactionInput{}, err
	}

	var req createTransactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return core.CreateTransactionInput{}, core.NewValidationError("body", "request body is not valid JSON: "+err.Error())
	}

	return core.NewCreateTransactionInput(req.Title, req.Amount, req.Type)
}

// validateSchema converts schema violations into a ValidationError with one
// issue per violation, ordered by field.
func validateSchema(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return core.NewValidationError("body", "request body is not valid JSON")
	}
	if result.Valid() {
		return nil
	}

	verr := &core.ValidationError{}
	for _, re := range result.Errors() {
		verr.Add(issueField(re), re.Description())
	}
	sort.SliceStable(verr.Issues, func(i, j int) bool {
		return verr.Issues[i].Field < verr.Issues[j].Field
	})
	return verr
}

// issueField names the offending property. Missing properties are reported
// on the root object by the validator.
func issueField(re gojsonschema.ResultError) string {
	if re.Type() == "required" {
		if p, ok := re.Details()["property"].(string); ok && p != "" {
			return p
		}
	}
	if f := re.Field(); f != "" && f != gojsonschema.STRING_CONTEXT_ROOT {
		return f
	}
	return "body"
}
