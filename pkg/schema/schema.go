// Package schema validates sentence documents against the embedded JSON schema.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentSchemaName is the file name of the embedded document schema.
const DocumentSchemaName = "document-schema.json"

// FS contains the embedded document schema.
//
//go:embed document-schema.json
var FS embed.FS

// Sentinel errors.
var (
	ErrInvalidDocument = errors.New("document does not match schema")
	ErrMalformedJSON   = errors.New("malformed json")
)

// FieldError is one schema violation.
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))

	for _, fieldErr := range e.Errors {
		parts = append(parts, fieldErr.Field+": "+fieldErr.Description)
	}

	return fmt.Sprintf("%v: %s", ErrInvalidDocument, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

var (
	compiled    *gojsonschema.Schema //nolint:gochecknoglobals // compiled once on first use.
	compileErr  error                //nolint:gochecknoglobals // compiled once on first use.
	compileOnce sync.Once            //nolint:gochecknoglobals // compiled once on first use.
)

func documentSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, readErr := FS.ReadFile(DocumentSchemaName)
		if readErr != nil {
			compileErr = fmt.Errorf("read embedded schema: %w", readErr)

			return
		}

		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	})

	return compiled, compileErr
}

// Validate checks raw JSON holding one document or a list of documents.
// Violations are reported as a *ValidationError.
func Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any

	decodeErr := dec.Decode(&value)
	if decodeErr != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, decodeErr)
	}

	return ValidateValue(value)
}

// ValidateValue checks an already decoded document value.
func ValidateValue(value any) error {
	docSchema, err := documentSchema()
	if err != nil {
		return err
	}

	result, err := docSchema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}

	for _, resultErr := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{Field: resultErr.Field(), Description: resultErr.Description()})
	}

	return verr
}
