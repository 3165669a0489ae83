package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jaekwang-park/todo-items-api/internal/service"
)

// nonFieldErrors is the key used for errors that concern the whole document.
const nonFieldErrors = "non_field_errors"

// itemSchemaJSON describes the writable wire shape of an item. Read-only
// fields (id, created_at, updated_at) and unknown fields are accepted and ignored.
const itemSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"completed": {"type": "boolean"}
	}
}`

var typeMessages = map[string]string{
	"title":        "Not a valid string.",
	"completed":    "Must be a valid boolean.",
	nonFieldErrors: "Invalid data. Expected a dictionary.",
}

var (
	errMalformedBody = errors.New("malformed request body")
	errTrailingData  = errors.New("unexpected data after JSON value")
)

// ItemSerializer converts request bodies into service input, mirroring the
// item fields one to one.
type ItemSerializer struct {
	schema *jsonschema.Schema
}

func NewItemSerializer() *ItemSerializer {
	return &ItemSerializer{
		schema: jsonschema.MustCompileString("item.schema.json", itemSchemaJSON),
	}
}

// Decode parses and validates a JSON body. An empty body decodes as an empty
// object. The body must hold a single JSON value. Shape violations are returned as *service.ValidationError.
func (s *ItemSerializer) Decode(r io.Reader) (service.ItemInput, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			return service.ItemInput{}, fmt.Errorf("%w: %w", errMalformedBody, err)
		}
		doc = map[string]any{}
	} else if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return service.ItemInput{}, fmt.Errorf("%w: %w", errMalformedBody, err)
	}

	if err := s.schema.Validate(doc); err != nil {
		return service.ItemInput{}, schemaToValidationError(err, doc)
	}

	obj := doc.(map[string]any)
	var input service.ItemInput
	if v, ok := obj["title"]; ok {
		title := v.(string)
		input.Title = &title
	}
	if v, ok := obj["completed"]; ok {
		completed := v.(bool)
		input.Completed = &completed
	}
	return input, nil
}

func schemaToValidationError(err error, doc any) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("failed to validate item: %w", err)
	}

	verr := service.NewValidationError()
	collectSchemaErrors(verr, ve, doc)
	if !verr.HasErrors() {
		verr.Add(nonFieldErrors, ve.Message)
	}
	return verr
}

func collectSchemaErrors(verr *service.ValidationError, ve *jsonschema.ValidationError, doc any) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectSchemaErrors(verr, cause, doc)
		}
		return
	}

	field := fieldName(ve.InstanceLocation)
	verr.Add(field, fieldMessage(field, ve, doc))
}

func fieldMessage(field string, ve *jsonschema.ValidationError, doc any) string {
	if obj, ok := doc.(map[string]any); ok && field != nonFieldErrors {
		if v, present := obj[field]; present && v == nil {
			return "This field may not be null."
		}
	}
	if strings.HasSuffix(ve.KeywordLocation, "/type") {
		if msg, ok := typeMessages[field]; ok {
			return msg
		}
	}
	return ve.Message
}

// fieldName returns the top-level property a JSON pointer refers to.
func fieldName(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nonFieldErrors
	}
	name, _, _ := strings.Cut(ptr, "/")
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}
