package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Document is the input to one analysis call
type Document struct {
	Title   string       `json:"title"`
	Type    DocumentType `json:"type"`
	Content string       `json:"content"`
}

// DocumentType classifies the legal document
type DocumentType string

const (
	DocTermsOfService DocumentType = "TERMS_OF_SERVICE"
	DocPrivacyPolicy  DocumentType = "PRIVACY_POLICY"
	DocEULA           DocumentType = "EULA"
)

// DefaultTitle is used when a caller supplies no title
const DefaultTitle = "Unknown Document"

// Valid reports whether t is one of the known document types
func (t DocumentType) Valid() bool {
	switch t {
	case DocTermsOfService, DocPrivacyPolicy, DocEULA:
		return true
	}
	return false
}

// Label returns a human-readable name for the document type
func (t DocumentType) Label() string {
	switch t {
	case DocTermsOfService:
		return "Terms of Service"
	case DocPrivacyPolicy:
		return "Privacy Policy"
	case DocEULA:
		return "EULA"
	default:
		return string(t)
	}
}

// ParseDocumentType accepts canonical names and common aliases
// ("Terms of Service", "tos", "privacy-policy", "eula", ...), case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")

	switch key {
	case "terms of service", "tos", "terms", "terms and conditions", "terms of use":
		return DocTermsOfService, nil
	case "privacy policy", "privacy", "privacy notice":
		return DocPrivacyPolicy, nil
	case "eula", "end user license agreement", "license agreement":
		return DocEULA, nil
	}
	return "", fmt.Errorf("unknown document type %q (supported: TERMS_OF_SERVICE, PRIVACY_POLICY, EULA)", s)
}

// ErrInvalidDocument is matched by every InvalidDocumentError via errors.Is
var ErrInvalidDocument = errors.New("invalid document")

// InvalidDocumentError reports a document missing a required field.
// Empty or boilerplate content is never an error.
type InvalidDocumentError struct {
	Field  string
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("invalid document: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidDocument) succeed
func (e *InvalidDocumentError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// Validate checks the fields an analysis requires
func (d Document) Validate() error {
	if d.Type == "" {
		return &InvalidDocumentError{Field: "type", Reason: "required"}
	}
	if !d.Type.Valid() {
		return &InvalidDocumentError{Field: "type", Reason: fmt.Sprintf("unknown value %q", d.Type)}
	}
	return nil
}

// wireDocument distinguishes an absent content field from an empty one
type wireDocument struct {
	Title   string  `json:"title"`
	Type    string  `json:"type"`
	Content *string `json:"content"`
}

// DecodeDocument decodes a JSON document. Content must be present but may be
// empty; type accepts the aliases understood by ParseDocumentType.
func DecodeDocument(data []byte) (Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, &InvalidDocumentError{Field: "document", Reason: err.Error()}
	}
	if w.Content == nil {
		return Document{}, &InvalidDocumentError{Field: "content", Reason: "required"}
	}
	if strings.TrimSpace(w.Type) == "" {
		return Document{}, &InvalidDocumentError{Field: "type", Reason: "required"}
	}
	docType, err := ParseDocumentType(w.Type)
	if err != nil {
		return Document{}, &InvalidDocumentError{Field: "type", Reason: err.Error()}
	}

	title := strings.TrimSpace(w.Title)
	if title == "" {
		title = DefaultTitle
	}

	return Document{Title: title, Type: docType, Content: *w.Content}, nil
}
