package extract

import (
	"net/url"
	"strings"

	"github.com/ppiankov/termlens/internal/model"
)

// typeHints maps URL path or title fragments to a document type, checked in order
var typeHints = []struct {
	fragments []string
	docType   model.DocumentType
}{
	{[]string{"privacy", "data-policy", "datapolicy", "cookie"}, model.DocPrivacyPolicy},
	{[]string{"eula", "license-agreement", "licence", "end-user-license"}, model.DocEULA},
	{[]string{"terms", "tos", "conditions", "legal", "user-agreement"}, model.DocTermsOfService},
}

// InferType guesses the document type from a URL path and page title.
// It reports false when nothing hints at a type.
func InferType(rawURL, title string) (model.DocumentType, bool) {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = strings.ToLower(u.Path)
	}
	lowerTitle := strings.ToLower(title)

	for _, hint := range typeHints {
		for _, f := range hint.fragments {
			if strings.Contains(path, f) || strings.Contains(lowerTitle, f) {
				return hint.docType, true
			}
		}
	}
	return "", false
}
