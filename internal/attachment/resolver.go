// Package attachment resolves loosely-typed clinical attachment references
// into fetchable locators and retrieves them with the correct authorization
// mode. Triggered when a user opens a historical document found in a
// medical record, independent of the prescription flow.
package attachment

import (
	"errors"
	"path"
	"strings"

	"github.com/carelane/printcore/internal/canonical"
	"github.com/carelane/printcore/internal/normalize"
)

// ErrNoFile indicates a reference with no usable locator fields. Reported
// to the user as "file not available"; no retry follows.
var ErrNoFile = errors.New("no file available for attachment reference")

// Resolution is a fetchable locator plus its authorization mode.
type Resolution struct {
	URL     string `json:"url"`
	IsAPI   bool   `json:"isApi"`
	APIPath string `json:"apiPath,omitempty"`
}

// Resolver builds locators against a specific backend.
type Resolver struct {
	// StaticBase is the base URL for direct static-file loads.
	StaticBase string
	// APIBase is the base URL for authenticated document downloads.
	APIBase string
}

// API namespaces a filename-shaped value may already point into.
var apiNamespaces = []string{"/api/documents", "/api/files", "/documents/", "/files/"}

// Normalize promotes a loose reference value (structured object or bare
// string) into a canonical AttachmentReference. References carrying none of
// documentId/filename/path are invalid and rejected here, before the
// resolver runs.
func Normalize(v any) (canonical.AttachmentReference, error) {
	var ref canonical.AttachmentReference

	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		ref = canonical.AttachmentReference{Path: s, Filename: path.Base(s)}
	case map[string]any:
		ref = canonical.AttachmentReference{
			DocumentID:   normalize.Pick(val, "", "documentId", "_id"),
			Filename:     normalize.Pick(val, "", "filename", "fileName"),
			OriginalName: normalize.Pick(val, "", "originalName", "original_name"),
			Path:         normalize.Pick(val, "", "path", "downloadPath", "filePath"),
		}
		if size, ok := val["size"].(float64); ok {
			ref.Size = int64(size)
		}
	case canonical.AttachmentReference:
		ref = val
	default:
		return canonical.AttachmentReference{}, ErrNoFile
	}

	// "null"/"undefined" ids leak out of upstream templating bugs.
	if ref.DocumentID == "null" || ref.DocumentID == "undefined" {
		ref.DocumentID = ""
	}

	if !ref.IsResolvable() {
		return canonical.AttachmentReference{}, ErrNoFile
	}
	return ref, nil
}

// Resolve produces the locator and authorization mode for a reference.
// Rules apply in order; the first match wins.
func (r *Resolver) Resolve(ref canonical.AttachmentReference) (Resolution, error) {
	if p := strings.TrimSpace(ref.Path); p != "" {
		if isAbsoluteURL(p) {
			return Resolution{URL: p, IsAPI: false}, nil
		}
		return Resolution{URL: r.staticURL(p), IsAPI: false}, nil
	}

	if id := strings.TrimSpace(ref.DocumentID); id != "" && id != "null" && id != "undefined" {
		apiPath := "/documents/" + id + "/download"
		return Resolution{URL: r.apiURL(apiPath), IsAPI: true, APIPath: apiPath}, nil
	}

	name := strings.TrimSpace(ref.Filename)
	if name == "" {
		name = strings.TrimSpace(ref.OriginalName)
	}
	if name != "" {
		if isAbsoluteURL(name) {
			return Resolution{URL: name, IsAPI: false}, nil
		}
		if ns := apiNamespace(name); ns != "" {
			apiPath := ensureLeadingSlash(name)
			return Resolution{URL: r.apiURL(apiPath), IsAPI: true, APIPath: apiPath}, nil
		}
		return Resolution{URL: r.staticURL(name), IsAPI: false}, nil
	}

	return Resolution{}, ErrNoFile
}

// SameBackend reports whether a non-API locator still points at our own
// backend, in which case retrieval tries the authenticated channel first.
func (r *Resolver) SameBackend(url string) bool {
	if r.StaticBase != "" && strings.HasPrefix(url, r.StaticBase) {
		return true
	}
	return r.APIBase != "" && strings.HasPrefix(url, r.APIBase)
}

func (r *Resolver) staticURL(p string) string {
	return strings.TrimSuffix(r.StaticBase, "/") + ensureLeadingSlash(p)
}

func (r *Resolver) apiURL(p string) string {
	return strings.TrimSuffix(r.APIBase, "/") + ensureLeadingSlash(p)
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func apiNamespace(s string) string {
	p := ensureLeadingSlash(s)
	for _, ns := range apiNamespaces {
		if strings.HasPrefix(p, ns) {
			return ns
		}
	}
	return ""
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
