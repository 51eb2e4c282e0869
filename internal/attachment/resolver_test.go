package attachment

import (
	"errors"
	"strings"
	"testing"

	"github.com/carelane/printcore/internal/canonical"
)

func testResolver() *Resolver {
	return &Resolver{
		StaticBase: "https://backend.example/static",
		APIBase:    "https://backend.example",
	}
}

func TestNormalizeBareString(t *testing.T) {
	ref, err := Normalize("uploads/scan.pdf")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ref.Path != "uploads/scan.pdf" {
		t.Errorf("Path = %q", ref.Path)
	}
	if ref.Filename != "scan.pdf" {
		t.Errorf("Filename = %q, want base name", ref.Filename)
	}
}

func TestNormalizeRecord(t *testing.T) {
	ref, err := Normalize(map[string]any{
		"documentId": "507f191e810c19729de860ea",
		"fileName":   "scan.pdf",
		"size":       float64(2048),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ref.DocumentID != "507f191e810c19729de860ea" || ref.Filename != "scan.pdf" || ref.Size != 2048 {
		t.Errorf("ref = %+v", ref)
	}
}

func TestNormalizeRejectsTemplatingArtifacts(t *testing.T) {
	// A stringified null documentId with nothing else is not a reference.
	_, err := Normalize(map[string]any{"documentId": "null"})
	if !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}

	// But the rest of the reference still resolves.
	ref, err := Normalize(map[string]any{"documentId": "undefined", "filename": "scan.pdf"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ref.DocumentID != "" {
		t.Errorf("DocumentID = %q, want cleared", ref.DocumentID)
	}
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	for _, in := range []any{nil, 42, map[string]any{}, map[string]any{"size": float64(10)}} {
		if _, err := Normalize(in); !errors.Is(err, ErrNoFile) {
			t.Errorf("Normalize(%v) err = %v, want ErrNoFile", in, err)
		}
	}
}

func TestResolveAbsolutePathVerbatim(t *testing.T) {
	res, err := testResolver().Resolve(canonical.AttachmentReference{Path: "https://other.example/f.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.IsAPI {
		t.Error("absolute path must not be an API locator")
	}
	if res.URL != "https://other.example/f.pdf" {
		t.Errorf("URL = %q, want verbatim", res.URL)
	}
}

func TestResolveRelativePathAgainstStaticBase(t *testing.T) {
	res, err := testResolver().Resolve(canonical.AttachmentReference{Path: "uploads/scan.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.URL != "https://backend.example/static/uploads/scan.pdf" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.IsAPI {
		t.Error("static load is not an API locator")
	}
}

func TestResolveDocumentID(t *testing.T) {
	res, err := testResolver().Resolve(canonical.AttachmentReference{DocumentID: "507f191e810c19729de860ea"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.IsAPI {
		t.Error("documentId locator must be an API locator")
	}
	if !strings.Contains(res.URL, "507f191e810c19729de860ea") {
		t.Errorf("URL = %q, want the document id in the path", res.URL)
	}
	if res.APIPath != "/documents/507f191e810c19729de860ea/download" {
		t.Errorf("APIPath = %q", res.APIPath)
	}
}

func TestResolvePathWinsOverDocumentID(t *testing.T) {
	res, err := testResolver().Resolve(canonical.AttachmentReference{
		Path:       "uploads/scan.pdf",
		DocumentID: "507f191e810c19729de860ea",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.IsAPI {
		t.Error("path rule applies before documentId rule")
	}
}

func TestResolveFilenameHeuristics(t *testing.T) {
	r := testResolver()

	// Absolute URL in the filename field passes through.
	res, err := r.Resolve(canonical.AttachmentReference{Filename: "https://other.example/f.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.URL != "https://other.example/f.pdf" || res.IsAPI {
		t.Errorf("res = %+v", res)
	}

	// A filename already inside an API namespace becomes an API locator.
	res, err = r.Resolve(canonical.AttachmentReference{Filename: "/api/documents/abc/download"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.IsAPI || res.URL != "https://backend.example/api/documents/abc/download" {
		t.Errorf("res = %+v", res)
	}

	// A plain filename loads from the static base.
	res, err = r.Resolve(canonical.AttachmentReference{Filename: "scan.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.IsAPI || res.URL != "https://backend.example/static/scan.pdf" {
		t.Errorf("res = %+v", res)
	}

	// originalName backs up a missing filename.
	res, err = r.Resolve(canonical.AttachmentReference{OriginalName: "scan.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.URL != "https://backend.example/static/scan.pdf" {
		t.Errorf("res = %+v", res)
	}
}

func TestResolveNoUsableFields(t *testing.T) {
	_, err := testResolver().Resolve(canonical.AttachmentReference{DocumentID: "null"})
	if !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}
}

func TestSameBackend(t *testing.T) {
	r := testResolver()
	if !r.SameBackend("https://backend.example/static/scan.pdf") {
		t.Error("static base URL should be same-backend")
	}
	if r.SameBackend("https://other.example/f.pdf") {
		t.Error("external URL should not be same-backend")
	}
}
