package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_TextLines(t *testing.T) {
	path := writeInput(t, "docs.txt", "first line\nsecond line\n")

	docs, err := Load(path, Options{Type: TypeText})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() returned %d documents, want 2", len(docs))
	}
	if docs[0].ID != 0 || docs[1].ID != 1 {
		t.Errorf("ids = [%d %d], want line indexes [0 1]", docs[0].ID, docs[1].ID)
	}
	// Raw lines keep their trailing newline; the cleaner deals with it.
	if docs[0].Text != "first line\n" {
		t.Errorf("docs[0].Text = %q, want raw line with newline", docs[0].Text)
	}
}

func TestLoad_TextNoTrailingNewline(t *testing.T) {
	path := writeInput(t, "docs.txt", "only line")

	docs, err := Load(path, Options{Type: TypeText})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 1 || docs[0].Text != "only line" {
		t.Errorf("docs = %+v, want single unterminated line", docs)
	}
}

func TestLoad_JSONArray(t *testing.T) {
	path := writeInput(t, "docs.json", `[
		{"page": 10, "body": "page ten text"},
		{"page": 12, "body": "page twelve text"}
	]`)

	docs, err := Load(path, Options{Type: TypeJSON, DocKey: "body", IDKey: "page"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() returned %d documents, want 2", len(docs))
	}
	if docs[0].ID != 10 || docs[0].Text != "page ten text" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].ID != 12 {
		t.Errorf("docs[1].ID = %d, want 12", docs[1].ID)
	}
}

func TestLoad_JSONArrayIndexIDs(t *testing.T) {
	path := writeInput(t, "docs.json", `[{"body": "a"}, {"body": "b"}]`)

	docs, err := Load(path, Options{Type: TypeJSON, DocKey: "body"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if docs[0].ID != 0 || docs[1].ID != 1 {
		t.Errorf("ids = [%d %d], want array indexes", docs[0].ID, docs[1].ID)
	}
}

func TestLoad_JSONFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    Options
	}{
		{
			name:    "missing keydoc option",
			content: `[{"body": "a"}]`,
			opts:    Options{Type: TypeJSON},
		},
		{
			name:    "not an array",
			content: `{"body": "a"}`,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
		{
			name:    "empty array",
			content: `[]`,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
		{
			name:    "first element not an object",
			content: `["just a string"]`,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
		{
			name:    "doc field missing from first element",
			content: `[{"other": "a"}]`,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
		{
			name:    "doc field not a string",
			content: `[{"body": 42}]`,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
		{
			name:    "id field not numeric",
			content: `[{"body": "a", "page": "ten"}]`,
			opts:    Options{Type: TypeJSON, DocKey: "body", IDKey: "page"},
		},
		{
			name:    "id field not an integer",
			content: `[{"body": "a", "page": 1.5}]`,
			opts:    Options{Type: TypeJSON, DocKey: "body", IDKey: "page"},
		},
		{
			name:    "malformed JSON",
			content: `[{"body": `,
			opts:    Options{Type: TypeJSON, DocKey: "body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "docs.json", tt.content)
			if _, err := Load(path, tt.opts); err == nil {
				t.Error("Load() error = nil, want fail-fast error")
			}
		})
	}
}

func TestLoad_HTMLSelector(t *testing.T) {
	html := `<html><body>
		<div class="entry">first entry text</div>
		<div class="entry">second entry text</div>
		<div class="noise">skip me</div>
	</body></html>`
	path := writeInput(t, "page.html", html)

	docs, err := Load(path, Options{Type: TypeHTML, Selector: "div.entry"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() returned %d documents, want 2", len(docs))
	}
	if docs[0].Text != "first entry text" || docs[1].Text != "second entry text" {
		t.Errorf("docs = %+v", docs)
	}
	if docs[0].ID != 0 || docs[1].ID != 1 {
		t.Errorf("ids = [%d %d], want match indexes", docs[0].ID, docs[1].ID)
	}
}

func TestLoad_HTMLSelectorNoMatches(t *testing.T) {
	path := writeInput(t, "page.html", `<html><body><p>text</p></body></html>`)
	if _, err := Load(path, Options{Type: TypeHTML, Selector: "div.entry"}); err == nil {
		t.Error("Load() error = nil, want error for selector with no matches")
	}
}

func TestLoad_HTMLReadability(t *testing.T) {
	var paragraphs strings.Builder
	for i := 0; i < 8; i++ {
		paragraphs.WriteString("<p>The committee reviewed the quarterly budget figures and noted a significant variance in the facilities line item, which was attributed to deferred maintenance work carried over from the previous fiscal year.</p>")
	}
	html := `<html><head><title>Meeting Minutes</title></head><body><article>` +
		paragraphs.String() + `</article></body></html>`
	path := writeInput(t, "page.html", html)

	docs, err := Load(path, Options{Type: TypeHTML})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Load() returned %d documents, want 1", len(docs))
	}
	if docs[0].ID != 0 {
		t.Errorf("docs[0].ID = %d, want 0", docs[0].ID)
	}
	if !strings.Contains(docs[0].Text, "quarterly budget") {
		t.Errorf("readability text missing article content: %q...", docs[0].Text[:min(len(docs[0].Text), 60)])
	}
}

func TestLoad_UnknownType(t *testing.T) {
	path := writeInput(t, "docs.bin", "data")
	if _, err := Load(path, Options{Type: "csv"}); err == nil {
		t.Error("Load() error = nil, want unknown input type error")
	}
}
