package pkg

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "kconf" {
		t.Errorf("unexpected name %q", Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("expected a non-empty description")
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file beside this package.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	want := strings.TrimSpace(string(buf))
	if got := Version(); got != want {
		t.Errorf("Version() = %q, want %q", got, want)
	}

	if want == "" {
		t.Error("VERSION file must not be empty")
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("expected at least one author")
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("missing primary author in %v", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define a name or an email", i)
		}
	}
}
