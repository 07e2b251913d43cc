package resolver

import (
	"testing"

	"github.com/veldran/sigil/internal/models"
)

func TestFindUsages_TagForms(t *testing.T) {
	src := `<Foo /> <Foo> <Foo/> <Foobar />`
	usages := FindUsages(src, "Foo")
	if len(usages) != 3 {
		t.Fatalf("len = %d, want 3 (Foobar must not match)", len(usages))
	}
	want := []models.Position{{Line: 0, Column: 1}, {Line: 0, Column: 9}, {Line: 0, Column: 15}}
	for i, u := range usages {
		if u != want[i] {
			t.Errorf("usages[%d] = %+v, want %+v", i, u, want[i])
		}
	}
}

func TestFindUsages_MultilinePositions(t *testing.T) {
	src := "const a = 1;\nreturn (\n  <Card title=\"x\" />\n);\n"
	usages := FindUsages(src, "Card")
	if len(usages) != 1 {
		t.Fatalf("len = %d, want 1", len(usages))
	}
	if usages[0].Line != 2 || usages[0].Column != 3 {
		t.Errorf("position = %+v, want line 2 col 3", usages[0])
	}
}

func TestFindUsages_NotBareIdentifier(t *testing.T) {
	src := `const x = Foo; foo(Foo);`
	if usages := FindUsages(src, "Foo"); len(usages) != 0 {
		t.Errorf("usages = %+v, want none for non-tag references", usages)
	}
}

// Regression for the alias-resolution inconsistency: the scan yields the
// exported name Bar, whose tag form never appears when the source only
// uses the local alias Baz.
func TestImportAndUsage_AliasMismatch(t *testing.T) {
	src := `import { Foo, Bar as Baz } from 'x'; <Foo/> <Baz/>`

	got := names(ScanImports(src))
	if len(got) != 2 || got[0] != "Foo" || got[1] != "Bar" {
		t.Fatalf("candidates = %v, want [Foo Bar]", got)
	}
	if u := FindUsages(src, "Foo"); len(u) != 1 {
		t.Errorf("Foo usages = %d, want 1", len(u))
	}
	if u := FindUsages(src, "Bar"); len(u) != 0 {
		t.Errorf("Bar usages = %d, want 0 (source only contains <Baz/>)", len(u))
	}
}

func TestPositionAt(t *testing.T) {
	text := "ab\ncde\nf"
	cases := []struct {
		offset int
		want   models.Position
	}{
		{0, models.Position{Line: 0, Column: 0}},
		{2, models.Position{Line: 0, Column: 2}},
		{3, models.Position{Line: 1, Column: 0}},
		{5, models.Position{Line: 1, Column: 2}},
		{7, models.Position{Line: 2, Column: 0}},
	}
	for _, c := range cases {
		if got := positionAt(text, c.offset); got != c.want {
			t.Errorf("positionAt(%d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}
