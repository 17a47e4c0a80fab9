package search

import "testing"

func TestTranslateEqualityAndLogic(t *testing.T) {
	pred, err := Translate(`dc:title = "Foo" and upnp:class = "object.item.videoItem"`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	wantSQL := `(d.title = ?) AND (o.class = ?)`
	if pred.SQL != wantSQL {
		t.Errorf("SQL = %q, want %q", pred.SQL, wantSQL)
	}
	if len(pred.Args) != 2 || pred.Args[0] != "Foo" || pred.Args[1] != "item.videoItem" {
		t.Errorf("Args = %v, want [Foo item.videoItem]", pred.Args)
	}
}

func TestTranslateContains(t *testing.T) {
	pred, err := Translate(`dc:title contains "Matrix"`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if pred.SQL != `d.title LIKE ? ESCAPE '\'` {
		t.Errorf("SQL = %q", pred.SQL)
	}
	if pred.Args[0] != "%Matrix%" {
		t.Errorf("Args[0] = %q, want %%Matrix%%", pred.Args[0])
	}
}

func TestTranslateDerivedFromStripsObjectPrefix(t *testing.T) {
	pred, err := Translate(`upnp:class derivedfrom "object.item.videoItem"`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if pred.Args[0] != "item.videoItem%" {
		t.Errorf("Args[0] = %q, want item.videoItem%%", pred.Args[0])
	}
}

func TestTranslateExists(t *testing.T) {
	predTrue, err := Translate(`dc:date exists true`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if predTrue.SQL != "d.date IS NOT NULL AND d.date != ''" {
		t.Errorf("SQL = %q", predTrue.SQL)
	}

	predFalse, err := Translate(`dc:date exists false`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if predFalse.SQL != "d.date IS NULL OR d.date = ''" {
		t.Errorf("SQL = %q", predFalse.SQL)
	}
}

func TestTranslateParenthesesAndOr(t *testing.T) {
	pred, err := Translate(`(upnp:class derivedfrom "object.item.audioItem" or upnp:class derivedfrom "object.item.videoItem") and dc:title contains "a"`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := `((o.class LIKE ? ESCAPE '\') OR (o.class LIKE ? ESCAPE '\')) AND (d.title LIKE ? ESCAPE '\')`
	if pred.SQL != want {
		t.Errorf("SQL = %q, want %q", pred.SQL, want)
	}
}

func TestTranslateEntityDecoding(t *testing.T) {
	pred, err := Translate(`dc:title = "Joe&apos;s &quot;Apartment&quot;"`)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := `Joe's "Apartment"`
	if pred.Args[0] != want {
		t.Errorf("Args[0] = %q, want %q", pred.Args[0], want)
	}
}

func TestTranslateEmptyMeansMatchAll(t *testing.T) {
	pred, err := Translate("")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if pred.SQL != "" {
		t.Errorf("expected empty predicate, got %q", pred.SQL)
	}

	pred, err = Translate("*")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if pred.SQL != "" {
		t.Errorf("expected empty predicate for '*', got %q", pred.SQL)
	}
}

func TestTranslateUnknownPropertyIsError(t *testing.T) {
	_, err := Translate(`upnp:bogus = "x"`)
	if err == nil {
		t.Fatal("expected error for unknown property")
	}
}

func TestTranslateSyntaxErrors(t *testing.T) {
	cases := []string{
		`dc:title = `,
		`dc:title "Foo"`,
		`(dc:title = "Foo"`,
		`dc:title = "Foo" dc:creator = "Bar"`,
	}
	for _, c := range cases {
		if _, err := Translate(c); err == nil {
			t.Errorf("Translate(%q): expected syntax error, got nil", c)
		}
	}
}

func TestContainerScope(t *testing.T) {
	root := ContainerScope("0")
	if root.SQL != "" {
		t.Errorf("root scope should be unconstrained, got %q", root.SQL)
	}

	scoped := ContainerScope("0$1")
	if scoped.SQL != "o.object_id = ? OR o.object_id GLOB ?" {
		t.Errorf("SQL = %q", scoped.SQL)
	}
	if scoped.Args[0] != "0$1" || scoped.Args[1] != "0$1$*" {
		t.Errorf("Args = %v", scoped.Args)
	}
}
