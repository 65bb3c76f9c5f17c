package model

import "testing"

func TestParseKindAcceptsCanonicalAndClassNames(t *testing.T) {
	cases := map[string]Kind{
		"char":             KindChar,
		"CharField":        KindChar,
		" IntField ":       KindInteger,
		"ReferenceField":   KindForeignKey,
		"NullBooleanField": KindNullBoolean,
		"null-boolean":     KindNullBoolean,
		"ObjectIdField":    KindObjectID,
	}
	for raw, want := range cases {
		got, ok := ParseKind(raw)
		if !ok {
			t.Fatalf("ParseKind(%q) not resolved", raw)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, ok := ParseKind("GeoPointField"); ok {
		t.Fatalf("expected unknown class name to be rejected")
	}
	if _, ok := ParseKind(""); ok {
		t.Fatalf("expected empty kind to be rejected")
	}
}

func TestNewDeclaredPrimaryKey(t *testing.T) {
	decl := NewDeclared("User",
		Field{Name: "login", Kind: KindChar},
		Field{Name: "uid", Kind: KindAuto, PrimaryKey: true},
	)
	if decl.PrimaryKey() != "uid" {
		t.Fatalf("expected flagged primary key, got %q", decl.PrimaryKey())
	}

	fallback := NewDeclared("Tag", Field{Name: "name", Kind: KindChar})
	if fallback.PrimaryKey() != "id" {
		t.Fatalf("expected id fallback, got %q", fallback.PrimaryKey())
	}
}

func TestDeclaredFieldsReturnsCopy(t *testing.T) {
	decl := NewDeclared("User", Field{Name: "login", Kind: KindChar})
	fields := decl.Fields()
	fields[0].Name = "mutated"

	if got := decl.Fields()[0].Name; got != "login" {
		t.Fatalf("declaration mutated through Fields(): %q", got)
	}
	if names := FieldNames(decl); len(names) != 1 || names[0] != "login" {
		t.Fatalf("unexpected names %v", names)
	}
	if _, ok := FieldByName(decl, "missing"); ok {
		t.Fatalf("expected lookup miss")
	}
}
