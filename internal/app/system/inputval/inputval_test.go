package inputval

import (
	"strings"
	"testing"
)

type billForm struct {
	Title   string `validate:"required,max=10" label:"Title"`
	Number  string `validate:"required,min=2" label:"Bill number"`
	Email   string `validate:"email" label:"Email"`
	Ignored int
}

func TestValidate_Passes(t *testing.T) {
	res := Validate(billForm{Title: "Housing", Number: "AB-12", Email: "a@b.com"})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.All())
	}
}

func TestValidate_Required(t *testing.T) {
	res := Validate(billForm{Number: "AB-12"})
	if !res.HasErrors() {
		t.Fatal("expected error for missing title")
	}
	if got := res.First(); got != "Title is required." {
		t.Errorf("First() = %q", got)
	}
}

func TestValidate_MaxLength(t *testing.T) {
	res := Validate(billForm{Title: strings.Repeat("x", 11), Number: "AB"})
	if !res.HasErrors() {
		t.Fatal("expected error for overlong title")
	}
}

func TestValidate_MinSkipsEmpty(t *testing.T) {
	// min only applies to non-empty values; required catches empties.
	type form struct {
		Nick string `validate:"min=3" label:"Nickname"`
	}
	if res := Validate(form{}); res.HasErrors() {
		t.Errorf("empty optional field should pass min: %v", res.All())
	}
	if res := Validate(form{Nick: "ab"}); !res.HasErrors() {
		t.Error("expected error for short nickname")
	}
}

func TestValidate_Email(t *testing.T) {
	res := Validate(billForm{Title: "t", Number: "AB", Email: "not-an-email"})
	if !res.HasErrors() {
		t.Fatal("expected error for bad email")
	}
}

func TestValidate_WhitespaceTrimmed(t *testing.T) {
	res := Validate(billForm{Title: "   ", Number: "AB-12"})
	if !res.HasErrors() {
		t.Fatal("whitespace-only title should fail required")
	}
}

func TestValidate_CollectsInOrder(t *testing.T) {
	res := Validate(billForm{})
	if len(res.All()) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(res.All()), res.All())
	}
	if !strings.HasPrefix(res.All()[1], "Bill number") {
		t.Errorf("second error: %q", res.All()[1])
	}
}
