package sanitize

import "testing"

func TestPathUnixQuotes(t *testing.T) {
	got := Path(`Dwayne "The Rock" Jonson.rom`, '/')
	want := `Dwayne _The Rock_ Jonson.rom`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPathWindowsDriveColon(t *testing.T) {
	got := Path(`C:\ro:ms\fi:le.rom`, '\\')
	want := `C:\ro;ms\fi;le.rom`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPathIllegalCharacterSet(t *testing.T) {
	got := Path(`a*b<c>d?e|f"g`, '/')
	want := `a_b_c_d_e_f_g`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPathSeparatorNeverRewritten(t *testing.T) {
	got := Path(`a/b/c`, '/')
	if got != "a/b/c" {
		t.Fatalf("separator was rewritten: %q", got)
	}
}

func TestPathNonDriveColonOnUnixSeparatorBecomesUnderscore(t *testing.T) {
	// On a unix separator there is no drive-letter exception at all.
	got := Path(`C:foo`, '/')
	if got != "C_foo" {
		t.Fatalf("got %q, want C_foo", got)
	}
}
