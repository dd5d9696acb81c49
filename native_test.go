package odbc

import "testing"

func TestFindDriverManagerPath_EnvOverride(t *testing.T) {
	t.Setenv("ODBC_LIBRARY", "/opt/custom/libodbc.so")

	if got := findDriverManagerPath(); got != "/opt/custom/libodbc.so" {
		t.Fatalf("Expected the ODBC_LIBRARY override, got %q", got)
	}
}

func TestFindDriverManagerPath_NeverEmpty(t *testing.T) {
	t.Setenv("ODBC_LIBRARY", "")

	// Even when no conventional install location matches, a bare soname
	// must come back so the system loader can run its own search.
	if got := findDriverManagerPath(); got == "" {
		t.Fatal("Expected a library name on every platform, got empty string")
	}
}

func TestLocateLibrary_FallsBackToSoname(t *testing.T) {
	candidates := []string{"libdoesnotexist.so.9", "libdoesnotexist.so"}

	if got := locateLibrary(candidates); got != "libdoesnotexist.so.9" {
		t.Fatalf("Expected fallback to the first candidate, got %q", got)
	}
}
