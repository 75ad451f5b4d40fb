package version

import "testing"

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	got := String()
	want := "pointcull v1.2.3 (" + GitSHA + ", built " + BuildTime + ")"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
