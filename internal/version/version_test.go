package version

import "testing"

func TestGet(t *testing.T) {
	oldVersion, oldSHA := Version, GitSHA
	t.Cleanup(func() { Version, GitSHA = oldVersion, oldSHA })

	Version, GitSHA = "1.2.3", "abc123"
	info := Get()
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("Get() = %+v, want version 1.2.3 commit abc123", info)
	}
	if got, want := info.String(), "1.2.3 (commit: abc123, built: unknown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
