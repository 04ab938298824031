package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeyLifecycle(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s := Store{Path: filepath.Join(t.TempDir(), "cfg", "credentials.json")}

	ki, err := s.GetKey()
	if err != nil || ki != nil {
		t.Fatalf("GetKey() before login = %v, %v", ki, err)
	}

	if err := s.SetKey("  secret-key-1234 "); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}
	fi, err := os.Stat(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("credentials mode = %v, want 0600", fi.Mode().Perm())
	}

	ki, err = s.GetKey()
	if err != nil || ki == nil {
		t.Fatalf("GetKey() = %v, %v", ki, err)
	}
	if ki.Key != "secret-key-1234" || ki.Source != SourceFile {
		t.Errorf("GetKey() = %+v", ki)
	}

	if err := s.DeleteKey(); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteKey(); err != nil {
		t.Errorf("second DeleteKey() error = %v", err)
	}
	if ki, _ := s.GetKey(); ki != nil {
		t.Errorf("GetKey() after logout = %+v", ki)
	}
}

func TestEnvOverride(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "credentials.json")}
	if err := s.SetKey("from-file"); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIKey, "from-env")

	ki, err := s.GetKey()
	if err != nil {
		t.Fatal(err)
	}
	if ki.Key != "from-env" || ki.Source != SourceEnv {
		t.Errorf("GetKey() = %+v", ki)
	}
}

func TestSetKeyRejectsEmpty(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "credentials.json")}
	if err := s.SetKey("   "); err == nil {
		t.Error("expected error")
	}
}

func TestCorruptCredentials(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	s := Store{Path: filepath.Join(t.TempDir(), "credentials.json")}
	os.WriteFile(s.Path, []byte("{"), 0o600)
	if _, err := s.GetKey(); err == nil {
		t.Error("expected parse error")
	}
}

func TestMasked(t *testing.T) {
	if got := (KeyInfo{Key: "abcdefgh"}).Masked(); got != "****efgh" {
		t.Errorf("Masked() = %q", got)
	}
	if got := (KeyInfo{Key: "abc"}).Masked(); got != "***" {
		t.Errorf("Masked() = %q", got)
	}
}
