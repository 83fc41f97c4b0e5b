package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveTokenAndReadBack(t *testing.T) {
	t.Setenv(EnvToken, "")
	s := NewStore(filepath.Join(t.TempDir(), ".tada"))

	if _, err := s.Save("Bearer abc123", time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(s.path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	ti, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if ti == nil || ti.Token != "abc123" || ti.Source != SourceFile {
		t.Fatalf("unexpected token info %+v", ti)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	ti, err = s.Token()
	if err != nil || ti != nil {
		t.Fatalf("expected no token after delete, got %+v, %v", ti, err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	s := NewStore(t.TempDir())
	t.Setenv(EnvToken, "")
	if _, err := s.Save("from-file", time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if ti.Token != "from-env" || ti.Source != SourceEnv {
		t.Fatalf("expected env token, got %+v", ti)
	}
}

func TestSaveRecordsJWTExpiry(t *testing.T) {
	t.Setenv(EnvToken, "")
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"idil","exp":1767225600}`))
	token := "eyJhbGciOiJIUzI1NiJ9." + payload + ".sig"

	ti, err := NewStore(t.TempDir()).Save(token, time.Now())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ti.ExpiresAt == nil {
		t.Fatalf("expected expiry from exp claim")
	}
	want := time.Unix(1767225600, 0).UTC()
	if !ti.ExpiresAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, *ti.ExpiresAt)
	}
	if !ti.Expired(want.Add(time.Second)) || ti.Expired(want.Add(-time.Second)) {
		t.Fatalf("unexpected Expired result")
	}
	if Claims("opaque-token") != nil {
		t.Fatalf("expected nil claims for opaque token")
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	if _, err := NewStore(t.TempDir()).Save("  ", time.Now()); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestClaimsFromUnsignedToken(t *testing.T) {
	// {"alg":"none"} . {"sub":"idil","exp":4102444800} . sig
	tok := "eyJhbGciOiJub25lIn0.eyJzdWIiOiJpZGlsIiwiZXhwIjo0MTAyNDQ0ODAwfQ.c2ln"

	if got := Subject(tok); got != "idil" {
		t.Fatalf("expected subject idil, got %q", got)
	}
	if c := Claims(tok); c == nil || c["sub"] != "idil" {
		t.Fatalf("unexpected claims %v", c)
	}
	exp := jwtExpiry(tok)
	if exp == nil || !exp.Equal(time.Unix(4102444800, 0).UTC()) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	for _, opaque := range []string{"opaque-token", "a.b.c", "a.b"} {
		if Claims(opaque) != nil || Subject(opaque) != "" || jwtExpiry(opaque) != nil {
			t.Fatalf("%q: expected no claims", opaque)
		}
	}
}
