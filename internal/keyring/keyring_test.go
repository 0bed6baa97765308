package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/nudge/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://nudge@localhost:5432/nudge?sslmode=disable"
	if err := SetConnectionString("  " + connStr + "\n"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("   "); err == nil {
		t.Error("SetConnectionString with blank input should fail")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://nudge@localhost/nudge"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestResolveConnectionString(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(constants.DBConnectionEnvVar, "")

	if _, _, err := ResolveConnectionString(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with nothing configured, got %v", err)
	}

	if err := SetConnectionString("postgres://from-keyring"); err != nil {
		t.Fatal(err)
	}
	got, src, err := ResolveConnectionString("")
	if err != nil || got != "postgres://from-keyring" || src != SourceKeyring {
		t.Errorf("keyring: got %q %q %v", got, src, err)
	}

	t.Setenv(constants.DBConnectionEnvVar, "postgres://from-env")
	got, src, err = ResolveConnectionString("")
	if err != nil || got != "postgres://from-env" || src != SourceEnv {
		t.Errorf("env: got %q %q %v", got, src, err)
	}

	got, src, err = ResolveConnectionString("postgres://from-flag")
	if err != nil || got != "postgres://from-flag" || src != SourceFlag {
		t.Errorf("flag: got %q %q %v", got, src, err)
	}
}

func TestResolveConnectionStringKeyringError(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))
	t.Setenv(constants.DBConnectionEnvVar, "")

	_, _, err := ResolveConnectionString("")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected unavailable keyring to resolve as ErrNotFound, got %v", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with a failing keyring")
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
