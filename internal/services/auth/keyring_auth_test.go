package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStore_Roundtrip(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore("")

	if _, err := s.GetPassword("c/ops"); !errors.Is(err, ErrPasswordNotFound) {
		t.Fatalf("expected ErrPasswordNotFound, got %v", err)
	}
	if err := s.SetPassword(" C/Ops ", "s3cret"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	got, err := s.GetPassword("c/ops")
	if err != nil {
		t.Fatalf("GetPassword failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("GetPassword = %q", got)
	}
	if err := s.DeletePassword("c/ops"); err != nil {
		t.Fatalf("DeletePassword failed: %v", err)
	}
	if err := s.DeletePassword("c/ops"); !errors.Is(err, ErrPasswordNotFound) {
		t.Errorf("expected ErrPasswordNotFound on second delete, got %v", err)
	}
}

func TestMockStore(t *testing.T) {
	var s Store = NewMockStore()

	if err := s.SetPassword("c/ops", "pw"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if got, _ := s.GetPassword("C/OPS"); got != "pw" {
		t.Errorf("GetPassword = %q", got)
	}
	if err := s.DeletePassword("c/ops"); err != nil {
		t.Fatalf("DeletePassword failed: %v", err)
	}
	if _, err := s.GetPassword("c/ops"); !errors.Is(err, ErrPasswordNotFound) {
		t.Errorf("expected ErrPasswordNotFound, got %v", err)
	}
}
