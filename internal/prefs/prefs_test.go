package prefs

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(t.TempDir())
}

func TestConsentDefaultsFalse(t *testing.T) {
	s := openTestStore(t)
	if s.Consented() {
		t.Fatalf("fresh store should not be consented")
	}
}

func TestTranslationsGatedOnConsent(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveTranslations([]string{"kjv"}); err != nil {
		t.Fatalf("save without consent: %v", err)
	}
	if got := s.Translations(); got != nil {
		t.Fatalf("save without consent must be a no-op, got %v", got)
	}

	if err := s.SetConsent(true); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	if err := s.SaveTranslations([]string{"kjv", "esv"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := s.Translations()
	if len(got) != 2 || got[0] != "kjv" || got[1] != "esv" {
		t.Fatalf("unexpected translations: %v", got)
	}
}

func TestRevokingConsentClearsTranslations(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("consent: %v", err)
	}
	if err := s.SaveTranslations([]string{"kjv"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SetConsent(false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("re-consent: %v", err)
	}
	if got := s.Translations(); got != nil {
		t.Fatalf("revocation should have cleared the set, got %v", got)
	}
}

func TestEmptySetRemovesKey(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("consent: %v", err)
	}
	if err := s.SaveTranslations([]string{"kjv"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveTranslations(nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.Translations(); got != nil {
		t.Fatalf("expected cleared set, got %v", got)
	}
}

func TestValuesExpire(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("consent: %v", err)
	}
	if err := s.SaveTranslations([]string{"kjv"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(expiry + time.Hour) }
	if s.Consented() {
		t.Fatalf("consent should expire")
	}
	if got := s.Translations(); got != nil {
		t.Fatalf("translations should expire, got %v", got)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("consent: %v", err)
	}
	if err := s.SaveTranslations([]string{"oster"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened := Open(dir)
	got := reopened.Translations()
	if len(got) != 1 || got[0] != "oster" {
		t.Fatalf("reopened store lost data: %v", got)
	}
}
