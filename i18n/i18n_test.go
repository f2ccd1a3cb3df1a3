package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("fr-FR,es;q=0.8") != "es" {
		t.Fatalf("expected es from second tag")
	}
	if DetectLanguage("fr-FR") != "es" {
		t.Fatalf("expected es fallback")
	}
	if DetectLanguage("") != "es" {
		t.Fatalf("expected default es")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("es", "required") != "Obligatorio" {
		t.Fatalf("expected Obligatorio")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> default translation
	if T("fr", "required") != "Obligatorio" {
		t.Fatalf("expected es fallback for fr lang")
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for code := range catalogs["es"] {
		if _, ok := catalogs["en"][code]; !ok {
			t.Errorf("en catalog misses %q", code)
		}
	}
	for code := range catalogs["en"] {
		if _, ok := catalogs["es"][code]; !ok {
			t.Errorf("es catalog misses %q", code)
		}
	}
}

func TestLangContext(t *testing.T) {
	if LangFromContext(context.Background()) != DefaultLang {
		t.Fatalf("expected default language")
	}
	ctx := WithLang(context.Background(), "en")
	if LangFromContext(ctx) != "en" {
		t.Fatalf("expected en from context")
	}
	got := TranslateAll("en", map[string]string{"title": "required"})
	if got["title"] != "Required" {
		t.Fatalf("TranslateAll = %v", got)
	}
}
