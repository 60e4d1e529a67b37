package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetGenerateTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	defer SetGenerateTimeoutSeconds(0)
	SetGenerateTimeoutSeconds(-5)
	if generateTimeoutSec != 0 {
		t.Fatalf("expected 0, got %d", generateTimeoutSec)
	}
	SetGenerateTimeoutSeconds(3)
	if generateTimeoutSec != 3 {
		t.Fatalf("expected 3, got %d", generateTimeoutSec)
	}
}

func TestSetModelsDir(t *testing.T) {
	defer SetModelsDir("")
	SetModelsDir("/srv/models")
	if modelsDir != "/srv/models" {
		t.Fatalf("expected /srv/models, got %q", modelsDir)
	}
}

func TestSetCORSOptionsCopiesSlices(t *testing.T) {
	defer SetCORSOptions(false, nil, nil, nil)
	origins := []string{"http://a.example"}
	SetCORSOptions(true, origins, nil, nil)
	origins[0] = "http://mutated.example"
	if corsAllowedOrigins[0] != "http://a.example" {
		t.Fatalf("origins not copied: %v", corsAllowedOrigins)
	}
	if !corsEnabled {
		t.Fatalf("cors not enabled")
	}
}
