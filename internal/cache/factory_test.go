package cache

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/rs/zerolog"
)

func TestFactory_New_Memory(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 100, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	defer c.Close()

	c.Set("test", []byte("data"))
	val, ok := c.Get("test")
	if !ok || string(val) != "data" {
		t.Fatal("Memory cache should work after creation via factory")
	}
}

func TestFactory_New_None(t *testing.T) {
	c, err := New("none", ProviderConfig{Group: "test-none"})
	if err != nil {
		t.Fatalf("New none: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))
	if _, ok := c.Get("k"); ok {
		t.Fatal("The none provider must never return a hit")
	}
	if c.Contains("k") || c.Len() != 0 {
		t.Fatal("The none provider must stay empty")
	}
}

func TestFactory_New_UnknownProvider(t *testing.T) {
	_, err := New("nonexistent", ProviderConfig{})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "memory") {
		t.Errorf("Expected error to list registered providers, got %q", err.Error())
	}
}

func TestFactory_RegisteredProviders(t *testing.T) {
	names := RegisteredProviders()
	want := []string{"memory", "none", "redis"}
	if len(names) != len(want) {
		t.Fatalf("Expected providers %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected sorted providers %v, got %v", want, names)
			break
		}
	}
}

func TestFactory_Register_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected Register to panic on a duplicate name")
		}
	}()
	Register("memory", newMemoryCache)
}

func TestFactory_New_Redis_InvalidAddress(t *testing.T) {
	_, err := New("redis", ProviderConfig{
		Size:         100,
		TTL:          time.Hour,
		RedisAddress: "localhost:59999",
	})
	if err == nil {
		t.Fatal("Expected error when connecting to invalid Redis address")
	}
}

func TestJSONHelpers(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	captions := []models.CaptionDescriptor{
		{ID: "cap1", Language: "en", DisplayName: "English"},
		{ID: "cap2", Language: "fr", DisplayName: "French", IsAutoGenerated: true},
	}
	if err := SetJSON(c, "captions:vid", captions); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	got, ok := GetJSON[[]models.CaptionDescriptor](c, "captions:vid")
	if !ok {
		t.Fatal("Expected GetJSON hit")
	}
	if len(got) != 2 || got[1] != captions[1] {
		t.Errorf("Unexpected decoded captions %+v", got)
	}

	if _, ok := GetJSON[models.Video](c, "missing"); ok {
		t.Error("Expected GetJSON miss for an absent key")
	}

	c.Set("corrupt", []byte("{not json"))
	if _, ok := GetJSON[models.Video](c, "corrupt"); ok {
		t.Error("Expected undecodable value to be reported as a miss")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Error("redis cache Get failed", errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "connection refused") {
		t.Errorf("Unexpected log output %q", out)
	}
}
