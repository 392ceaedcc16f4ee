package observability

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name     string
		attr     Attribute
		wantKey  string
		wantsVal interface{}
	}{
		{"string", String("k", "v"), "k", "v"},
		{"int", Int("count", 42), "count", 42},
		{"int64", Int64("big", int64(1 << 40)), "big", int64(1 << 40)},
		{"bool", Bool("flag", true), "flag", true},
		{"duration", Duration("elapsed", 3 * time.Second), "elapsed", 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, tt.attr.Key)
			}
			if tt.attr.Value != tt.wantsVal {
				t.Errorf("expected value %v, got %v", tt.wantsVal, tt.attr.Value)
			}
		})
	}
}

func TestErrorAttribute(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != "error" || attr.Value != "boom" {
		t.Errorf("unexpected error attribute: %+v", attr)
	}

	nilAttr := Error(nil)
	if nilAttr.Key != "error" || nilAttr.Value != "" {
		t.Errorf("expected empty error attribute for nil error, got %+v", nilAttr)
	}
}

func TestTruncateString(t *testing.T) {
	short := "hello"
	if got := TruncateString(short, 10); got != short {
		t.Errorf("expected short string unchanged, got %q", got)
	}

	long := strings.Repeat("x", 600)
	got := TruncateStringDefault(long)
	if len(got) >= len(long) {
		t.Errorf("expected truncation, got length %d", len(got))
	}
	if !strings.Contains(got, "total: 600 chars") {
		t.Errorf("expected original length in suffix, got %q", got)
	}
}
