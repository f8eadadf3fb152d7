package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsThroughChain(t *testing.T) {
	base := New(CodeStateConflict, "payment already refunded")
	wrapped := fmt.Errorf("service: %w", base)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(CodeDependency, cause, "gateway call failed")
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected dump code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain, got %v", dump.Chain)
	}
}
