package errkind

import (
	"errors"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
)

var (
	errDependency = errors.New("dependency unavailable")
	errNotFound   = errors.New("not found")

	errStorage     = New(errDependency, "storage unavailable")
	errCache       = New(errStorage, "cache unavailable")
	errPlayer      = New(errNotFound, "player not found")
	errMatch       = New(errNotFound, "match not found")
	errWithoutKind = New(nil, "plain")
)

func TestErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("%w: id=p1", errPlayer)

	if !errors.Is(err, errPlayer) {
		t.Fatalf("expected specific error to match")
	}
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected kind to match")
	}
	if errors.Is(err, errMatch) {
		t.Fatalf("did not expect sibling error of the same kind to match")
	}
	if errors.Is(err, errDependency) {
		t.Fatalf("did not expect unrelated kind to match")
	}
}

func TestErrorMatchesNestedKind(t *testing.T) {
	err := crerr.Wrap(errCache, "get snapshot")

	if !crerr.Is(err, errStorage) || !crerr.Is(err, errDependency) {
		t.Fatalf("expected nested kinds to match through cockroachdb wrapping")
	}
	if errCache.Kind() != errStorage {
		t.Fatalf("unexpected kind: %v", errCache.Kind())
	}
}

func TestErrorWithoutKind(t *testing.T) {
	if errors.Is(errWithoutKind, errNotFound) {
		t.Fatalf("did not expect kindless error to match")
	}
	if errWithoutKind.Error() != "plain" {
		t.Fatalf("unexpected message: %s", errWithoutKind.Error())
	}
}
