package rpc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/latus-lang/latus/internal/cache"
)

func TestEmbeddedProtoParsesSolverService(t *testing.T) {
	if serviceDescriptor == nil {
		t.Fatal("serviceDescriptor is nil, want the parsed latus.Solver service")
	}
	if serviceDescriptor.GetName() != "Solver" {
		t.Errorf("service name = %q, want Solver", serviceDescriptor.GetName())
	}
	md := serviceDescriptor.FindMethodByName("Solve")
	if md == nil {
		t.Fatal("Solver service has no Solve method")
	}
	if md.IsClientStreaming() || md.IsServerStreaming() {
		t.Error("Solve should be a plain unary method")
	}
}

const sampleProblemYAML = `
constraints:
  - kind: bound
    var: x
    type: { atom: Int }
`

func TestHandlerSolveWithoutCache(t *testing.T) {
	h := &solverHandler{sd: serviceDescriptor}
	out, err := h.solve([]byte(sampleProblemYAML))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(string(out), "x:") {
		t.Errorf("solution %q missing x", out)
	}
}

func TestHandlerSolveCachesResult(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	h := &solverHandler{sd: serviceDescriptor, cache: store}

	first, err := h.solve([]byte(sampleProblemYAML))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1 after one solve", n)
	}

	second, err := h.solve([]byte(sampleProblemYAML))
	if err != nil {
		t.Fatalf("solve (cached): %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("cached solve returned %q, want %q", second, first)
	}
}

func TestHandlerSolveInvalidYAML(t *testing.T) {
	h := &solverHandler{sd: serviceDescriptor}
	if _, err := h.solve([]byte("constraints:\n  - kind: bogus\n")); err == nil {
		t.Fatal("expected an error for an unknown constraint kind")
	}
}
