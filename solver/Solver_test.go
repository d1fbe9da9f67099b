package solver

import (
	"encoding/json"
	"testing"

	G "gorgonia.org/gorgonia"
)

func TestNewSelectsType(t *testing.T) {
	adam, err := New(Adam, 1e-4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := adam.Solver.(*G.AdamSolver); !ok {
		t.Errorf("adam: want *G.AdamSolver have %T", adam.Solver)
	}

	vanilla, err := New(Vanilla, 1e-2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := vanilla.Solver.(*G.VanillaSolver); !ok {
		t.Errorf("vanilla: want *G.VanillaSolver have %T", vanilla.Solver)
	}

	if _, err := New("RMSProp", 1e-3, 0); err == nil {
		t.Error("expected error for unknown solver type")
	}
	if _, err := New(Adam, 0, 0); err == nil {
		t.Error("expected error for zero step size")
	}
}

func TestSolverJSON(t *testing.T) {
	s, err := NewAdam(3e-4, 1e-8, 0.9, 0.999, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Solver
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != Adam {
		t.Errorf("type: want(%v) have(%v)", Adam, decoded.Type)
	}
	config, ok := decoded.Config.(AdamConfig)
	if !ok {
		t.Fatalf("config: want AdamConfig have %T", decoded.Config)
	}
	if config != s.Config.(AdamConfig) {
		t.Errorf("config: want(%+v) have(%+v)", s.Config, config)
	}
	if decoded.Solver == nil {
		t.Error("decoded solver was not created")
	}

	bad := []byte(`{"Type": "Momentum", "Config": {}}`)
	if err := json.Unmarshal(bad, &decoded); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestFreshSolverIsIndependent(t *testing.T) {
	s, err := NewDefaultAdam(1e-3, 1)
	if err != nil {
		t.Fatal(err)
	}
	fresh := s.Fresh()
	if fresh.Solver == s.Solver {
		t.Error("fresh solver shares gorgonia solver")
	}
	if fresh.Config != s.Config {
		t.Errorf("config: want(%+v) have(%+v)", s.Config, fresh.Config)
	}
}
