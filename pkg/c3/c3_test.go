package c3

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
)

func ids(s ...string) []hierarchy.ClassID {
	out := make([]hierarchy.ClassID, len(s))
	for i, v := range s {
		out[i] = hierarchy.ClassID(v)
	}
	return out
}

func decl(id string, bases ...string) hierarchy.ClassDecl {
	return hierarchy.ClassDecl{ID: hierarchy.ClassID(id), Bases: ids(bases...)}
}

func TestLinearize(t *testing.T) {
	tests := []struct {
		name  string
		decls []hierarchy.ClassDecl
		class string
		want  []string
	}{
		{
			name:  "root",
			decls: []hierarchy.ClassDecl{decl("A")},
			class: "A",
			want:  []string{"A"},
		},
		{
			name:  "single chain",
			decls: []hierarchy.ClassDecl{decl("A"), decl("B", "A"), decl("C", "B")},
			class: "C",
			want:  []string{"C", "B", "A"},
		},
		{
			name:  "diamond",
			decls: []hierarchy.ClassDecl{decl("A"), decl("B", "A"), decl("C", "A"), decl("D", "B", "C")},
			class: "D",
			want:  []string{"D", "B", "C", "A"},
		},
		{
			name:  "diamond reversed bases",
			decls: []hierarchy.ClassDecl{decl("A"), decl("B", "A"), decl("C", "A"), decl("D", "C", "B")},
			class: "D",
			want:  []string{"D", "C", "B", "A"},
		},
		{
			name: "classic six class example",
			decls: []hierarchy.ClassDecl{
				decl("O"),
				decl("F", "O"),
				decl("E", "O"),
				decl("D", "O"),
				decl("C", "D", "F"),
				decl("B", "D", "E"),
				decl("A", "B", "C"),
			},
			class: "A",
			want:  []string{"A", "B", "C", "D", "E", "F", "O"},
		},
		{
			name: "independent roots",
			decls: []hierarchy.ClassDecl{
				decl("Left"),
				decl("Right"),
				decl("Both", "Left", "Right"),
			},
			class: "Both",
			want:  []string{"Both", "Left", "Right"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := hierarchy.MustBuild(tt.decls)
			got, err := Compute(g, hierarchy.ClassID(tt.class))
			if err != nil {
				t.Fatalf("Compute(%s): %v", tt.class, err)
			}
			if !slices.Equal(got.Strings(), tt.want) {
				t.Errorf("Compute(%s) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestInconsistentHierarchy(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		decl("A"),
		decl("B", "A"),
		decl("C", "A"),
		decl("D", "B", "C"),
		decl("E", "C", "B"),
		decl("F", "D", "E"),
	})

	for _, ok := range []string{"D", "E"} {
		if _, err := Compute(g, hierarchy.ClassID(ok)); err != nil {
			t.Errorf("Compute(%s) should succeed: %v", ok, err)
		}
	}

	lin, err := Compute(g, "F")
	if lin != nil {
		t.Errorf("failed linearization must not return a partial result, got %v", lin)
	}
	var ie *InconsistentError
	if !errors.As(err, &ie) {
		t.Fatalf("want *InconsistentError, got %v", err)
	}
	if !errs.Is(err, errs.ErrCodeInconsistentHierarchy) {
		t.Errorf("code = %v", errs.GetCode(err))
	}
	if ie.Class != "F" {
		t.Errorf("Class = %s, want F", ie.Class)
	}
	if !slices.Equal(ie.Conflicts, ids("B", "C")) {
		t.Errorf("Conflicts = %v, want [B C]", ie.Conflicts)
	}
	if !slices.Equal([]hierarchy.ClassID(ie.Partial), ids("F", "D", "E")) {
		t.Errorf("Partial = %v, want [F D E]", ie.Partial)
	}
	if len(ie.Remaining) != 2 {
		t.Fatalf("Remaining = %v, want 2 inputs", ie.Remaining)
	}
	if ie.Remaining[0].Source != "D" || ie.Remaining[1].Source != "E" {
		t.Errorf("Remaining sources = %s, %s; want D, E", ie.Remaining[0].Source, ie.Remaining[1].Source)
	}
}

func TestBaseBeforeItsSubclass(t *testing.T) {
	// X lists A before B although B derives from A.
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		decl("A"),
		decl("B", "A"),
		decl("X", "A", "B"),
	})

	_, err := Compute(g, "X")
	var ie *InconsistentError
	if !errors.As(err, &ie) {
		t.Fatalf("want *InconsistentError, got %v", err)
	}
	if !slices.Equal(ie.Conflicts, ids("A", "B")) {
		t.Errorf("Conflicts = %v, want [A B]", ie.Conflicts)
	}
	if !slices.Equal([]hierarchy.ClassID(ie.Partial), ids("X")) {
		t.Errorf("Partial = %v, want [X]", ie.Partial)
	}
	last := ie.Remaining[len(ie.Remaining)-1]
	if !last.Local || last.Source != "X" {
		t.Errorf("last remaining input should be X's local precedence list, got %+v", last)
	}
}

func TestBaseErrorPropagates(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		decl("A"),
		decl("B", "A"),
		decl("X", "A", "B"),
		decl("Y", "X"),
		decl("Z", "Y"),
	})

	_, err := Compute(g, "Z")
	var be *BaseError
	if !errors.As(err, &be) {
		t.Fatalf("want *BaseError, got %v", err)
	}
	if be.Class != "Z" || be.Base != "Y" {
		t.Errorf("BaseError = %s/%s, want Z/Y", be.Class, be.Base)
	}
	if !errs.Is(err, errs.ErrCodeInconsistentHierarchy) {
		t.Errorf("BaseError should report the base's code, got %v", errs.GetCode(err))
	}

	root := Root(err)
	ie, ok := root.(*InconsistentError)
	if !ok {
		t.Fatalf("Root() = %T, want *InconsistentError", root)
	}
	if ie.Class != "X" {
		t.Errorf("root failure class = %s, want X", ie.Class)
	}

	// An unrelated class in the same graph still linearizes.
	if _, err := Compute(g, "B"); err != nil {
		t.Errorf("Compute(B): %v", err)
	}
}

func TestLinearizeUnknownClass(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{decl("A")})
	if _, err := Compute(g, "Nope"); !errs.Is(err, errs.ErrCodeUnknownClass) {
		t.Errorf("Compute(unknown) = %v, want UNKNOWN_CLASS", err)
	}
	if _, err := DepthFirst(g, "Nope"); !errs.Is(err, errs.ErrCodeUnknownClass) {
		t.Errorf("DepthFirst(unknown) = %v, want UNKNOWN_CLASS", err)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		lists   [][]hierarchy.ClassID
		want    []string
		wantErr bool
	}{
		{"no lists", nil, []string{}, false},
		{"empty lists", [][]hierarchy.ClassID{{}, {}}, []string{}, false},
		{"chain overlap", [][]hierarchy.ClassID{ids("A", "B"), ids("B", "C")}, []string{"A", "B", "C"}, false},
		{"first list wins ties", [][]hierarchy.ClassID{ids("X"), ids("Y")}, []string{"X", "Y"}, false},
		{"opposite orders", [][]hierarchy.ClassID{ids("A", "B"), ids("B", "A")}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.lists...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Merge() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ie *InconsistentError
				if !errors.As(err, &ie) || ie.Class != "" {
					t.Errorf("want class-less *InconsistentError, got %v", err)
				}
				return
			}
			if !slices.Equal(Linearization(got).Strings(), tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := ids("A", "B")
	b := ids("B", "C")
	if _, err := Merge(a, b); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, ids("A", "B")) || !slices.Equal(b, ids("B", "C")) {
		t.Error("Merge must not modify its inputs")
	}
}

func TestDepthFirstDiffersOnDiamond(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		decl("A"), decl("B", "A"), decl("C", "A"), decl("D", "B", "C"),
	})

	naive, err := DepthFirst(g, "D")
	if err != nil {
		t.Fatal(err)
	}
	if got := naive.String(); got != "[D B A C]" {
		t.Errorf("DepthFirst(D) = %s, want [D B A C]", got)
	}

	c3, _ := Compute(g, "D")
	if !c3.Precedes("C", "A") || naive.Precedes("C", "A") {
		t.Error("C3 must put C before A, depth-first does not")
	}
}

func TestLinearizationHelpers(t *testing.T) {
	l := Linearization(ids("D", "B", "C", "A"))
	if l.Index("C") != 2 || l.Index("Z") != -1 {
		t.Error("Index mismatch")
	}
	if !l.Contains("A") || l.Contains("Z") {
		t.Error("Contains mismatch")
	}
	if !l.Precedes("B", "C") || l.Precedes("C", "B") || l.Precedes("B", "Z") {
		t.Error("Precedes mismatch")
	}
}

func TestDeterministic(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		decl("O"), decl("F", "O"), decl("E", "O"), decl("D", "O"),
		decl("C", "D", "F"), decl("B", "D", "E"), decl("A", "B", "C"),
	})
	first, _ := Compute(g, "A")
	for i := 0; i < 50; i++ {
		again, _ := Compute(g, "A")
		if !slices.Equal(first, again) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
}

// randomHierarchy builds an acyclic hierarchy where class i may only inherit
// from classes declared before it.
func randomHierarchy(r *rand.Rand, n int) []hierarchy.ClassDecl {
	decls := make([]hierarchy.ClassDecl, n)
	for i := range n {
		id := hierarchy.ClassID(fmt.Sprintf("C%d", i))
		var bases []hierarchy.ClassID
		if i > 0 {
			for _, j := range r.Perm(i)[:r.Intn(min(i, 4)+1)] {
				bases = append(bases, hierarchy.ClassID(fmt.Sprintf("C%d", j)))
			}
		}
		decls[i] = hierarchy.ClassDecl{ID: id, Bases: bases}
	}
	return decls
}

func TestLinearizationProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	checked := 0

	for round := 0; round < 200; round++ {
		g := hierarchy.MustBuild(randomHierarchy(r, 12))
		lins := make(map[hierarchy.ClassID]Linearization)
		for _, id := range g.AllClasses() {
			if lin, err := Compute(g, id); err == nil {
				lins[id] = lin
			}
		}

		for id, lin := range lins {
			checked++
			if lin[0] != id {
				t.Fatalf("%s: linearization %v does not start with the class", id, lin)
			}

			seen := make(map[hierarchy.ClassID]bool, len(lin))
			for _, c := range lin {
				if seen[c] {
					t.Fatalf("%s: duplicate %s in %v", id, c, lin)
				}
				seen[c] = true
			}

			ancestors, _ := g.Ancestors(id)
			if len(ancestors)+1 != len(lin) {
				t.Fatalf("%s: %v does not cover ancestors %v", id, lin, ancestors)
			}

			bases, _ := g.BasesOf(id)
			for i := 1; i < len(bases); i++ {
				if !lin.Precedes(bases[i-1], bases[i]) {
					t.Fatalf("%s: local precedence %v violated by %v", id, bases, lin)
				}
			}

			for _, b := range bases {
				lb := lins[b]
				for i := 1; i < len(lb); i++ {
					if !lin.Precedes(lb[i-1], lb[i]) {
						t.Fatalf("%s: monotonicity w.r.t. %s violated: %v vs %v", id, b, lin, lb)
					}
				}
			}
		}
	}

	if checked == 0 {
		t.Fatal("no linearizable classes generated")
	}
}
