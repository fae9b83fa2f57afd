package c3_test

import (
	"fmt"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/hierarchy"
)

func ExampleCompute_diamond() {
	// A is shared by B and C; D inherits from both.
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		{ID: "A"},
		{ID: "B", Bases: []hierarchy.ClassID{"A"}},
		{ID: "C", Bases: []hierarchy.ClassID{"A"}},
		{ID: "D", Bases: []hierarchy.ClassID{"B", "C"}},
	})

	lin, _ := c3.Compute(g, "D")
	naive, _ := c3.DepthFirst(g, "D")
	fmt.Println("C3:         ", lin)
	fmt.Println("depth-first:", naive)
	// Output:
	// C3:          [D B C A]
	// depth-first: [D B A C]
}

func ExampleMerge() {
	out, _ := c3.Merge(
		[]hierarchy.ClassID{"B", "A"},
		[]hierarchy.ClassID{"C", "A"},
		[]hierarchy.ClassID{"B", "C"},
	)
	fmt.Println(c3.Linearization(out))
	// Output: [B C A]
}

func ExampleInconsistentError() {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		{ID: "A"},
		{ID: "B", Bases: []hierarchy.ClassID{"A"}},
		{ID: "X", Bases: []hierarchy.ClassID{"A", "B"}},
	})

	_, err := c3.Compute(g, "X")
	fmt.Println(err)
	// Output: cannot create a consistent method resolution order for X: conflicting order for A, B
}
