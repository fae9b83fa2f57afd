// Package render draws class hierarchies as Graphviz diagrams.
//
// [ToDOT] produces DOT source with one node per class and an edge from each
// class to each of its bases, labelled with the base's declared position
// when a class has several. Bases are drawn above their subclasses.
//
// A focus class annotates every class in its method resolution order with
// its rank, which makes the difference between declaration order and
// lookup order visible at a glance:
//
//	dot := render.ToDOT(g.Decls(), render.Options{
//	    Focus:         "D",
//	    Linearization: lin,
//	})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Classes named in Highlight, such as the members of a cycle or the
// conflicting heads of an inconsistent merge, get a red outline. Because
// ToDOT works on raw declarations it can draw hierarchies that fail to
// build; undeclared bases appear as dashed nodes.
package render
