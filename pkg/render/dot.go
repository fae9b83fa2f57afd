package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

// Options configures DOT output.
type Options struct {
	// Focus is the class whose linearization is annotated.
	Focus hierarchy.ClassID
	// Linearization is the order of Focus. Without it, Focus is only
	// outlined.
	Linearization c3.Linearization
	// Highlight outlines classes in red.
	Highlight []hierarchy.ClassID
	// Tables adds each class's own members to its label.
	Tables resolve.Tables
}

// ToDOT converts declarations to Graphviz DOT.
func ToDOT(decls []hierarchy.ClassDecl, opts Options) string {
	declared := make(map[hierarchy.ClassID]bool, len(decls))
	for _, d := range decls {
		declared[d.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph MRO {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [arrowhead=empty, fontsize=10, fontcolor=grey40];\n")
	buf.WriteString("\n")

	for _, d := range decls {
		fmt.Fprintf(&buf, "  %q [%s];\n", d.ID, strings.Join(nodeAttrs(d.ID, opts), ", "))
	}

	var missing []hierarchy.ClassID
	for _, d := range decls {
		for _, b := range d.Bases {
			if !declared[b] && !slices.Contains(missing, b) {
				missing = append(missing, b)
			}
		}
	}
	for _, id := range missing {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=red, fontcolor=red];\n", id, string(id)+"\n(undeclared)")
	}

	buf.WriteString("\n")
	for _, d := range decls {
		for i, b := range d.Bases {
			if len(d.Bases) > 1 {
				fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\"];\n", d.ID, b, i+1)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", d.ID, b)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id hierarchy.ClassID, opts Options) []string {
	label := string(id)
	if rank := opts.Linearization.Index(id); rank >= 0 {
		label = fmt.Sprintf("%s\n#%d", id, rank)
	}
	if members := memberNames(opts.Tables[id]); len(members) > 0 {
		label += "\n" + strings.Join(members, "\n")
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case id == opts.Focus:
		attrs = append(attrs, "fillcolor=\"#c6dbef\"", "penwidth=2")
	case opts.Linearization.Contains(id):
		attrs = append(attrs, "fillcolor=\"#eff3ff\"")
	case len(opts.Linearization) > 0:
		attrs = append(attrs, "fontcolor=grey60", "color=grey60")
	}
	if slices.Contains(opts.Highlight, id) {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

func memberNames(t resolve.MemberTable) []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, "."+name)
	}
	slices.Sort(names)
	return names
}
