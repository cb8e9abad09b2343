package compiler

import "strings"

// ---------------------------------------------------------------------------
// Output renderer: host config format
// ---------------------------------------------------------------------------

// RenderConfig formats a compile result as host config text: one set
// assignment plus one unescape directive per cell, then a trailing
// comment block naming the entry-point cells. Helper and body
// continuation cells never appear in the entry-point listing.
func RenderConfig(res *Result) string {
	var b strings.Builder
	b.WriteString("//--- Generated by cvarpack ---//\n")
	b.WriteString("// This file is auto-generated. Do not edit manually.\n\n")

	for _, c := range res.Cells {
		b.WriteString(c.SetLine())
		b.WriteByte('\n')
		b.WriteString(unescapeKeyword + " " + c.Name + " " + c.Name + "\n\n")
	}

	if len(res.EntryPoints) > 0 {
		b.WriteString("// --- Entry Points ---\n")
		switch res.Kind {
		case KindScript:
			b.WriteString("// Use these commands in your autoexec.cfg or script initializers to load the functions.\n")
			for _, entry := range res.EntryPoints {
				b.WriteString(loadKeyword + " " + entry + "\n")
			}
		case KindMarkup:
			b.WriteString("// In your outer <stm> ... </stm> menu, use:\n")
			for _, entry := range res.EntryPoints {
				b.WriteString("//   <" + includeKeyword + " " + entry + ">\n")
			}
		}
	}

	return b.String()
}
