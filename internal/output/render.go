package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"flowtrace/internal/query"
	"flowtrace/internal/storage"
)

// RenderSlice formats a slice response for the terminal.
func RenderSlice(resp *query.SliceResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s slice from node %d\n", resp.Direction, resp.Start)
	fmt.Fprintf(&sb, "  sources: %d, max depth: %d\n", len(resp.Frontier), resp.MaxDepth)

	if len(resp.Constants) > 0 {
		sb.WriteString("\nConstants:\n")
		for _, c := range resp.Constants {
			sb.WriteString("  " + formatConstant(c) + "\n")
		}
	}

	if len(resp.Paths) > 0 {
		sb.WriteString("\nPaths:\n")
		for _, p := range resp.Paths {
			fmt.Fprintf(&sb, "  [%s depth=%d]\n", p.SourceType, p.Depth)
			for _, step := range p.Steps {
				sb.WriteString("    " + step + "\n")
			}
		}
	}

	if resp.Provenance != nil {
		fmt.Fprintf(&sb, "\nrun %s (%dms, %d nodes / %d edges)\n",
			resp.Provenance.RunID, resp.Provenance.DurationMs,
			resp.Provenance.GraphNodes, resp.Provenance.GraphEdges)
	}
	return sb.String()
}

// RenderTrace formats a call-site trace response for the terminal.
func RenderTrace(resp *query.TraceResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pattern %s matched %d call site(s)\n", resp.Pattern, resp.Matched)

	for _, tr := range resp.Traces {
		fmt.Fprintf(&sb, "\n%s", tr.Callee)
		if tr.Location != "" {
			fmt.Fprintf(&sb, " at %s", tr.Location)
		}
		sb.WriteString("\n")
		if tr.Skipped != "" {
			fmt.Fprintf(&sb, "  skipped: %s\n", tr.Skipped)
			continue
		}
		if len(tr.Constants) == 0 {
			sb.WriteString("  no constants reached\n")
			continue
		}
		for _, c := range tr.Constants {
			sb.WriteString("  " + formatConstant(c) + "\n")
		}
	}

	if len(resp.Distinct) > 0 {
		fmt.Fprintf(&sb, "\nDistinct constants (%d):\n", len(resp.Distinct))
		for _, c := range resp.Distinct {
			sb.WriteString("  " + formatConstant(c) + "\n")
		}
	}

	if resp.Provenance != nil {
		fmt.Fprintf(&sb, "\nrun %s (%dms)\n", resp.Provenance.RunID, resp.Provenance.DurationMs)
	}
	return sb.String()
}

// RenderRuns writes the run history as an aligned table.
func RenderRuns(w io.Writer, runs []storage.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTARGET\tMATCHED\tDISTINCT\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Kind, r.Target, r.Matched, r.Distinct,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func formatConstant(c query.ConstantInfo) string {
	if c.Enum != nil {
		s := fmt.Sprintf("%s.%s", c.Enum.Class, c.Enum.Name)
		if len(c.Enum.Args) > 0 {
			s += "(" + strings.Join(c.Enum.Args, ", ") + ")"
		}
		return s
	}
	return fmt.Sprintf("%v (%s)", c.Value, c.Type)
}
