// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// FormatMentionTable writes the flattened entity/mention listing as an
// aligned table. Column widths track display width so non-ASCII entity
// names line up.
func FormatMentionTable(result *types.AnalysisResult, w io.Writer) {
	rows := types.Flatten(result.Entities)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No entities found.")
		return
	}

	header := []string{"ENTITY", "TYPE", "SALIENCE", "MENTION", "KIND", "OFFSET"}
	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)
	for _, r := range rows {
		table = append(table, []string{
			r.EntityName,
			r.EntityType,
			strconv.FormatFloat(r.Salience, 'f', 4, 64),
			r.MentionText,
			r.MentionType,
			strconv.Itoa(r.BeginOffset),
		})
	}

	widths := make([]int, len(header))
	for _, row := range table {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for _, row := range table {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if pad := widths[i] - runewidth.StringWidth(cell); pad > 0 && i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
		}
		fmt.Fprintln(w, sb.String())
	}
	fmt.Fprintf(w, "\n%d mentions of %d entities\n", len(rows), len(result.Entities))
}

// FormatMentionJSON writes the flattened entity/mention listing as
// indented JSON.
func FormatMentionJSON(result *types.AnalysisResult, w io.Writer) error {
	rows := types.Flatten(result.Entities)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
