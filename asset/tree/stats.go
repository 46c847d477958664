package tree

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/svoxtrace/voxel"
	"github.com/olekukonko/tablewriter"
)

// Stats renders a human-readable breakdown of t's memory footprint per
// array as a table, one row per GPU-bound array plus its byte count.
func Stats(t *voxel.Tree) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Array", "Count", "Size"})

	nodeCount := len(t.Nodes)
	nodeBytes := nodeCount * (4 + 8 + 64*4 + 4)
	table.Append([]string{"Nodes", fmt.Sprintf("%d", nodeCount), fmtBytes(nodeBytes)})

	voxelBytes := len(t.Bricks.Voxels) * 2
	table.Append([]string{"Brick voxels", fmt.Sprintf("%d", len(t.Bricks.Voxels)), fmtBytes(voxelBytes)})

	paletteBytes := len(t.Palette.Entries) * 4 * 4
	table.Append([]string{"Palette entries", fmt.Sprintf("%d", len(t.Palette.Entries)), fmtBytes(paletteBytes)})

	table.SetFooter([]string{"Total", "", fmtBytes(nodeBytes + voxelBytes + paletteBytes)})
	table.Render()
	return buf.String()
}

func fmtBytes(n int) string {
	switch {
	case n < 1e3:
		return fmt.Sprintf("%d bytes", n)
	case n < 1e6:
		return fmt.Sprintf("%.1f kb", float64(n)/1e3)
	default:
		return fmt.Sprintf("%.1f mb", float64(n)/1e6)
	}
}
