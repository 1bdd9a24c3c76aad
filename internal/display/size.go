package display

import "fmt"

// FormatSize renders a byte count the way mpic reports file sizes: MB with two
// decimals from 1 MiB upwards, KB with two decimals below that, and "<0.01KB"
// for non-empty files too small to show.
func FormatSize(bytes int64) string {
	mb := float64(bytes) / 1024 / 1024
	if mb >= 1 {
		return fmt.Sprintf("%.2fMB", mb)
	}
	kb := float64(bytes) / 1024
	if kb < 0.01 && bytes > 0 {
		return "<0.01KB"
	}
	return fmt.Sprintf("%.2fKB", kb)
}
