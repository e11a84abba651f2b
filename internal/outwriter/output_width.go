package outwriter

import (
	"os"

	"github.com/huangsam/contacts/internal/contract"
	"golang.org/x/term"
)

// GetMaxPhotoWidth calculates the maximum width for photo URLs in table output
// based on terminal width and the fixed columns of the contact table.
func GetMaxPhotoWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + First + Last + Age with borders/padding
	baseWidth := 40 + 15 + 15 + 6

	// Table borders and separators
	baseWidth += 12

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
