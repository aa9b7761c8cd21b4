package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Align(lipgloss.Center).
			Width(64)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Italic(true).
			Align(lipgloss.Center).
			Width(64).
			MarginBottom(1)
)

// DisplayWelcomeBanner shows the welcome banner.
func DisplayWelcomeBanner() {
	banner := `
 ███████╗ ██████╗ ██╗   ██╗██╗██╗     ███████╗███╗   ██╗███████╗
 ██╔════╝██╔═══██╗██║   ██║██║██║     ██╔════╝████╗  ██║██╔════╝
 █████╗  ██║   ██║██║   ██║██║██║     █████╗  ██╔██╗ ██║███████╗
 ██╔══╝  ██║▄▄ ██║██║   ██║██║██║     ██╔══╝  ██║╚██╗██║╚════██║
 ███████╗╚██████╔╝╚██████╔╝██║███████╗███████╗██║ ╚████║███████║
 ╚══════╝ ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚══════╝╚═╝  ╚═══╝╚══════╝
`
	fmt.Println(bannerStyle.Render(banner))
	fmt.Println(taglineStyle.Render("Multi-agent equity research powered by Large Language Models"))
}
