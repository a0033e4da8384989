// Package ui renders resolution results and batch progress for the terminal.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"urlembed/internal/embed"
	"urlembed/internal/history"
	"urlembed/internal/provider"
)

var (
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	markupStyle   = lipgloss.NewStyle().PaddingLeft(2)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	providerWidth = 16
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RenderResult formats a finished request: a status line followed by its markup.
func RenderResult(req *embed.Request) string {
	var b strings.Builder

	status := okStyle.Render("OK  ")
	if req.Err != nil {
		status = failStyle.Render("FAIL")
	}
	prov := req.Provider
	if prov == "" {
		prov = "-"
	}

	fmt.Fprintf(&b, "%s %s %s %s\n",
		status,
		nameStyle.Render(pad(prov, providerWidth)),
		req.URL(),
		dimStyle.Render(fmt.Sprintf("(%dms)", req.ElapsedMs())),
	)
	if req.Err != nil {
		fmt.Fprintf(&b, "%s\n", markupStyle.Render(failStyle.Render(embed.Kind(req.Err)+": ")+req.Err.Error()))
	}
	fmt.Fprintf(&b, "%s\n", markupStyle.Render(req.HTML()))
	return b.String()
}

// RenderSummary is the one-line tally printed after a batch.
func RenderSummary(reqs []*embed.Request) string {
	failed := 0
	for _, req := range reqs {
		if req.Err != nil {
			failed++
		}
	}
	line := fmt.Sprintf("%d resolved, %d failed", len(reqs)-failed, failed)
	if failed > 0 {
		return failStyle.Render(line)
	}
	return okStyle.Render(line)
}

// RenderProviders lists providers in registration order with their patterns.
func RenderProviders(providers []provider.Provider) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Providers"))
	for i, p := range providers {
		fmt.Fprintf(&b, "%3d. %s", i+1, nameStyle.Render(p.Name()))
		g, ok := p.(*provider.Generic)
		if !ok {
			fmt.Fprintln(&b)
			continue
		}
		fmt.Fprintf(&b, " %s\n", dimStyle.Render("["+g.Strategy().String()+"]"))
		for _, pat := range g.Patterns() {
			fmt.Fprintf(&b, "       %s\n", pat)
		}
	}
	return b.String()
}

// RenderHistory formats history entries, newest first.
func RenderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return dimStyle.Render("No history yet.") + "\n"
	}

	var b strings.Builder
	for _, e := range entries {
		status := okStyle.Render("OK  ")
		if !e.OK() {
			status = failStyle.Render("FAIL")
		}
		prov := e.Provider
		if prov == "" {
			prov = "-"
		}
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			dimStyle.Render(e.ResolvedAt.Local().Format("2006-01-02 15:04:05")),
			status,
			nameStyle.Render(pad(prov, providerWidth)),
			e.URL,
			dimStyle.Render(fmt.Sprintf("(%dms)", e.ElapsedMs)),
		)
		if e.Error != "" {
			fmt.Fprintf(&b, "%s\n", markupStyle.Render(e.Kind+": "+e.Error))
		}
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
