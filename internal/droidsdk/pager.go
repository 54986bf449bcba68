package droidsdk

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/gookit/color"
	"github.com/rivo/tview"
	"golang.org/x/term"
)

// pageSection is one titled block of a paged report.
type pageSection struct {
	Title string
	Lines []string
}

// page is a report with a header that stays visible while the sections scroll.
type page struct {
	Title    string
	Header   []string
	Sections []pageSection
}

// body renders the sections and returns the first line of each.
func (p *page) body() (lines []string, offsets []int) {
	for _, sec := range p.Sections {
		offsets = append(offsets, len(lines))
		lines = append(lines, color.Info.Sprintf("%s (%d)", sec.Title, len(sec.Lines)))
		if len(sec.Lines) == 0 {
			lines = append(lines, "  (none)")
		}
		for _, l := range sec.Lines {
			lines = append(lines, "  "+l)
		}
		lines = append(lines, "")
	}
	return lines, offsets
}

func (p *page) print() {
	body, _ := p.body()
	for _, line := range append(append([]string{}, p.Header...), body...) {
		fmt.Println(line)
	}
}

// runPager prints p, or shows it in a TUI when stdout is a terminal too small
// to hold it. In the TUI the header is pinned and n/p jump between sections.
func runPager(p *page) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		p.print()
		return nil
	}

	body, offsets := p.body()
	_, height, err := term.GetSize(fd)
	if err == nil && len(p.Header)+len(body) <= height {
		p.print()
		return nil
	}

	app := tview.NewApplication()

	header := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	fmt.Fprint(tview.ANSIWriter(header), strings.Join(p.Header, "\n"))

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	textView.SetBorder(true).SetTitle(" " + p.Title + " ")
	fmt.Fprint(tview.ANSIWriter(textView), strings.Join(body, "\n"))

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]↑/↓, PgUp/PgDn to scroll, n/p for next/previous area, q or Esc to quit.[white]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, len(p.Header), 0, false).
		AddItem(textView, 0, 1, true).
		AddItem(footer, 1, 0, false)

	current := 0
	jump := func(delta int) {
		if len(offsets) == 0 {
			return
		}
		current = (current + delta + len(offsets)) % len(offsets)
		textView.ScrollTo(offsets[current], 0)
		textView.SetTitle(" " + p.Title + ": " + p.Sections[current].Title + " ")
	}

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlQ:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'n':
				jump(1)
				return nil
			case 'p':
				jump(-1)
				return nil
			}
		}
		return event
	})

	if err := app.SetRoot(flex, true).SetFocus(textView).Run(); err != nil {
		return fmt.Errorf("pager execution failed: %w", err)
	}
	return nil
}
