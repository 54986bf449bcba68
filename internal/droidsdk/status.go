package droidsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gookit/color"
)

// componentAreas are the SDK subdirectories whose children are packages.
var componentAreas = []struct {
	title string
	dir   string
	depth int
}{
	{"Platforms", "platforms", 1},
	{"Build tools", "build-tools", 1},
	{"Add-ons", "add-ons", 1},
	{"Extras", "extras", 2},
}

// InstalledComponents lists installed package directories grouped by area.
func InstalledComponents(sdkRoot string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, area := range componentAreas {
		pattern := filepath.Join(sdkRoot, area.dir)
		for i := 0; i < area.depth; i++ {
			pattern = filepath.Join(pattern, "*")
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if isMissing(m) {
				continue
			}
			rel, err := filepath.Rel(filepath.Join(sdkRoot, area.dir), m)
			if err != nil {
				return nil, err
			}
			out[area.title] = append(out[area.title], filepath.ToSlash(rel))
		}
		sort.Strings(out[area.title])
	}
	if !isMissing(PlatformTools.Path(sdkRoot)) {
		out["Tools"] = append(out["Tools"], PlatformTools.Package)
	}
	if _, err := os.Stat(filepath.Join(sdkRoot, "tools")); err == nil {
		out["Tools"] = append(out["Tools"], "tools")
	}
	return out, nil
}

// statusPage lays out the status report: the SDK root as header and one
// section per component area.
func statusPage(sdkRoot string, components map[string][]string) *page {
	p := &page{
		Title:  "Android SDK",
		Header: []string{color.Bold.Sprint("SDK root: ") + sdkRoot, ""},
	}
	titles := []string{"Tools"}
	for _, area := range componentAreas {
		titles = append(titles, area.title)
	}
	for _, title := range titles {
		p.Sections = append(p.Sections, pageSection{Title: title, Lines: components[title]})
	}
	return p
}

// ShowStatus prints the installed components of sdkRoot, paged on a terminal.
func ShowStatus(sdkRoot string) error {
	components, err := InstalledComponents(sdkRoot)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", sdkRoot, err)
	}
	return runPager(statusPage(sdkRoot, components))
}
