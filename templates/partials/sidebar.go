package partials

import (
	"context"
	"fmt"
	"io"

	"visa_crm_go/services"
	"visa_crm_go/services/i18n"

	"github.com/a-h/templ"
)

// Sidebar renders the navigation fragment. Items are already filtered by permission.
func Sidebar(items []services.NavItem, lang, active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav id="sidebar" class="flex flex-col gap-1 p-3"><ul class="space-y-1">`); err != nil {
			return err
		}
		for _, item := range items {
			if err := sidebarItem(w, item, lang, item.Key == active); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></nav>`)
		return err
	})
}

func sidebarItem(w io.Writer, item services.NavItem, lang string, active bool) error {
	class := "flex items-center gap-3 rounded-lg px-3 py-2 text-sm text-muted-foreground hover:bg-accent"
	if active {
		class = "flex items-center gap-3 rounded-lg px-3 py-2 text-sm font-medium bg-accent text-accent-foreground"
	}
	badge := ""
	if item.ViewOnly {
		badge = `<span class="ml-auto text-xs opacity-60">` + templ.EscapeString(i18n.Translate(lang, "nav.view_only")) + `</span>`
	}
	_, err := fmt.Fprintf(w,
		`<li><a href="%s" class="%s" data-nav="%s"><i data-lucide="%s" class="h-4 w-4"></i><span>%s</span>%s</a></li>`,
		templ.EscapeString(item.Href),
		class,
		templ.EscapeString(item.Key),
		templ.EscapeString(item.Icon),
		templ.EscapeString(i18n.Translate(lang, item.Label)),
		badge,
	)
	return err
}
