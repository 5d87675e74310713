package conversation

import (
	"strings"

	"github.com/m3rciful/postbot/internal/localization"
	"github.com/m3rciful/postbot/internal/postconfig"
)

type itemKind int

const (
	kindConfigure itemKind = iota + 1
	kindPublish
	kindShowAll
)

// MenuItem is one reply keyboard button.
type MenuItem struct {
	Label string
	// Name identifies the item in logs, e.g. "configure_message".
	Name string

	kind  itemKind
	field postconfig.Field
}

// configurable are the fields a user fills through a prompt, in menu order.
var configurable = []postconfig.Field{
	postconfig.FieldMessage,
	postconfig.FieldImagePath,
	postconfig.FieldReaction,
	postconfig.FieldStartDate,
	postconfig.FieldFrequency,
}

func buildMenu(texts *localization.Localizer, lang string) []MenuItem {
	items := make([]MenuItem, 0, len(configurable)+2)
	for _, f := range configurable {
		items = append(items, MenuItem{
			Label: texts.Get(lang, "menu."+f.String()),
			Name:  "configure_" + f.String(),
			kind:  kindConfigure,
			field: f,
		})
	}
	return append(items,
		MenuItem{Label: texts.Get(lang, "menu.publish"), Name: "publish", kind: kindPublish},
		MenuItem{Label: texts.Get(lang, "menu.show_all"), Name: "show_all", kind: kindShowAll},
	)
}

// match finds the item whose label equals text. Surrounding spaces are
// ignored on purpose: some clients pad keyboard button text, and the
// registry lookup trims the same way so both layers agree on what a label is.
func match(items []MenuItem, text string) (MenuItem, bool) {
	text = strings.TrimSpace(text)
	for _, it := range items {
		if it.Label == text {
			return it, true
		}
	}
	return MenuItem{}, false
}
