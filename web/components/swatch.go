package components

import (
	"context"
	"fmt"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

const swatchBase = "h-8 w-8 cursor-pointer rounded-full border-2 border-transparent shadow-sm"

// SwatchClass returns the classes of a swatch; extra wins over the base
// classes on conflict.
func SwatchClass(s Swatch, extra string) string {
	state := ""
	if s.Selected {
		state = "border-white ring-2 ring-offset-1"
	}
	return twmerge.Merge(swatchBase, state, extra)
}

// SwatchGroup renders a radio group named name, one swatch per option.
func SwatchGroup(name string, swatches []Swatch, extra string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="flex flex-wrap gap-2" role="radiogroup">`); err != nil {
			return err
		}
		for _, s := range swatches {
			checked := ""
			if s.Selected {
				checked = " checked"
			}
			_, err := fmt.Fprintf(w,
				`<label class="%s" style="background: %s"><input class="sr-only" type="radio" name="%s" value="%d"%s></label>`,
				templ.EscapeString(SwatchClass(s, extra)),
				templ.EscapeString(s.Background),
				templ.EscapeString(name),
				s.Index,
				checked,
			)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
