package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// printFields writes one field name per line. With colorize, global names are
// highlighted and namespaces are set apart from the local part.
func printFields(w io.Writer, names []string, colorize bool) {
	global := color.New(color.FgCyan, color.Bold)
	namespace := color.New(color.FgBlue)
	for _, c := range []*color.Color{global, namespace} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, name := range names {
		dom, sub := field.SplitName(name)
		if dom == "" {
			_, _ = fmt.Fprintln(w, global.Sprint(sub))
			continue
		}
		_, _ = fmt.Fprintln(w, namespace.Sprint(dom+".")+sub)
	}
}
