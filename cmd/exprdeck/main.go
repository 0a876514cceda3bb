// cmd/exprdeck/main.go

package main

import (
	"github.com/exprdeck/exprdeck/internal/app"
	"github.com/exprdeck/exprdeck/render/raylib"
)

func main() {
	d := app.LoadFromFlags()

	// Custom expression functions would be registered here, before the
	// registry freezes inside app.Run, e.g.:
	//
	//	exprs.DefaultRegistry().Register("pulse", func(t float64) float64 { ... })

	app.Run(d, raylib.NewRenderer(d))
}
