// Package main is the entry point for the edge-rag service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/edge-rag/cmd/edge-rag/app"
)

func main() {
	app.NewApp().Run()
}
