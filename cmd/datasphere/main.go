// Package main is the entry point for the DataSphere API server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/datasphere/cmd/datasphere/app"
)

func main() {
	app.NewApp().Run()
}
