package main

import (
	"AcademyNotify/internal/bootstrap"
	pkg "AcademyNotify/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.EchoModules,
	)

	app.Run()
}
