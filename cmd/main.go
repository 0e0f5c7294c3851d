package main

import (
	"github.com/dinetrack/order/internal/app"
	"github.com/dinetrack/order/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
