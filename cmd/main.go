package main

import (
	"storefront/internal/cli"

	_ "storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description Catalog, carts and checkout with partial fulfilment.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Main()
}
