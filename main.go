package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"github.com/spf13/pflag"

	"github.com/baylot/raffle-api/cmd/app"
)

// @termsOfService  http://swagger.io/terms/
// @contact.name   API Support
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @securityDefinitions.apikey AdminKey
// @in query
// @name admin_key
// @description Shared admin secret
//
// @securityDefinitions.apikey AdminKeyHeader
// @in header
// @name X-Admin-Key
// @description Shared admin secret
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin bearer token from /admin/token
func main() {
	configPath := pflag.StringP("config", "c", "./cmd/app/config.yml", "path to the YAML config file")
	pflag.Parse()

	if err := app.Start(*configPath); err != nil {
		panic(err)
	}
}
