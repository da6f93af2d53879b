// cmd/main.go
package main

import (
	"go-contaazul-api/app"
)

// @title           Conta Azul Integration API
// @version         1.0
// @description     Backend that imports sales and pushes them to the Conta Azul accounting platform on behalf of registered companies.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
func main() {
	app.Run()
}
