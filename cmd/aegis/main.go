// The aegis command runs the Aegis authorization server.
package main

import (
	"github.com/kart-io/aegis/internal/aegis"
)

func main() {
	aegis.NewApp().Run()
}
