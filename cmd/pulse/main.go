// Command pulse is a terminal front-end for a locally installed model runner.
package main

import "github.com/diogo/pulse/internal/commands"

func main() {
	commands.Execute()
}
