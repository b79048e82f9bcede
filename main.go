package main

import "github.com/ProgrammingDinosaur/autoortho4xplane/cmd"

func main() {
	cmd.Execute()
}
