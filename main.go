package main

import "github.com/ADanMan/datarails-open/cmd"

func main() {
	cmd.Execute()
}
