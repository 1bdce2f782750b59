package main

import "github.com/frahmantamala/docportal/cmd"

func main() {
	cmd.Execute()
}
