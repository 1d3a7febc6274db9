package main

import "traitline/cmd/tl/root"

func main() {
	root.Execute()
}
