package main

import "github.com/pet-progression/cmd/petctl/root"

func main() {
	root.Execute()
}
