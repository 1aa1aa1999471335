package main

import "github.com/gnithesh/productowl/cmd"

func main() {
	cmd.Execute()
}
