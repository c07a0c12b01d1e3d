package main

import "github.com/designxcel/storefront/cmd"

func main() {
	cmd.Execute()
}
