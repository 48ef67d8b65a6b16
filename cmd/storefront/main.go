package main

import "github.com/mikeydub/go-storefront/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}
