package main

import "github.com/MikeMC777/storefront/internal/cli"

func main() {
	cli.Execute()
}
