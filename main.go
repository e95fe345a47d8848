package main

import "price-loader/internal/cli"

func main() {
	cli.Execute()
}
