package main

import "github.com/mvp-joe/classmap/internal/cli"

func main() {
	cli.Execute()
}
