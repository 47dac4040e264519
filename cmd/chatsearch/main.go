package main

import "chatsearch/internal/cli"

func main() {
	cli.Execute()
}
