package main

import "github.com/quillhub/quillhub/client/cmd"

func main() {
	cmd.Execute()
}
