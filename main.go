package main

import "github.com/unicostudio/b-ai-localization/cmd"

func main() {
	cmd.Execute()
}
