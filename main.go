package main

import "scene-merge/cmd"

func main() {
	cmd.Execute()
}
