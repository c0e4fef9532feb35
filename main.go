package main

import "github.com/dzjyyds666/hyconf/cmd"

func main() {
	cmd.Execute()
}
