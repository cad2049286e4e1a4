package main

import "shireesh.com/firenext/cmd"

func main() {
	cmd.Execute()
}
