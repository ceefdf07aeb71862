package main

import "github.com/audiolibrelab/pocketrec/cmd"

func main() {
	cmd.Execute()
}
