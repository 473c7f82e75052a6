package main

import (
	"github.com/DJCodeOne/freshwax-sub002/cmd"
)

func main() {
	cmd.Execute()
}
