// Package main is the entry point of the dmaemul command.
package main

import "github.com/sarchlab/dmaemul/dmaemul/cmd"

func main() {
	cmd.Execute()
}
