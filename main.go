package main

import "github.com/dbmint/dbmint/cmd"

func main() {
	cmd.Execute()
}
