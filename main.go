package main

import "github.com/thanhhle/salesops-management/cmd"

func main() {
	cmd.Execute()
}
