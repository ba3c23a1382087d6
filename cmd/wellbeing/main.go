package main

import "github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/cli"

func main() {
	cli.Execute()
}
