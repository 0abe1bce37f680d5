package main

import (
	"fmt"
	"os"

	"github.com/ostafen/gptscan/cmd/cmd"
	"github.com/ostafen/gptscan/internal/env"
)

func main() {
	PrintLogo()

	os.Exit(cmd.Execute())
}

func PrintLogo() {
	fmt.Println("            _                       ")
	fmt.Println("  __ _ _ __| |_ ___  ___ __ _ _ __  ")
	fmt.Println(" / _` | '_ \\  _(_-< / _/ _` | '_ \\ ")
	fmt.Println(" \\__, | .__/\\__/__/ \\__\\__,_|_| |_|")
	fmt.Println(" |___/|_|                           ")
	fmt.Println()
	fmt.Println("GPT partition table validator and scanner")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}
