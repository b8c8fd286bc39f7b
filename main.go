package main

import "github.com/erinovdaniil/onboarding/internal/cli"

// @title Onboarding API
// @version 1.0
// @description Turns screen recordings and their transcripts into step-by-step onboarding guides.
// @BasePath /
func main() {
	cli.Main()
}
