package main

import "github.com/referral-checker/internal/cli"

func main() {
	cli.Execute()
}
