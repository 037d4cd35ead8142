package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/gradebook-api/pkg/client"
	"github.com/noah-isme/gradebook-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	api, err := client.New(cfg.Client.BaseURL, client.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cli := &commandLine{api: api, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
