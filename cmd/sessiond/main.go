package main

import (
	"github.com/duo/sessiond/internal/cli"
	"github.com/duo/sessiond/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
