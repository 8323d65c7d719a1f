package main

import (
	"os"

	"github.com/DrMamtaSaini/pixflow-design-studio/commands"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	err := commands.Execute(commands.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		BuildID:   BuildID,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
	})
	if err != nil {
		os.Exit(1)
	}
}
