package main

import "github.com/bentokun/elf2e32/cmd/elf2e32/cmd"

var (
	// AppVersion stores the tool's version
	AppVersion string
	// AppBuildTime stores the tool's build time
	AppBuildTime string
)

func main() {
	cmd.AppVersion = AppVersion
	cmd.AppBuildTime = AppBuildTime
	cmd.Execute()
}
