package main

import "github.com/oshokin/sweetmoney-versioning/cmd/sweetmoney-updater/cmd"

func main() {
	cmd.Execute()
}
