package main

import "github.com/oshokin/sweetmoney-versioning/cmd/sweetmoney-formats/cmd"

func main() {
	cmd.Execute()
}
