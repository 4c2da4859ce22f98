package main

import (
	"fmt"

	"github.com/asset-hub/asset-hub/internal/version"
)

// printVersion 打印版本、提交号与 Go 运行时，供 -version 使用。
func printVersion() {
	fmt.Fprintln(stdOut, version.Runtime())
}
