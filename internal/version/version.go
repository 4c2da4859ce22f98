package version

import (
	"fmt"
	"runtime"
)

// 构建发布物时由 -ldflags 覆盖，源码内保留开发态缺省值。
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full 拼出带提交号的完整版本标识，CLI 与诊断接口共用。
func Full() string {
	return fmt.Sprintf("asset-hub %s (%s)", Version, Commit)
}

// Runtime 附带 Go 运行时版本，只在 -version 输出里展示。
func Runtime() string {
	return fmt.Sprintf("%s %s", Full(), runtime.Version())
}
