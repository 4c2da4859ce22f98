package main

import (
	"bytes"
	"testing"
)

// captureCLIOutput 在测试期间把 stdOut/stdErr 换成内存缓冲，返回两个
// 缓冲供断言命令行输出，测试结束后恢复原 Writer。
func captureCLIOutput(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()

	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}

	prevOut, prevErr := stdOut, stdErr
	stdOut, stdErr = stdout, stderr

	t.Cleanup(func() {
		stdOut, stdErr = prevOut, prevErr
	})

	return stdout, stderr
}
