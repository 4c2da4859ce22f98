package logging

import "github.com/sirupsen/logrus"

// BaseFields 给 CLI 入口日志统一补上 action 与配置路径两个字段。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":      action,
		"config_path": configPath,
	}
}

// RequestFields 构建资产请求日志的公共字段，调用方再补状态与耗时。
func RequestFields(method, path, kind string) logrus.Fields {
	return logrus.Fields{
		"method": method,
		"path":   path,
		"kind":   kind,
	}
}
