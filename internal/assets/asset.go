package assets

import "errors"

// ErrNotFound 表示逻辑路径无法解析为合法资产（含越界路径，对外不作区分）。
var ErrNotFound = errors.New("asset not found")

// Kind 标记资产的分发类别：普通文件或两种虚拟文件之一。
type Kind int

const (
	// KindFile 普通文件，直接读取 Resolved 路径。
	KindFile Kind = iota
	// KindLoaderShim 模块加载器垫片，内容由内嵌内核源码生成，无底层文件。
	KindLoaderShim
	// KindBootstrap 编辑器引导脚本，压缩开启时会内联其引用的其它资产。
	KindBootstrap
)

func (k Kind) String() string {
	switch k {
	case KindLoaderShim:
		return "loader"
	case KindBootstrap:
		return "bootstrap"
	default:
		return "file"
	}
}

// 两个虚拟文件的逻辑路径，以及聚合时间戳扫描的目录名。
const (
	BootstrapPath = "js/editor.js"
	LoaderPath    = "js/loader.js"

	scriptDirName = "js"
	styleDirName  = "css"
)

// Asset 是一次路径解析的结果。Logical 为重写后相对资源根目录的规范形式
// （统一正斜杠），Resolved 为用于文件系统访问的绝对路径。
type Asset struct {
	Logical  string
	Kind     Kind
	Resolved string
}
