package config

import _ "embed"

// DefaultConfigYAML 嵌入的默认配置，外部配置文件可覆盖其中任意字段
//
//go:embed default.yaml
var DefaultConfigYAML []byte
