package clog

import (
	"fmt"
	"strings"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config 日志配置
//
// 典型 YAML：
//
//	log:
//	  level: info
//	  format: json
//	  output: stdout
//	  add_source: true
type Config struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`                   // debug|info|warn|error|fatal
	Format     string `mapstructure:"format" json:"format" yaml:"format"`                // json|console
	Output     string `mapstructure:"output" json:"output" yaml:"output"`                // stdout|stderr|<file path>
	AddSource  bool   `mapstructure:"add_source" json:"add_source" yaml:"add_source"`    // 输出 caller 字段
	SourceRoot string `mapstructure:"source_root" json:"source_root" yaml:"source_root"` // 裁剪 caller 路径的前缀
	Namespace  string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`       // 根命名空间，通常为服务名
}

// NewDevDefaultConfig 开发环境默认配置：debug 级别、console 格式、带调用位置
func NewDevDefaultConfig(namespace string) *Config {
	return &Config{
		Level:     "debug",
		Format:    "console",
		Output:    "stdout",
		AddSource: true,
		Namespace: namespace,
	}
}

// NewProdDefaultConfig 生产环境默认配置：info 级别、json 格式
func NewProdDefaultConfig(namespace string) *Config {
	return &Config{
		Level:     "info",
		Format:    "json",
		Output:    "stdout",
		Namespace: namespace,
	}
}

// validate 填充默认值并校验
func (c *Config) validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	format := strings.ToLower(c.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
	return nil
}
