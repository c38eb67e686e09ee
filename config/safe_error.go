package config

// SafeErrorMessage release 模式下返回兜底文案，避免把内部错误详情暴露给客户端
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
