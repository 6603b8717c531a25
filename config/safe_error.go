package config

// SafeErrorMessage 根据运行模式决定返回给客户端的错误文案
// release 模式只返回 fallback，避免向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	// 未初始化配置视为开发环境
	return err.Error()
}
