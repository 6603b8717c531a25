package service

// 归属策略：类别、交易、预算共用同一套“内置/属主”判定
// 类别的属主可为空（内置类别），交易和预算始终有属主

// IsDefaultOwner 属主为空视为系统内置资源
func IsDefaultOwner(ownerID *string) bool {
	return ownerID == nil
}

// IsOwnedBy 自定义资源且属主为指定用户
func IsOwnedBy(ownerID *string, userID string) bool {
	return ownerID != nil && *ownerID == userID
}

// CanModify 内置资源任何人不可修改，自定义资源仅属主可修改
func CanModify(ownerID *string, userID string) bool {
	return IsOwnedBy(ownerID, userID)
}

// CanView 内置资源所有人可见，自定义资源仅属主可见
func CanView(ownerID *string, userID string) bool {
	return IsDefaultOwner(ownerID) || IsOwnedBy(ownerID, userID)
}
