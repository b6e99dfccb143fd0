package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey marks a JWT id as logged out until it expires.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// UnreadCountKey caches the unread notification count of a user.
func (r *CacheKeyStruct) UnreadCountKey(usuarioID int) string {
	return fmt.Sprintf("usuario:%d:notificacoes:nao_lidas", usuarioID)
}

// UserNotificationChannel is the Redis PubSub channel for a user's realtime notifications.
func (r *CacheKeyStruct) UserNotificationChannel(usuarioID int) string {
	return fmt.Sprintf("usuario:%d:notificacoes", usuarioID)
}

// DriveImageKey caches the bytes of a proxied Google Drive image.
func (r *CacheKeyStruct) DriveImageKey(fileID string, width int) string {
	return fmt.Sprintf("drive:%s:w%d:data", fileID, width)
}

// DriveImageTypeKey caches the content type of a proxied Google Drive image.
func (r *CacheKeyStruct) DriveImageTypeKey(fileID string, width int) string {
	return fmt.Sprintf("drive:%s:w%d:type", fileID, width)
}

// RefeitorioFeedChannel is the Redis PubSub channel for live cafeteria check-ins.
func (r *CacheKeyStruct) RefeitorioFeedChannel() string {
	return "refeitorio:checkins"
}

var CacheKey = NewCacheKeyStruct()
