package main

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed public/admin
var adminFS embed.FS

// GetAdminFS 获取管理端静态文件系统
func GetAdminFS() http.FileSystem {
	sub, err := fs.Sub(adminFS, "public/admin")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
