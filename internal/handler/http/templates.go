package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// LoadTemplates 解析内嵌的页面模板，模板名即文件名 (如 index.tmpl)
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// StaticFiles 返回 /static 下的内嵌静态文件
func StaticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 目录在编译期嵌入，不会失败
		panic(err)
	}
	return http.FS(sub)
}
