// Package printdoc 将二维码记录渲染为可打印的 HTML 文档。
//
// 渲染是纯函数，不涉及浏览器窗口或打印动作；打开页面并触发打印由调用方负责。
package printdoc

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"wms-console/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("printdoc").
		Funcs(template.FuncMap{
			"dataURI": func(r model.QRRecord) template.URL {
				// DataURI 只会产生 image/* 类型
				return template.URL(r.DataURI())
			},
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// BatchOptions 批量打印参数
type BatchOptions struct {
	// AutoPrint 加载完成后立即打印并关闭窗口
	AutoPrint bool
}

type batchData struct {
	Records   []model.QRRecord
	AutoPrint bool
}

// RenderBatch 渲染批量二维码打印页
func RenderBatch(w io.Writer, records []model.QRRecord, opts BatchOptions) error {
	return templates.ExecuteTemplate(w, "batch.html", batchData{Records: records, AutoPrint: opts.AutoPrint})
}

// RenderSingle 渲染单个库位的二维码查看页
func RenderSingle(w io.Writer, record model.QRRecord) error {
	return templates.ExecuteTemplate(w, "single.html", record)
}

// Batch 渲染为字节，便于直接写入响应
func Batch(records []model.QRRecord, opts BatchOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderBatch(&buf, records, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Single 渲染为字节
func Single(record model.QRRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderSingle(&buf, record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
