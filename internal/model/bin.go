package model

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Rack 货架，仅被 Bin 引用
type Rack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bin 库位，最小的可寻址存储单元
type Bin struct {
	ID            string `json:"id"`
	BinCode       string `json:"binCode"`
	RFIDAddress   string `json:"rfidAddress"`
	GeneratedCode string `json:"generatedCode"`
	Rack          *Rack  `json:"rack,omitempty"`
}

// RackID 所属货架ID，未绑定时为空
func (b Bin) RackID() string {
	if b.Rack == nil {
		return ""
	}
	return b.Rack.ID
}

// BinDraft 新增或编辑中的库位行
type BinDraft struct {
	RackID      string `json:"rackId"`
	RFIDAddress string `json:"rfidAddress"`
}

// ScanPayload 二维码扫描后得到的内容
func ScanPayload(binID, generatedCode string) string {
	return fmt.Sprintf("ID:%s|Name:%s", binID, generatedCode)
}

// QRRecord 选中库位的二维码缓存，只存在于内存中
type QRRecord struct {
	ID            string `json:"id"`
	BinCode       string `json:"binCode"`
	GeneratedCode string `json:"generatedCode"`
	ScansTo       string `json:"qrScansTo"`
	ContentType   string `json:"contentType"`
	Image         []byte `json:"-"`
}

// NewQRRecord 根据库位信息和二维码图片构建记录
func NewQRRecord(binID string, bin *Bin, image []byte, contentType string) QRRecord {
	rec := QRRecord{
		ID:          binID,
		Image:       image,
		ContentType: contentType,
	}
	if bin != nil {
		rec.BinCode = bin.BinCode
		rec.GeneratedCode = bin.GeneratedCode
	}
	rec.ScansTo = ScanPayload(binID, rec.GeneratedCode)
	return rec
}

// DataURI 将图片编码为可直接嵌入页面的 data URI
func (r QRRecord) DataURI() string {
	ct := r.ContentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	if !strings.HasPrefix(ct, "image/") {
		ct = "image/png"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(r.Image)
}
