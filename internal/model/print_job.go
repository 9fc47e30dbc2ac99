package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PrintJob 批量打印二维码的审计记录
type PrintJob struct {
	ID        uint   `gorm:"primarykey"`
	JobNo     string `gorm:"size:64;uniqueIndex"`
	Operator  string `gorm:"size:64;index"` // 操作人
	BinIDs    string `gorm:"type:text"`     // 逗号分隔的库位ID
	Requested int    // 选中数量
	Printed   int    // 实际生成二维码数量
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SetBinIDs 写入库位ID列表
func (j *PrintJob) SetBinIDs(ids []string) {
	j.BinIDs = strings.Join(ids, ",")
}

// BinIDList 读取库位ID列表
func (j *PrintJob) BinIDList() []string {
	if j.BinIDs == "" {
		return nil
	}
	return strings.Split(j.BinIDs, ",")
}
