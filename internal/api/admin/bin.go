package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wms-console/internal/model"
	"wms-console/internal/pkg/logger"
	"wms-console/internal/pkg/printdoc"
	"wms-console/internal/service"
)

// GetRacks 获取货架列表，用于新增行的下拉框
func GetRacks(c *gin.Context) {
	ws := workspace(c)
	if err := ws.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": ws.Racks(),
	})
}

// GetBins 获取库位列表及当前勾选、二维码缓存和编辑状态
func GetBins(c *gin.Context) {
	ws := workspace(c)
	if c.Query("refresh") == "true" {
		if err := ws.Reload(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	} else if err := ws.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": ws.View(),
	})
}

// ResetWorkspace 离开库位页面
func ResetWorkspace(c *gin.Context) {
	workspace(c).Reset()
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "ok",
	})
}

// ToggleBin 切换单个库位勾选
func ToggleBin(c *gin.Context) {
	ws := workspace(c)
	selected, err := ws.Toggle(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id":          c.Param("id"),
			"selected":    selected,
			"selectedIds": ws.Selected(),
		},
	})
}

// SelectAllBins 全选或取消全选
func SelectAllBins(c *gin.Context) {
	ws := workspace(c)
	n := ws.SelectAll()
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"count":       n,
			"selectedIds": ws.Selected(),
		},
	})
}

// GetSelection 当前勾选
func GetSelection(c *gin.Context) {
	v := workspace(c).View()
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"selectedIds": v.Selected,
			"allSelected": v.AllSelected,
		},
	})
}

// BatchDeleteBins 批量删除选中库位。
// 未确认时只返回确认提示，confirm 为 true 才真正删除。
func BatchDeleteBins(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": 400,
				"msg":  "参数错误",
			})
			return
		}
	}

	ws := workspace(c)
	n, err := ws.PendingDelete()
	if err != nil {
		respondError(c, err)
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusOK, gin.H{
			"code": 200,
			"msg":  service.ConfirmDeleteMessage(n),
			"data": gin.H{
				"confirmRequired": true,
				"count":           n,
			},
		})
		return
	}

	res, err := ws.BulkDelete(c.Request.Context())
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) && errors.Is(err, service.ErrBatchDeleteFailed) && !service.IsSessionExpired(err) {
			c.JSON(svcErr.Code, gin.H{
				"code": svcErr.Code,
				"msg":  svcErr.Msg,
				"data": res,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  service.DeletedMessage(len(res.Succeeded)),
		"data": res,
	})
}

// LoadQRCodes 为选中库位批量拉取二维码
func LoadQRCodes(c *gin.Context) {
	records, res, err := workspace(c).LoadQRBatch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, gin.H{
			"id":            r.ID,
			"binCode":       r.BinCode,
			"generatedCode": r.GeneratedCode,
			"qrScansTo":     r.ScansTo,
			"dataUri":       r.DataURI(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  service.QRLoadedMessage(len(records)),
		"data": gin.H{
			"qrCodes": items,
			"failed":  res.Failed,
		},
	})
}

// PrintQRCodes 生成批量打印页面，autoprint=false 时不自动调用打印
func PrintQRCodes(c *gin.Context) {
	records, err := workspace(c).PrintBatch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := printdoc.Batch(records, printdoc.BatchOptions{AutoPrint: c.DefaultQuery("autoprint", "true") != "false"})
	if err != nil {
		logger.Errorf("渲染打印页面失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "渲染打印页面失败",
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// ViewBinQRCode 单个库位二维码页面
func ViewBinQRCode(c *gin.Context) {
	rec, err := workspace(c).ViewQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := printdoc.Single(rec)
	if err != nil {
		logger.Errorf("渲染二维码页面失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "渲染二维码页面失败",
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// DeleteBin 删除单个库位，需要 confirm=true
func DeleteBin(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusOK, gin.H{
			"code": 200,
			"msg":  service.ConfirmDeleteOneMessage,
			"data": gin.H{"confirmRequired": true},
		})
		return
	}

	if err := workspace(c).DeleteOne(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  service.MsgBinDeleted,
	})
}

func editorResponse(c *gin.Context, msg string) {
	data := gin.H{
		"code": 200,
		"data": workspace(c).Editor().Snapshot(),
	}
	if msg != "" {
		data["msg"] = msg
	}
	c.JSON(http.StatusOK, data)
}

func bindDraft(c *gin.Context) (model.BinDraft, bool) {
	var draft model.BinDraft
	if c.Request.ContentLength == 0 {
		return draft, true
	}
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return draft, false
	}
	return draft, true
}

// BeginCreateBin 打开新增行
func BeginCreateBin(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	if err := workspace(c).Editor().BeginCreate(draft); err != nil {
		respondError(c, err)
		return
	}
	editorResponse(c, "")
}

// BeginEditBin 以当前值打开编辑行
func BeginEditBin(c *gin.Context) {
	if _, err := workspace(c).BeginEdit(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	editorResponse(c, "")
}

// UpdateDraft 修改草稿字段
func UpdateDraft(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	if err := workspace(c).Editor().SetDraft(draft); err != nil {
		respondError(c, err)
		return
	}
	editorResponse(c, "")
}

// SaveDraft 提交草稿
func SaveDraft(c *gin.Context) {
	mode, err := workspace(c).Editor().Save(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	msg := service.MsgBinUpdated
	if mode == service.ModeCreate {
		msg = service.MsgBinCreated
	}
	editorResponse(c, msg)
}

// CancelDraft 放弃草稿
func CancelDraft(c *gin.Context) {
	if err := workspace(c).Editor().Cancel(); err != nil {
		respondError(c, err)
		return
	}
	editorResponse(c, "")
}
