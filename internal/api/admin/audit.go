package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wms-console/internal/service"
)

// GetPrintJobs 批量打印记录
func GetPrintJobs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	jobs, total, err := service.Audits.ListPrintJobs(c.Request.Context(), service.PrintJobQuery{
		Page:     page,
		Size:     size,
		Operator: c.Query("operator"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取打印记录失败",
		})
		return
	}

	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, gin.H{
			"id":         job.ID,
			"job_no":     job.JobNo,
			"operator":   job.Operator,
			"bin_ids":    job.BinIDList(),
			"requested":  job.Requested,
			"printed":    job.Printed,
			"created_at": job.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"total": total,
			"items": items,
		},
	})
}

// GetLoginLogs 控制台登录日志
func GetLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	q := service.LoginLogQuery{
		Page:     page,
		Size:     size,
		Username: c.Query("username"),
		Status:   c.Query("status"),
	}
	// 时间范围过滤
	if start, err := time.ParseInLocation("2006-01-02 15:04:05", c.Query("start_time"), time.Local); err == nil {
		q.Start = start
	}
	if end, err := time.ParseInLocation("2006-01-02 15:04:05", c.Query("end_time"), time.Local); err == nil {
		q.End = end
	}

	logs, total, err := service.Audits.ListLoginLogs(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取登录日志失败",
		})
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		items = append(items, gin.H{
			"id":          log.ID,
			"username":    log.Username,
			"ip":          log.IP,
			"user_agent":  log.UserAgent,
			"is_success":  log.IsSuccess,
			"fail_reason": log.FailReason,
			"login_time":  log.LoginTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"total": total,
			"items": items,
		},
	})
}
