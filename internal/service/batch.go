package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ItemFailure 批量操作中单个失败项
type ItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// BatchResult 批量操作的逐项结果，顺序与输入一致
type BatchResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

func (r BatchResult) AllSucceeded() bool {
	return len(r.Failed) == 0
}

func (r BatchResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ID)
	}
	return ids
}

// runBatch 对每个ID并发执行 fn，等待全部结束后汇总。
// limit <= 0 时不限制并发；单项失败不会取消其他项。
func runBatch(ctx context.Context, ids []string, limit int, fn func(ctx context.Context, i int, id string) error) BatchResult {
	errs := make([]error, len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, i, id)
			return nil
		})
	}
	g.Wait()

	var res BatchResult
	for i, id := range ids {
		if errs[i] != nil {
			res.Failed = append(res.Failed, ItemFailure{ID: id, Reason: errs[i].Error(), Err: errs[i]})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}
