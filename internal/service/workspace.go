package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"wms-console/internal/model"
	"wms-console/internal/pkg/backend"
	"wms-console/internal/pkg/logger"
)

// BinBackend 工作区依赖的后端能力，*backend.Client 实现该接口
type BinBackend interface {
	ListBins(ctx context.Context) ([]model.Bin, error)
	ListRacks(ctx context.Context) ([]model.Rack, error)
	CreateBin(ctx context.Context, rackID, rfidAddress string) error
	UpdateBin(ctx context.Context, id, rfidAddress string) error
	DeleteBin(ctx context.Context, id string) error
	BinQRCode(ctx context.Context, id string) (*backend.QRImage, error)
}

// WorkspaceOptions 工作区参数
type WorkspaceOptions struct {
	Operator       string
	MaxConcurrency int
	Recorder       PrintRecorder
}

// BinWorkspace 单个会话的库位管理页状态：列表、勾选、二维码缓存和行内编辑。
// 所有后端请求都派生自工作区生命周期 ctx，Close 或 Reset 会取消在途请求。
type BinWorkspace struct {
	api      BinBackend
	operator string
	limit    int
	recorder PrintRecorder

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	loaded    bool
	bins      []model.Bin
	racks     []model.Rack
	selection *Selection
	qrs       []model.QRRecord
	// selGen 每次勾选变化递增，用于丢弃过期的二维码加载结果
	selGen   uint64
	loadSeq  uint64
	qrCancel context.CancelFunc

	editor *Editor[model.BinDraft]
}

func NewBinWorkspace(api BinBackend, opts WorkspaceOptions) *BinWorkspace {
	w := &BinWorkspace{
		api:       api,
		operator:  opts.Operator,
		limit:     opts.MaxConcurrency,
		recorder:  opts.Recorder,
		selection: NewSelection(),
	}
	if w.recorder == nil {
		w.recorder = NopRecorder{}
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.editor = NewEditor(EditorHooks[model.BinDraft]{
		Validate: validateBinDraft,
		Create:   w.createBin,
		Update:   w.updateBin,
		Refetch:  w.Reload,
	})
	return w
}

// WorkspaceView 返回给页面的工作区快照
type WorkspaceView struct {
	Bins        []model.Bin                    `json:"bins"`
	Racks       []model.Rack                   `json:"racks"`
	Selected    []string                       `json:"selected"`
	AllSelected bool                           `json:"allSelected"`
	QRCodes     []model.QRRecord               `json:"qrCodes"`
	Editor      EditorSnapshot[model.BinDraft] `json:"editor"`
}

func (w *BinWorkspace) View() WorkspaceView {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WorkspaceView{
		Bins:        append([]model.Bin(nil), w.bins...),
		Racks:       append([]model.Rack(nil), w.racks...),
		Selected:    w.selection.IDs(),
		AllSelected: w.selection.Covers(w.binIDs()),
		QRCodes:     append([]model.QRRecord(nil), w.qrs...),
		Editor:      w.editor.Snapshot(),
	}
}

// opContext 将请求 ctx 与工作区生命周期合并
func (w *BinWorkspace) opContext(parent context.Context) (context.Context, context.CancelFunc, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, nil, ErrWorkspaceClosed
	}
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(w.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

// Reload 并发拉取货架和库位列表
func (w *BinWorkspace) Reload(ctx context.Context) error {
	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	var bins []model.Bin
	var racks []model.Rack
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		racks, err = w.api.ListRacks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bins, err = w.api.ListBins(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Errorf("加载库位数据失败: %v", err)
		return w.failure(ErrLoadFailed, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorkspaceClosed
	}
	w.bins = bins
	w.racks = racks
	w.loaded = true

	keep := make(map[string]struct{}, len(bins))
	for _, b := range bins {
		keep[b.ID] = struct{}{}
	}
	if w.selection.Retain(keep) > 0 {
		w.selectionChanged()
	}
	return nil
}

// EnsureLoaded 首次访问时加载列表
func (w *BinWorkspace) EnsureLoaded(ctx context.Context) error {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()
	if loaded {
		return nil
	}
	return w.Reload(ctx)
}

func (w *BinWorkspace) Racks() []model.Rack {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Rack(nil), w.racks...)
}

func (w *BinWorkspace) binIDs() []string {
	ids := make([]string, len(w.bins))
	for i, b := range w.bins {
		ids[i] = b.ID
	}
	return ids
}

func (w *BinWorkspace) findBin(id string) *model.Bin {
	for i := range w.bins {
		if w.bins[i].ID == id {
			b := w.bins[i]
			return &b
		}
	}
	return nil
}

// selectionChanged 取消在途的二维码加载并清理不再选中的缓存，调用方持有 mu
func (w *BinWorkspace) selectionChanged() {
	w.selGen++
	if w.qrCancel != nil {
		w.qrCancel()
		w.qrCancel = nil
	}
	kept := w.qrs[:0]
	for _, q := range w.qrs {
		if w.selection.Contains(q.ID) {
			kept = append(kept, q)
		}
	}
	w.qrs = kept
}

// Toggle 切换单个库位的勾选
func (w *BinWorkspace) Toggle(id string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.findBin(id) == nil && !w.selection.Contains(id) {
		return false, ErrBinNotFound
	}
	selected := w.selection.Toggle(id)
	w.selectionChanged()
	return selected, nil
}

// SelectAll 全选或取消全选，返回操作后的勾选数量
func (w *BinWorkspace) SelectAll() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.selection.SelectAll(w.binIDs())
	w.selectionChanged()
	return w.selection.Len()
}

func (w *BinWorkspace) Selected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.IDs()
}

func (w *BinWorkspace) QRRecords() []model.QRRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.QRRecord(nil), w.qrs...)
}

// removeBins 从本地列表、勾选和二维码缓存中移除，调用方持有 mu
func (w *BinWorkspace) removeBins(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := w.bins[:0]
	for _, b := range w.bins {
		if _, ok := drop[b.ID]; !ok {
			kept = append(kept, b)
		}
	}
	w.bins = kept
	if w.selection.Remove(ids...) > 0 {
		w.selectionChanged()
	}
}

// DeleteOne 删除单个库位
func (w *BinWorkspace) DeleteOne(ctx context.Context, id string) error {
	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := w.api.DeleteBin(ctx, id); err != nil {
		logger.Errorf("删除库位 %s 失败: %v", id, err)
		return w.failure(ErrDeleteFailed, err)
	}

	w.mu.Lock()
	w.removeBins([]string{id})
	w.mu.Unlock()
	return nil
}

// PendingDelete 批量删除前的确认信息
func (w *BinWorkspace) PendingDelete() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.selection.Len()
	if n == 0 {
		return 0, ErrSelectToDelete
	}
	return n, nil
}

// BulkDelete 并发删除全部选中库位，等待全部结束后移除成功项。
// 只要有一项失败就返回 ErrBatchDeleteFailed，逐项结果在 BatchResult 中。
func (w *BinWorkspace) BulkDelete(ctx context.Context) (BatchResult, error) {
	w.mu.Lock()
	ids := w.selection.IDs()
	w.mu.Unlock()
	if len(ids) == 0 {
		return BatchResult{}, ErrSelectToDelete
	}

	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	defer done()

	res := runBatch(ctx, ids, w.limit, func(ctx context.Context, _ int, id string) error {
		return w.api.DeleteBin(ctx, id)
	})

	w.mu.Lock()
	w.removeBins(res.Succeeded)
	w.mu.Unlock()

	if !res.AllSucceeded() {
		logger.Errorf("批量删除库位失败 %d/%d: %v", len(res.Failed), len(ids), res.FailedIDs())
		return res, w.failure(ErrBatchDeleteFailed, res.Failed[0].Err)
	}
	logger.Infof("批量删除库位 %d 个", len(res.Succeeded))
	return res, nil
}

// LoadQRBatch 为每个选中库位拉取二维码。单项失败只会少一条记录；
// 加载期间勾选发生变化时请求被取消，结果丢弃并返回 ErrStale。
func (w *BinWorkspace) LoadQRBatch(ctx context.Context) ([]model.QRRecord, BatchResult, error) {
	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return nil, BatchResult{}, err
	}
	defer done()

	w.mu.Lock()
	ids := w.selection.IDs()
	if len(ids) == 0 {
		w.mu.Unlock()
		return nil, BatchResult{}, ErrSelectFirst
	}
	gen := w.selGen
	// 新的加载会取代尚未完成的旧加载
	w.loadSeq++
	seq := w.loadSeq
	if w.qrCancel != nil {
		w.qrCancel()
	}
	qctx, qcancel := context.WithCancel(ctx)
	w.qrCancel = qcancel
	bins := make([]*model.Bin, len(ids))
	for i, id := range ids {
		bins[i] = w.findBin(id)
	}
	w.mu.Unlock()
	defer qcancel()

	slots := make([]*model.QRRecord, len(ids))
	res := runBatch(qctx, ids, w.limit, func(ctx context.Context, i int, id string) error {
		img, err := w.api.BinQRCode(ctx, id)
		if err != nil {
			return err
		}
		rec := model.NewQRRecord(id, bins[i], img.Data, img.ContentType)
		slots[i] = &rec
		return nil
	})

	records := make([]model.QRRecord, 0, len(ids))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}
	for _, f := range res.Failed {
		logger.Warnf("加载库位 %s 二维码失败: %v", f.ID, f.Err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, res, ErrWorkspaceClosed
	}
	if gen != w.selGen || seq != w.loadSeq {
		return nil, res, ErrStale
	}
	w.qrCancel = nil
	w.qrs = records
	return append([]model.QRRecord(nil), records...), res, nil
}

// PrintBatch 确保二维码已加载并记录打印任务，返回待渲染的记录
func (w *BinWorkspace) PrintBatch(ctx context.Context) ([]model.QRRecord, error) {
	w.mu.Lock()
	ids := w.selection.IDs()
	cached := append([]model.QRRecord(nil), w.qrs...)
	w.mu.Unlock()
	if len(ids) == 0 {
		return nil, ErrSelectFirst
	}

	records := cached
	if len(records) == 0 {
		var err error
		records, _, err = w.LoadQRBatch(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := w.recorder.RecordPrint(ctx, w.operator, ids, len(records)); err != nil {
		logger.Warnf("记录打印任务失败: %v", err)
	}
	return records, nil
}

// ViewQR 拉取单个库位的二维码
func (w *BinWorkspace) ViewQR(ctx context.Context, id string) (model.QRRecord, error) {
	w.mu.Lock()
	bin := w.findBin(id)
	w.mu.Unlock()
	if bin == nil {
		return model.QRRecord{}, ErrBinNotFound
	}

	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return model.QRRecord{}, err
	}
	defer done()

	img, err := w.api.BinQRCode(ctx, id)
	if err != nil {
		logger.Errorf("加载库位 %s 二维码失败: %v", id, err)
		return model.QRRecord{}, w.failure(ErrQRLoadFailed, err)
	}
	return model.NewQRRecord(id, bin, img.Data, img.ContentType), nil
}

// Editor 行内编辑器
func (w *BinWorkspace) Editor() *Editor[model.BinDraft] {
	return w.editor
}

// BeginEdit 以当前值打开编辑行
func (w *BinWorkspace) BeginEdit(id string) (model.BinDraft, error) {
	w.mu.Lock()
	bin := w.findBin(id)
	w.mu.Unlock()
	if bin == nil {
		return model.BinDraft{}, ErrBinNotFound
	}
	draft := model.BinDraft{RackID: bin.RackID(), RFIDAddress: bin.RFIDAddress}
	return draft, w.editor.BeginEdit(id, draft)
}

func validateBinDraft(mode EditMode, d model.BinDraft) error {
	if mode == ModeCreate {
		if d.RackID == "" || strings.TrimSpace(d.RFIDAddress) == "" {
			return ErrFillRequired
		}
		return nil
	}
	if strings.TrimSpace(d.RFIDAddress) == "" {
		return ErrRFIDRequired
	}
	return nil
}

// saveFailure 后端 400 视为 RFID 重复
func (w *BinWorkspace) saveFailure(err error, generic *Error) error {
	if backend.IsStatus(err, http.StatusBadRequest) {
		return wrap(ErrRFIDConflict, err)
	}
	return w.failure(generic, err)
}

// failure 工作区已被关闭时，被取消的请求统一报告 ErrWorkspaceClosed
func (w *BinWorkspace) failure(base *Error, err error) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed && !IsSessionExpired(err) {
		return wrap(ErrWorkspaceClosed, err)
	}
	return wrap(base, err)
}

func (w *BinWorkspace) createBin(ctx context.Context, d model.BinDraft) error {
	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := w.api.CreateBin(ctx, d.RackID, d.RFIDAddress); err != nil {
		logger.Errorf("新增库位失败: %v", err)
		return w.saveFailure(err, ErrSaveFailed)
	}
	return nil
}

func (w *BinWorkspace) updateBin(ctx context.Context, id string, d model.BinDraft) error {
	ctx, done, err := w.opContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := w.api.UpdateBin(ctx, id, d.RFIDAddress); err != nil {
		logger.Errorf("更新库位 %s 失败: %v", id, err)
		return w.saveFailure(err, ErrUpdateFailed)
	}
	return nil
}

// Reset 离开页面：取消在途请求，清空勾选、二维码缓存和草稿
func (w *BinWorkspace) Reset() {
	w.mu.Lock()
	if !w.closed {
		w.cancel()
		w.ctx, w.cancel = context.WithCancel(context.Background())
	}
	w.selection.Clear()
	w.selectionChanged()
	w.qrs = nil
	w.loaded = false
	w.mu.Unlock()

	w.editor.Reset()
}

// Close 会话结束时释放工作区
func (w *BinWorkspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
	if w.qrCancel != nil {
		w.qrCancel()
		w.qrCancel = nil
	}
	w.qrs = nil
	w.selection.Clear()
}

// IsSessionExpired 后端 token 是否已失效
func IsSessionExpired(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized)
}
