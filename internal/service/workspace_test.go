package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms-console/internal/model"
	"wms-console/internal/pkg/backend"
)

type printCall struct {
	operator string
	ids      []string
	printed  int
}

type memRecorder struct {
	mu    sync.Mutex
	calls []printCall
}

func (r *memRecorder) RecordPrint(_ context.Context, operator string, ids []string, printed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, printCall{operator: operator, ids: ids, printed: printed})
	return nil
}

func newLoadedWorkspace(t *testing.T, api *fakeBackend, opts WorkspaceOptions) *BinWorkspace {
	t.Helper()
	w := NewBinWorkspace(api, opts)
	t.Cleanup(w.Close)
	require.NoError(t, w.EnsureLoaded(context.Background()))
	return w
}

func viewIDs(v WorkspaceView) []string {
	ids := make([]string, 0, len(v.Bins))
	for _, b := range v.Bins {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestWorkspaceLoad(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	v := w.View()
	assert.Equal(t, []string{"b1", "b2", "b3"}, viewIDs(v))
	assert.Len(t, v.Racks, 1)
	assert.Equal(t, "viewing", v.Editor.State)

	// 已加载时不再请求
	require.NoError(t, w.EnsureLoaded(context.Background()))
	assert.Len(t, api.callLog(), 2)
}

func TestWorkspaceLoadFailure(t *testing.T) {
	api := newFakeBackend()
	api.listErr = errors.New("down")
	w := NewBinWorkspace(api, WorkspaceOptions{})
	defer w.Close()

	err := w.Reload(context.Background())
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.Equal(t, "Failed to load data", err.(*Error).Msg)
}

func TestWorkspaceSelectAllTwice(t *testing.T) {
	w := newLoadedWorkspace(t, newFakeBackend(), WorkspaceOptions{})

	assert.Equal(t, 3, w.SelectAll())
	assert.True(t, w.View().AllSelected)
	assert.Equal(t, 0, w.SelectAll())
	assert.Empty(t, w.Selected())
}

func TestWorkspaceToggleUnknownBin(t *testing.T) {
	w := newLoadedWorkspace(t, newFakeBackend(), WorkspaceOptions{})
	_, err := w.Toggle("nope")
	assert.ErrorIs(t, err, ErrBinNotFound)
}

func TestBulkDeleteRequiresSelection(t *testing.T) {
	w := newLoadedWorkspace(t, newFakeBackend(), WorkspaceOptions{})

	_, err := w.PendingDelete()
	assert.ErrorIs(t, err, ErrSelectToDelete)
	_, err = w.BulkDelete(context.Background())
	assert.ErrorIs(t, err, ErrSelectToDelete)
}

func TestBulkDeleteThenReloadIsDisjoint(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	w.SelectAll()

	n, err := w.PendingDelete()
	require.NoError(t, err)
	assert.Equal(t, "Delete 3 bin(s)?", ConfirmDeleteMessage(n))

	res, err := w.BulkDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2", "b3"}, res.Succeeded)
	assert.Equal(t, "3 bin(s) deleted!", DeletedMessage(len(res.Succeeded)))
	assert.Empty(t, w.Selected())

	require.NoError(t, w.Reload(context.Background()))
	assert.Empty(t, w.View().Bins)
}

func TestBulkDeletePartialFailure(t *testing.T) {
	api := newFakeBackend()
	api.failDelete["b2"] = true
	w := newLoadedWorkspace(t, api, WorkspaceOptions{MaxConcurrency: 2})
	w.SelectAll()

	res, err := w.BulkDelete(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchDeleteFailed)
	assert.Equal(t, []string{"b1", "b3"}, res.Succeeded)
	assert.Equal(t, []string{"b2"}, res.FailedIDs())

	// 失败项保持勾选
	assert.Equal(t, []string{"b2"}, w.Selected())

	require.NoError(t, w.Reload(context.Background()))
	assert.Equal(t, []string{"b2"}, viewIDs(w.View()))
}

func TestDeleteOne(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	_, err := w.Toggle("b1")
	require.NoError(t, err)

	require.NoError(t, w.DeleteOne(context.Background(), "b1"))
	assert.Equal(t, []string{"b2", "b3"}, viewIDs(w.View()))
	assert.Empty(t, w.Selected())

	api.failDelete["b2"] = true
	assert.ErrorIs(t, w.DeleteOne(context.Background(), "b2"), ErrDeleteFailed)
	assert.Equal(t, []string{"b2", "b3"}, viewIDs(w.View()))
}

func TestLoadQRBatchRequiresSelection(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	_, _, err := w.LoadQRBatch(context.Background())
	assert.ErrorIs(t, err, ErrSelectFirst)
	for _, c := range api.callLog() {
		assert.NotContains(t, c, "BinQRCode")
	}
}

func TestLoadQRBatchPartialFailure(t *testing.T) {
	api := newFakeBackend()
	api.failQR["b2"] = true
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	w.Toggle("b1")
	w.Toggle("b2")

	records, res, err := w.LoadQRBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b1", records[0].ID)
	assert.Equal(t, "BIN-1", records[0].BinCode)
	assert.Equal(t, "ID:b1|Name:GC-1", records[0].ScansTo)
	assert.Equal(t, []string{"b2"}, res.FailedIDs())
	assert.Equal(t, "1 QR code(s) loaded!", QRLoadedMessage(len(records)))
	assert.Len(t, w.QRRecords(), 1)
}

func TestLoadQRBatchKeepsSelectionOrder(t *testing.T) {
	w := newLoadedWorkspace(t, newFakeBackend(), WorkspaceOptions{MaxConcurrency: 1})
	w.Toggle("b3")
	w.Toggle("b1")

	records, _, err := w.LoadQRBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b3", records[0].ID)
	assert.Equal(t, "b1", records[1].ID)
}

func TestQRCacheFollowsSelection(t *testing.T) {
	w := newLoadedWorkspace(t, newFakeBackend(), WorkspaceOptions{})
	w.Toggle("b1")
	w.Toggle("b2")
	_, _, err := w.LoadQRBatch(context.Background())
	require.NoError(t, err)

	w.Toggle("b1")
	recs := w.QRRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, "b2", recs[0].ID)
}

func TestLoadQRBatchStaleAfterSelectionChange(t *testing.T) {
	api := newFakeBackend()
	api.qrGate = make(chan struct{})
	api.qrStarted = make(chan string, 4)
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	w.Toggle("b1")

	done := make(chan error, 1)
	go func() {
		_, _, err := w.LoadQRBatch(context.Background())
		done <- err
	}()
	<-api.qrStarted

	w.Toggle("b2")
	err := <-done
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, w.QRRecords())
	close(api.qrGate)
}

func TestLoadQRBatchCancelledByClose(t *testing.T) {
	api := newFakeBackend()
	api.qrGate = make(chan struct{})
	api.qrStarted = make(chan string, 4)
	w := NewBinWorkspace(api, WorkspaceOptions{})
	require.NoError(t, w.Reload(context.Background()))
	w.Toggle("b1")

	done := make(chan error, 1)
	go func() {
		_, _, err := w.LoadQRBatch(context.Background())
		done <- err
	}()
	<-api.qrStarted

	w.Close()
	assert.ErrorIs(t, <-done, ErrWorkspaceClosed)
	assert.ErrorIs(t, w.Reload(context.Background()), ErrWorkspaceClosed)
}

func TestPrintBatchLoadsWhenCacheEmpty(t *testing.T) {
	api := newFakeBackend()
	rec := &memRecorder{}
	w := newLoadedWorkspace(t, api, WorkspaceOptions{Operator: "ops", Recorder: rec})

	_, err := w.PrintBatch(context.Background())
	assert.ErrorIs(t, err, ErrSelectFirst)

	w.Toggle("b1")
	w.Toggle("b3")
	records, err := w.PrintBatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, printCall{operator: "ops", ids: []string{"b1", "b3"}, printed: 2}, rec.calls[0])

	// 缓存已存在时直接使用
	before := len(api.callLog())
	_, err = w.PrintBatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, api.callLog(), before)
}

func TestViewQR(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	rec, err := w.ViewQR(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, "ID:b2|Name:GC-2", rec.ScansTo)

	_, err = w.ViewQR(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBinNotFound)

	api.failQR["b3"] = true
	_, err = w.ViewQR(context.Background(), "b3")
	assert.ErrorIs(t, err, ErrQRLoadFailed)
}

func TestCreateBinFlow(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	ed := w.Editor()

	require.NoError(t, ed.BeginCreate(model.BinDraft{}))
	_, err := ed.Save(context.Background())
	assert.ErrorIs(t, err, ErrFillRequired)

	require.NoError(t, ed.SetDraft(model.BinDraft{RackID: "r1", RFIDAddress: "RF-9"}))
	mode, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeCreate, mode)
	assert.Contains(t, api.callLog(), "CreateBin:r1:RF-9")
	assert.Len(t, w.View().Bins, 4)
}

func TestCreateBinDuplicateRFID(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	ed := w.Editor()

	require.NoError(t, ed.BeginCreate(model.BinDraft{RackID: "r1", RFIDAddress: "RF-1"}))
	_, err := ed.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRFIDConflict)
	assert.Equal(t, "RFID Address must be unique!", err.(*Error).Msg)

	snap := ed.Snapshot()
	assert.Equal(t, "editing", snap.State)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "RF-1", snap.Draft.RFIDAddress)
}

func TestCreateBinGenericFailure(t *testing.T) {
	api := newFakeBackend()
	api.createErr = &backend.StatusError{StatusCode: http.StatusInternalServerError}
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	require.NoError(t, w.Editor().BeginCreate(model.BinDraft{RackID: "r1", RFIDAddress: "RF-7"}))
	_, err := w.Editor().Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveFailed)
}

func TestEditBinFlow(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	draft, err := w.BeginEdit("b2")
	require.NoError(t, err)
	assert.Equal(t, model.BinDraft{RackID: "r1", RFIDAddress: "RF-2"}, draft)

	require.NoError(t, w.Editor().SetDraft(model.BinDraft{RackID: "r1", RFIDAddress: " "}))
	_, err = w.Editor().Save(context.Background())
	assert.ErrorIs(t, err, ErrRFIDRequired)

	require.NoError(t, w.Editor().SetDraft(model.BinDraft{RackID: "r1", RFIDAddress: "RF-22"}))
	mode, err := w.Editor().Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeUpdate, mode)
	assert.Contains(t, api.callLog(), "UpdateBin:b2:RF-22")
	assert.Equal(t, "RF-22", w.View().Bins[1].RFIDAddress)

	_, err = w.BeginEdit("missing")
	assert.ErrorIs(t, err, ErrBinNotFound)
}

func TestEditBinDuplicateRFID(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})

	_, err := w.BeginEdit("b2")
	require.NoError(t, err)
	require.NoError(t, w.Editor().SetDraft(model.BinDraft{RackID: "r1", RFIDAddress: "RF-1"}))

	_, err = w.Editor().Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRFIDConflict)
	assert.Equal(t, "RFID Address must be unique!", err.(*Error).Msg)

	snap := w.Editor().Snapshot()
	assert.Equal(t, "editing", snap.State)
	assert.Equal(t, "update", snap.Mode)
	assert.Equal(t, "b2", snap.TargetID)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "RF-1", snap.Draft.RFIDAddress)
	assert.Equal(t, "RF-2", w.View().Bins[1].RFIDAddress)
}

func TestEditCancelMakesNoCalls(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	before := len(api.callLog())

	_, err := w.BeginEdit("b1")
	require.NoError(t, err)
	require.NoError(t, w.Editor().Cancel())

	assert.Len(t, api.callLog(), before)
	assert.Equal(t, StateViewing, w.Editor().State())
}

func TestWorkspaceReset(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	w.SelectAll()
	_, _, err := w.LoadQRBatch(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.Editor().BeginCreate(model.BinDraft{}))

	w.Reset()

	v := w.View()
	assert.Empty(t, v.Selected)
	assert.Empty(t, v.QRCodes)
	assert.Equal(t, "viewing", v.Editor.State)

	// 重置后可以继续使用
	require.NoError(t, w.EnsureLoaded(context.Background()))
	assert.Len(t, w.View().Bins, 3)
}

func TestWorkspaceResetDuringCreate(t *testing.T) {
	api := newFakeBackend()
	api.createGate = make(chan struct{})
	api.createStarted = make(chan struct{}, 1)
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	ed := w.Editor()

	require.NoError(t, ed.BeginCreate(model.BinDraft{RackID: "r1", RFIDAddress: "RF-9"}))
	done := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background())
		done <- err
	}()
	<-api.createStarted

	// 离开页面会取消在途保存，编辑器不应回到编辑状态
	w.Reset()
	assert.ErrorIs(t, <-done, context.Canceled)

	v := w.View()
	assert.Equal(t, "viewing", v.Editor.State)
	assert.Equal(t, "none", v.Editor.Mode)
	assert.Nil(t, v.Editor.Draft)
	assert.NoError(t, ed.BeginCreate(model.BinDraft{}))
}

func TestReloadPrunesSelection(t *testing.T) {
	api := newFakeBackend()
	w := newLoadedWorkspace(t, api, WorkspaceOptions{})
	w.Toggle("b1")
	w.Toggle("b3")

	api.mu.Lock()
	api.bins = api.bins[1:]
	api.mu.Unlock()

	require.NoError(t, w.Reload(context.Background()))
	assert.Equal(t, []string{"b3"}, w.Selected())
}

func TestIsSessionExpired(t *testing.T) {
	err := &backend.StatusError{StatusCode: http.StatusUnauthorized}
	assert.True(t, IsSessionExpired(wrap(ErrLoadFailed, err)))
	assert.False(t, IsSessionExpired(wrap(ErrLoadFailed, errors.New("x"))))
}
