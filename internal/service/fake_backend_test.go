package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"wms-console/internal/model"
	"wms-console/internal/pkg/backend"
)

// fakeBackend 内存版仓储后端
type fakeBackend struct {
	mu    sync.Mutex
	bins  []model.Bin
	racks []model.Rack
	calls []string

	failQR     map[string]bool
	failDelete map[string]bool
	createErr  error
	updateErr  error
	listErr    error

	// qrGate 非空时二维码请求阻塞到关闭或 ctx 取消
	qrGate    chan struct{}
	qrStarted chan string

	// createGate 非空时新增请求阻塞到关闭或 ctx 取消
	createGate    chan struct{}
	createStarted chan struct{}
}

func newFakeBackend() *fakeBackend {
	rack := &model.Rack{ID: "r1", Name: "Rack A"}
	return &fakeBackend{
		racks: []model.Rack{*rack},
		bins: []model.Bin{
			{ID: "b1", BinCode: "BIN-1", RFIDAddress: "RF-1", GeneratedCode: "GC-1", Rack: rack},
			{ID: "b2", BinCode: "BIN-2", RFIDAddress: "RF-2", GeneratedCode: "GC-2", Rack: rack},
			{ID: "b3", BinCode: "BIN-3", RFIDAddress: "RF-3", GeneratedCode: "GC-3"},
		},
		failQR:     map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListBins(ctx context.Context) ([]model.Bin, error) {
	f.record("ListBins")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Bin(nil), f.bins...), nil
}

func (f *fakeBackend) ListRacks(ctx context.Context) ([]model.Rack, error) {
	f.record("ListRacks")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Rack(nil), f.racks...), nil
}

func (f *fakeBackend) CreateBin(ctx context.Context, rackID, rfidAddress string) error {
	f.record("CreateBin:" + rackID + ":" + rfidAddress)
	f.mu.Lock()
	gate, started := f.createGate, f.createStarted
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, b := range f.bins {
		if b.RFIDAddress == rfidAddress {
			return &backend.StatusError{Method: http.MethodPost, Path: "/api/bins/" + rackID, StatusCode: http.StatusBadRequest}
		}
	}
	id := "b" + string(rune('0'+len(f.bins)+1))
	f.bins = append(f.bins, model.Bin{ID: id, BinCode: "BIN-" + id, RFIDAddress: rfidAddress, GeneratedCode: "GC-" + id})
	return nil
}

func (f *fakeBackend) UpdateBin(ctx context.Context, id, rfidAddress string) error {
	f.record("UpdateBin:" + id + ":" + rfidAddress)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, b := range f.bins {
		if b.ID != id && b.RFIDAddress == rfidAddress {
			return &backend.StatusError{Method: http.MethodPut, Path: "/api/bins/" + id, StatusCode: http.StatusBadRequest}
		}
	}
	for i := range f.bins {
		if f.bins[i].ID == id {
			f.bins[i].RFIDAddress = rfidAddress
			return nil
		}
	}
	return &backend.StatusError{Method: http.MethodPut, Path: "/api/bins/" + id, StatusCode: http.StatusNotFound}
}

func (f *fakeBackend) DeleteBin(ctx context.Context, id string) error {
	f.record("DeleteBin:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[id] {
		return errors.New("delete refused")
	}
	for i := range f.bins {
		if f.bins[i].ID == id {
			f.bins = append(f.bins[:i], f.bins[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeBackend) BinQRCode(ctx context.Context, id string) (*backend.QRImage, error) {
	f.record("BinQRCode:" + id)
	f.mu.Lock()
	gate, started, fail := f.qrGate, f.qrStarted, f.failQR[id]
	f.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("qrcode unavailable")
	}
	return &backend.QRImage{Data: []byte("PNG:" + id), ContentType: "image/png"}, nil
}
