package service

import (
	"context"
	"sync"
)

// EditorState 表格行内编辑状态
type EditorState int

const (
	StateViewing EditorState = iota
	StateEditing
	StateSaving
)

func (s EditorState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	}
	return "viewing"
}

// EditMode 草稿行是新增还是编辑已有记录
type EditMode int

const (
	ModeNone EditMode = iota
	ModeCreate
	ModeUpdate
)

func (m EditMode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	}
	return "none"
}

// EditorHooks 各实体表格提供的校验与远程调用
type EditorHooks[T any] struct {
	Validate func(mode EditMode, draft T) error
	Create   func(ctx context.Context, draft T) error
	Update   func(ctx context.Context, id string, draft T) error
	Refetch  func(ctx context.Context) error
}

// EditorSnapshot 编辑器当前状态
type EditorSnapshot[T any] struct {
	State    string `json:"state"`
	Mode     string `json:"mode"`
	TargetID string `json:"targetId,omitempty"`
	Draft    *T     `json:"draft,omitempty"`
}

// Editor 每个表格最多一个草稿行：
// viewing -> editing -> saving -> viewing，或 editing -> viewing（取消）。
type Editor[T any] struct {
	mu     sync.Mutex
	hooks  EditorHooks[T]
	state  EditorState
	mode   EditMode
	target string
	draft  T
	// epoch 每次 reset 递增，保存完成时据此判断草稿是否已被丢弃
	epoch uint64
}

func NewEditor[T any](hooks EditorHooks[T]) *Editor[T] {
	return &Editor[T]{hooks: hooks}
}

// BeginCreate 打开新增行，已有草稿时拒绝
func (e *Editor[T]) BeginCreate(initial T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateViewing {
		return ErrDraftOpen
	}
	e.state = StateEditing
	e.mode = ModeCreate
	e.target = ""
	e.draft = initial
	return nil
}

// BeginEdit 编辑指定记录，替换之前的编辑目标
func (e *Editor[T]) BeginEdit(id string, initial T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSaving {
		return ErrSaving
	}
	e.state = StateEditing
	e.mode = ModeUpdate
	e.target = id
	e.draft = initial
	return nil
}

// SetDraft 更新草稿字段
func (e *Editor[T]) SetDraft(draft T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateViewing:
		return ErrNoDraft
	case StateSaving:
		return ErrSaving
	}
	e.draft = draft
	return nil
}

// Cancel 丢弃草稿，不发起任何请求
func (e *Editor[T]) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSaving {
		return ErrSaving
	}
	e.reset()
	return nil
}

// Reset 无条件回到查看状态，用于工作区重置
func (e *Editor[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor[T]) reset() {
	var zero T
	e.epoch++
	e.state = StateViewing
	e.mode = ModeNone
	e.target = ""
	e.draft = zero
}

// Save 校验后创建或更新，成功则重新拉取列表。
// 校验或远程调用失败时草稿保持打开；重新拉取失败不影响已保存的结果。
func (e *Editor[T]) Save(ctx context.Context) (EditMode, error) {
	e.mu.Lock()
	switch e.state {
	case StateViewing:
		e.mu.Unlock()
		return ModeNone, ErrNoDraft
	case StateSaving:
		e.mu.Unlock()
		return e.mode, ErrSaving
	}
	mode, target, draft, epoch := e.mode, e.target, e.draft, e.epoch

	if e.hooks.Validate != nil {
		if err := e.hooks.Validate(mode, draft); err != nil {
			e.mu.Unlock()
			return mode, err
		}
	}
	e.state = StateSaving
	e.mu.Unlock()

	var err error
	if mode == ModeCreate {
		err = e.hooks.Create(ctx, draft)
	} else {
		err = e.hooks.Update(ctx, target, draft)
	}

	e.mu.Lock()
	if epoch != e.epoch {
		// 保存期间编辑器已被重置，结果不再影响状态，也不重新拉取
		e.mu.Unlock()
		return mode, err
	}
	if err != nil {
		e.state = StateEditing
		e.mu.Unlock()
		return mode, err
	}
	e.reset()
	e.mu.Unlock()

	if e.hooks.Refetch != nil {
		if err := e.hooks.Refetch(ctx); err != nil {
			return mode, err
		}
	}
	return mode, nil
}

func (e *Editor[T]) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot 返回当前状态副本
func (e *Editor[T]) Snapshot() EditorSnapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := EditorSnapshot[T]{
		State:    e.state.String(),
		Mode:     e.mode.String(),
		TargetID: e.target,
	}
	if e.state != StateViewing {
		d := e.draft
		snap.Draft = &d
	}
	return snap
}
