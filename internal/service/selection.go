package service

// Selection 操作员勾选的库位集合，保持勾选顺序
type Selection struct {
	ids []string
	set map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{set: make(map[string]struct{})}
}

// Toggle 切换单个库位的勾选状态，返回切换后是否选中
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.set[id]; ok {
		s.remove(id)
		return false
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// SelectAll 已全选时清空，否则选中全部
func (s *Selection) SelectAll(all []string) {
	if s.Covers(all) {
		s.Clear()
		return
	}
	s.Clear()
	for _, id := range all {
		if _, ok := s.set[id]; ok {
			continue
		}
		s.set[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// Covers 集合是否恰好等于 all，空列表视为未全选
func (s *Selection) Covers(all []string) bool {
	if len(all) == 0 || len(s.ids) != len(uniq(all)) {
		return false
	}
	for _, id := range all {
		if _, ok := s.set[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.set[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs 当前勾选的库位ID副本
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *Selection) Clear() {
	s.ids = nil
	s.set = make(map[string]struct{})
}

// Remove 移除一组ID，返回实际移除的数量
func (s *Selection) Remove(ids ...string) int {
	n := 0
	for _, id := range ids {
		if _, ok := s.set[id]; ok {
			s.remove(id)
			n++
		}
	}
	return n
}

// Retain 只保留 keep 中存在的ID
func (s *Selection) Retain(keep map[string]struct{}) int {
	var drop []string
	for _, id := range s.ids {
		if _, ok := keep[id]; !ok {
			drop = append(drop, id)
		}
	}
	return s.Remove(drop...)
}

func (s *Selection) remove(id string) {
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
